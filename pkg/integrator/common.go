// Package integrator implements the family of Monte-Carlo light-transport
// estimators described in spec.md §4.3: a stateless Debug renderer, the
// naive unidirectional PathTracer, PathTracerMIS (next-event estimation
// with multiple importance sampling), LightTracer, and VCM (vertex
// connection and merging). All five share the primitives in this file,
// grounded on the teacher's pkg/integrator/path_tracing.go Russian-roulette
// and MIS-weight helpers, generalized to the Integrator interface below.
package integrator

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/sampler"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// CosEpsilon is the minimum cosine-of-incidence magnitude a shading
// computation will treat as nonzero, per spec.md §4.3: "cos-of-incidence
// must exceed CosEpsilon = 1e-5 on both sides".
const CosEpsilon = 1e-5

// SpecularEventRoughnessThreshold is the roughness below which a glossy
// lobe is treated as a Dirac specular to avoid PDF blowup, per spec.md
// §4.3: "roughness below SpecularEventRoughnessThreshold = 5e-3".
const SpecularEventRoughnessThreshold = 5e-3

// RenderingParams configures a pass, per spec.md §4.1 set_rendering_params.
type RenderingParams struct {
	TileSize             int
	MaxDepth             int
	AASpread              float64 // antialiasing spread, >= 0
	MotionBlurStrength    float64 // in [0,1]
	MinRussianRouletteDepth int
	LightPickingUniform   bool // not read by any integrator: lights are always picked through Scene.PickLight
	VisualizeTimePerPixel bool

	// PacketMode enables batched ray traversal for integrators implementing
	// PacketRenderer; PacketGroupSize must evenly divide TileSize (spec.md
	// §4.1: "tile size must be a multiple of the packet group size").
	PacketMode      bool
	PacketGroupSize int

	// UseBlueNoiseDithering toggles the sampler's Cranley-Patterson
	// rotation against a fixed blue-noise tile, trading a small amount of
	// per-pixel correlation structure for faster visual convergence at low
	// sample counts (spec.md §4.4).
	UseBlueNoiseDithering bool

	// VCM-specific knobs (spec.md §4.3.e); ignored by other integrators.
	NumLightPaths            int
	InitialMergingRadius     float64
	MinMergingRadius         float64
	MergingRadiusMultiplier  float64
	VertexMergingEnabled     bool
	MaxPathLength            int
}

// DefaultRenderingParams returns sensible defaults, following the teacher's
// DefaultProgressiveConfig idiom.
func DefaultRenderingParams() RenderingParams {
	return RenderingParams{
		TileSize:                64,
		MaxDepth:                8,
		AASpread:                0.5,
		MotionBlurStrength:      0,
		MinRussianRouletteDepth: 3,
		LightPickingUniform:     true,
		PacketGroupSize:         4,
		UseBlueNoiseDithering:   true,
		NumLightPaths:           1,
		InitialMergingRadius:    0.1,
		MinMergingRadius:        0.001,
		MergingRadiusMultiplier: 0.9,
		VertexMergingEnabled:    true,
		MaxPathLength:           12,
	}
}

// FilmTarget is the narrow splatting contract light-path-based integrators
// (LightTracer, VCM) need from the film, defined here at the point of
// consumption rather than imported from pkg/film to avoid a dependency
// from the estimator layer onto the accumulation-buffer implementation.
type FilmTarget interface {
	Splat(filmX, filmY float64, contribution colorspace.RayColor)
}

// RenderingContext is the thread-local state one worker owns for the
// duration of a tile task, per spec.md §3: "Thread-local contexts hold
// references back to Viewport-owned parameters; they are destroyed when
// the Viewport resizes thread count."
type RenderingContext struct {
	Sampler    sampler.Sampler
	Scene      scenekit.Scene
	Camera     scenekit.Camera
	Film       FilmTarget
	Time       float64
	Wavelength colorspace.Wavelength

	// Debug capture, populated only for the one pixel being inspected
	// (spec.md §3: "PathDebugData ... Populated only for the picked pixel").
	DebugCapture *PathDebugData
}

// PathState is the per-bounce mutable state every integrator threads
// through its loop, per spec.md §3.
type PathState struct {
	Ray              colorspace.Ray
	Throughput       colorspace.RayColor
	DVC, DVM, DVCM   float64
	Depth            uint32
	LastEvent        scenekit.BSDFEvent
	LastSpecular     bool
	LastFiniteLight  bool
	LastPDF          float64
}

// NewPathState initializes a fresh path with throughput = One and depth = 1,
// per spec.md §3.
func NewPathState(ray colorspace.Ray) PathState {
	return PathState{Ray: ray, Throughput: colorspace.RayColorOne, Depth: 1}
}

// PathTerminationReason records why a path stopped, for debug-only
// reporting (spec.md §7: "not errors — recorded as PathTerminationReason
// on the debug path only").
type PathTerminationReason int

const (
	TerminationNone PathTerminationReason = iota
	TerminationDepthExceeded
	TerminationRussianRoulette
	TerminationNoScatterEvent
	TerminationBackgroundHit
	TerminationThroughputNearZero
)

// PathDebugData records one bounce of a path for the single pixel being
// debugged, per spec.md §3.
type PathDebugData struct {
	Bounces     []PathDebugBounce
	Termination PathTerminationReason
}

type PathDebugBounce struct {
	RayOrigin    colorspace.Vec3
	RayDir       colorspace.Vec3
	Hit          bool
	Shading      scenekit.ShadingData
	Throughput   colorspace.RayColor
	SampledEvent scenekit.BSDFEvent
}

// PowerHeuristic implements the power heuristic (β=2) for combining two
// sampling strategies' PDFs, per spec.md §4.3.c.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf <= 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic implements the balance heuristic (β=1) for combining two
// sampling strategies' PDFs; no integrator in this package calls it.
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	if fPdf <= 0 {
		return 0
	}
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	return f / (f + g)
}

// applyRussianRoulette implements the shared survival test described in
// spec.md §4.3: "Russian roulette starting at depth minRussianRouletteDepth:
// continue with probability q = clamp(max-channel(throughput), 0, 1),
// scaling throughput by 1/q on continuation."
func applyRussianRoulette(depth uint32, minDepth int, throughput colorspace.RayColor, u float64) (terminate bool, compensation float64) {
	if int(depth) < minDepth {
		return false, 1.0
	}
	q := clamp(throughput.MaxComponent(), 0, 1)
	if q <= 0 {
		return true, 0
	}
	if u > q {
		return true, 0
	}
	return false, 1.0 / q
}

func clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }

// sampleBSDF is the common-primitive wrapper spec.md §4.3 names
// "SampleBSDF(material, outgoingDir) -> (incomingDir, color, pdf, event)".
func sampleBSDF(mat scenekit.Material, shading scenekit.ShadingData, outgoing colorspace.Vec3, s sampler.Sampler) (scenekit.BSDFSample, bool) {
	return mat.Sample(shading, outgoing, s)
}

// evaluateBSDF is the common-primitive wrapper spec.md §4.3 names
// "EvaluateBSDF(material, outgoingDir, incomingDir) -> (color, forwardPdf,
// reversePdf)".
func evaluateBSDF(mat scenekit.Material, shading scenekit.ShadingData, outgoing, incoming colorspace.Vec3) (colorspace.RayColor, float64, float64) {
	return mat.Evaluate(shading, outgoing, incoming)
}

// isValidContribution guards against NaN/Inf radiance being inserted into
// the film, per spec.md §7: "integrators must skip such samples (treat as
// zero) in release builds rather than corrupt the film."
func isValidContribution(c colorspace.RayColor) bool {
	return colorspace.IsValidRayColor(c)
}
