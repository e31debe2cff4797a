// Package scenekit defines the external collaborator contracts the
// renderer core consumes — Scene, Camera, Material/BSDF, and Light — per
// spec.md §6. Scene/geometry loading, BVH construction, and BSDF
// evaluation bodies are explicitly out of scope for the core (spec.md §1);
// this package only specifies the interfaces those collaborators must
// satisfy, plus the small value types passed across them.
package scenekit

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/sampler"
)

// HitPoint is the minimal result of a scene intersection query.
type HitPoint struct {
	Distance     float64
	ObjectID     uint64
	SubObjectID  uint64
	U, V         float64
}

// Hit reports whether the query found an intersection (Distance < +Inf).
func (h HitPoint) Hit() bool { return h.Distance > 0 && !isInf(h.Distance) }

func isInf(f float64) bool { return f > 1e300 }

// NoHit is the sentinel HitPoint returned when a ray misses everything.
var NoHit = HitPoint{Distance: 1e301}

// IntersectionData carries the geometric frame and material binding
// resolved from a HitPoint, per spec.md §6: "evaluate_intersection(ray,
// hitPoint, time) -> IntersectionData { frame(4×Vec3), material, texCoord }".
type IntersectionData struct {
	Frame    [4]colorspace.Vec3 // tangent, bitangent, normal, position
	Material Material
	TexCoord colorspace.Vec2
}

func (id IntersectionData) Tangent() colorspace.Vec3   { return id.Frame[0] }
func (id IntersectionData) Bitangent() colorspace.Vec3 { return id.Frame[1] }
func (id IntersectionData) Normal() colorspace.Vec3    { return id.Frame[2] }
func (id IntersectionData) Position() colorspace.Vec3  { return id.Frame[3] }

// ShadingData holds the fully resolved surface state at a path vertex,
// filled by Scene.EvaluateShadingData per spec.md §6.
type ShadingData struct {
	Point     colorspace.Vec3
	Normal    colorspace.Vec3
	Tangent   colorspace.Vec3
	Bitangent colorspace.Vec3
	TexCoord  colorspace.Vec2
	Material  Material
	// MaterialParams holds resolved texture lookups (baseColor, roughness,
	// metalness, IoR, emission, ...); evaluation bodies live with the
	// material collaborator, so this is left as an opaque bag here.
	MaterialParams map[string]float64
}

// BSDFEvent classifies the kind of scattering a Material.Sample produced,
// per spec.md §4.3: "event ∈ {Null, DiffuseReflection, DiffuseTransmission,
// GlossyReflection, GlossyRefraction, SpecularReflection, SpecularRefraction}".
type BSDFEvent int

const (
	EventNull BSDFEvent = iota
	EventDiffuseReflection
	EventDiffuseTransmission
	EventGlossyReflection
	EventGlossyRefraction
	EventSpecularReflection
	EventSpecularRefraction
)

// IsSpecular reports whether the event is one of the Dirac-delta kinds,
// i.e. it cannot be hit by next-event-estimation shadow rays.
func (e BSDFEvent) IsSpecular() bool {
	return e == EventSpecularReflection || e == EventSpecularRefraction
}

// BSDFSample is the result of sampling a material's scattering
// distribution: SampleBSDF(material, outgoingDir) -> (incomingDir, color,
// pdf, event), per spec.md §4.3.
type BSDFSample struct {
	Incoming colorspace.Vec3
	Color    colorspace.RayColor
	PDF      float64
	Event    BSDFEvent
}

// Material is the BSDF contract every surface shader implements. Bodies
// are out of scope for this core (spec.md §1); concrete materials are a
// collaborator's responsibility.
type Material interface {
	// IsDelta reports whether every lobe of this material is a Dirac
	// specular (skips NEE entirely when true).
	IsDelta() bool

	// Sample draws an incoming direction given the outgoing direction at
	// shading, using sampler for any randomness needed.
	Sample(shading ShadingData, outgoing colorspace.Vec3, s sampler.Sampler) (BSDFSample, bool)

	// Evaluate returns the BSDF value together with the forward and
	// reverse-traced PDFs for the given direction pair, per spec.md §4.3:
	// "EvaluateBSDF(material, outgoingDir, incomingDir) -> (color,
	// forwardPdf, reversePdf)".
	Evaluate(shading ShadingData, outgoing, incoming colorspace.Vec3) (color colorspace.RayColor, forwardPdf, reversePdf float64)
}

// Emitter is implemented by materials that emit radiance.
type Emitter interface {
	Emit(outgoing colorspace.Vec3, shading ShadingData) colorspace.RayColor
}

// LightType distinguishes delta (point/spot) lights, which NEE can sample
// exactly but BSDF sampling can never hit, from area and infinite lights.
type LightType string

const (
	LightTypeArea     LightType = "area"
	LightTypeDelta    LightType = "delta"
	LightTypeInfinite LightType = "infinite"
)

// LightSample is the result of sampling a light toward a shading point.
type LightSample struct {
	Point     colorspace.Vec3
	Normal    colorspace.Vec3
	Direction colorspace.Vec3
	Distance  float64
	Emission  colorspace.RayColor
	PDF       float64
}

// EmissionSample is the result of sampling emission from a light's surface,
// used by light-path-based integrators (LightTracer, VCM).
type EmissionSample struct {
	Point        colorspace.Vec3
	Normal       colorspace.Vec3
	Direction    colorspace.Vec3
	Emission     colorspace.RayColor
	AreaPDF      float64
	DirectionPDF float64
}

// Light is the contract every light source collaborator satisfies, per
// spec.md §6.
type Light interface {
	Type() LightType
	Sample(point, normal colorspace.Vec3, u colorspace.Vec2) LightSample
	PDF(point, normal, direction colorspace.Vec3) float64
	SampleEmission(samplePoint, sampleDirection colorspace.Vec2) EmissionSample
	EmissionPDF(point, direction colorspace.Vec3) float64
	Emit(ray colorspace.Ray) colorspace.RayColor
}

// Scene is the external collaborator the integrators trace against, per
// spec.md §6.
type Scene interface {
	Trace(ray colorspace.Ray) (HitPoint, bool)
	EvaluateIntersection(ray colorspace.Ray, hit HitPoint, time float64) IntersectionData
	EvaluateShadingData(sd *ShadingData, intersection IntersectionData)
	Lights() []Light
	// PickLight selects a light for NEE using a single uniform and returns
	// it with its selection probability (spec.md §6:
	// "pick_light(uniform) -> (lightObject, pickPdf)").
	PickLight(u float64) (Light, float64)
}

// Camera is the external collaborator that generates primary rays, per
// spec.md §6.
type Camera interface {
	// GenerateRay builds a primary ray from normalized film coordinates in
	// [0,1]^2, using sampler for lens/time jitter.
	GenerateRay(filmCoord colorspace.Vec2, s sampler.Sampler) colorspace.Ray

	// SampleImportance computes the raster position and importance response
	// for connecting an external path vertex directly to the lens, per
	// spec.md §4.3.d: LightTracer and VCM "connect every light-path vertex
	// to the camera by importance sampling, splatting its contribution into
	// the corresponding pixel." visible is false when point falls outside
	// the camera's frustum.
	SampleImportance(point colorspace.Vec3) (filmCoord colorspace.Vec2, importance colorspace.RayColor, pdf float64, visible bool)
}
