// Package postprocess implements the display pipeline that turns a Film's
// linear HDR accumulation into 8-bit BGRA output: exposure, color grading
// (gain, saturation, contrast), tonemapping through a precomputed 3D LUT,
// optional bloom and film grain, dithering, and negate, per spec.md §2's
// post-processing pipeline. Grounded on the teacher's
// pkg/renderer/raytracer.go vec3ToColor (display encoding), generalized
// into a multi-stage, LUT-backed pipeline.
package postprocess

// TonemapOperator selects the response curve baked into the LUT, per
// spec.md §2.
type TonemapOperator int

const (
	TonemapClamped TonemapOperator = iota
	TonemapReinhard
	TonemapFilmicHejlBurgessDawson
	TonemapApproxACES
)

// BloomElement is one weighted Gaussian kernel contributing to the bloom
// composite; multiple elements with different radii approximate the
// multi-scale glow real camera lenses produce.
type BloomElement struct {
	Radius float64
	Weight float64
}

// PostprocessParams configures the whole pipeline, per spec.md §4.1
// set_postprocess_params(...). Grounded on the teacher's
// pkg/renderer.ProgressiveConfig sibling for display-stage tunables.
type PostprocessParams struct {
	Exposure   float64 // stops, applied before grading
	Gain       float64 // linear multiplier
	Saturation float64 // 1.0 = unchanged
	Contrast   float64 // 1.0 = unchanged

	Tonemap      TonemapOperator
	LUTSizeShift int // LUT side length = 1 << LUTSizeShift

	BloomEnabled   bool
	BloomThreshold float64
	BloomIntensity float64
	BloomElements  []BloomElement

	DitherEnabled bool

	FilmGrainEnabled   bool
	FilmGrainIntensity float64

	Negate bool

	// VisualizeTimePerPixel swaps the graded image for a heatmap of
	// per-pixel render cost, per spec.md's preserved debug-mode Open
	// Question resolution: this flag still flows through the whole
	// pipeline (exposure/grading/dither still apply to the heatmap) rather
	// than short-circuiting it, matching the teacher's original behavior.
	VisualizeTimePerPixel bool
}

// DefaultPostprocessParams mirrors the teacher's Default*Config idiom.
func DefaultPostprocessParams() PostprocessParams {
	return PostprocessParams{
		Exposure:       0,
		Gain:           1,
		Saturation:     1,
		Contrast:       1,
		Tonemap:        TonemapApproxACES,
		LUTSizeShift:   5,
		BloomEnabled:   false,
		BloomThreshold: 1.0,
		BloomIntensity: 0.25,
		BloomElements: []BloomElement{
			{Radius: 4, Weight: 0.6},
			{Radius: 16, Weight: 0.4},
		},
		DitherEnabled: true,
	}
}

// Diff reports which expensive recomputations switching from old to new
// requires, per spec.md §4.1: "set_postprocess_params diffs against the
// previous params to decide whether the LUT needs regenerating or only a
// cheap per-pixel pass is required."
type Diff struct {
	LUTGenerationRequired bool
	FullUpdateRequired    bool
}

// DiffParams compares old and new PostprocessParams.
func DiffParams(old, new PostprocessParams) Diff {
	lutFields := old.Tonemap != new.Tonemap || old.LUTSizeShift != new.LUTSizeShift ||
		old.Gain != new.Gain || old.Saturation != new.Saturation || old.Contrast != new.Contrast
	fullUpdate := lutFields ||
		old.Exposure != new.Exposure ||
		old.Gain != new.Gain ||
		old.Saturation != new.Saturation ||
		old.Contrast != new.Contrast ||
		old.BloomEnabled != new.BloomEnabled ||
		old.BloomThreshold != new.BloomThreshold ||
		old.BloomIntensity != new.BloomIntensity ||
		old.DitherEnabled != new.DitherEnabled ||
		old.FilmGrainEnabled != new.FilmGrainEnabled ||
		old.FilmGrainIntensity != new.FilmGrainIntensity ||
		old.Negate != new.Negate ||
		old.VisualizeTimePerPixel != new.VisualizeTimePerPixel ||
		len(old.BloomElements) != len(new.BloomElements)

	return Diff{LUTGenerationRequired: lutFields, FullUpdateRequired: fullUpdate}
}
