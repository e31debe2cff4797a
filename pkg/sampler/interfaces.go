// Package sampler implements the renderer's low-discrepancy sample supply:
// a Halton sequence advanced by per-pass "leaps" (spec.md §4.4), wrapped by
// a GenericSampler that adds per-pixel decorrelation and optional blue-noise
// dithering.
package sampler

import "github.com/df07/go-progressive-raytracer/pkg/colorspace"

// Sampler is the per-dimension low-discrepancy float source every
// integrator and material draws from. Implementations must be safe to use
// from exactly one goroutine at a time (each worker owns one Sampler via
// its thread-local RenderingContext, per spec.md §5).
type Sampler interface {
	// Get1D returns the next sample in [0,1).
	Get1D() float64
	// Get2D returns the next two sample dimensions as a Vec2 in [0,1)^2.
	Get2D() colorspace.Vec2
	// Get3D returns the next three sample dimensions as a Vec3 in [0,1)^3.
	Get3D() colorspace.Vec3
}
