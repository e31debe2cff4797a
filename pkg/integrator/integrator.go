package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// Integrator is the light-transport estimator contract every renderer mode
// implements, per spec.md §4.3: "render_pixel(ray, params, ctx) -> RayColor".
// A pixel's returned color is the estimator's own-ray contribution; some
// integrators (LightTracer, VCM) additionally splat contributions straight
// onto the Film via ctx during PreRender or RenderPixel — see those types'
// docs.
type Integrator interface {
	RenderPixel(ray colorspace.Ray, params RenderingParams, ctx *RenderingContext) colorspace.RayColor
}

// PreRenderer is implemented by integrators that need a fenced setup phase
// before per-tile rendering starts for a pass, per spec.md §4.1 step 4:
// "Call integrator pre_render(...) (may enqueue parallel sub-tasks, e.g. a
// light sub-path pass); the scheduler waits on it before tiling the frame."
type PreRenderer interface {
	PreRender(scene scenekit.Scene, params RenderingParams, contexts []*RenderingContext) error
}

// Name is implemented by integrators so the viewport/CLI can report which
// mode is active without a type switch.
type Name interface {
	Name() string
}

// RayPacket groups several primary rays that the scheduler has batched
// together (a run of contiguous pixels along one scanline, as the viewport
// groups them), per spec.md §4.1's packet
// traversal mode: "tile size must be a multiple of the packet group size."
type RayPacket struct {
	Rays           []colorspace.Ray
	PixelX, PixelY []int
}

// PacketRenderer is implemented by integrators that can exploit
// SIMD-friendly batched traversal; the viewport falls back to one
// RenderPixel call per ray for integrators that don't implement it.
type PacketRenderer interface {
	RaytracePacket(packet RayPacket, params RenderingParams, ctx *RenderingContext) []colorspace.RayColor
}
