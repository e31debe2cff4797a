package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// LightTracer traces paths forward from emitters and connects every vertex
// directly to the camera lens, splatting each connection's contribution
// into the film rather than returning it from RenderPixel, per spec.md
// §4.3.d: "the dual of PathTracer: light sub-paths are grown by BSDF
// sampling starting from an emitted photon, and every non-specular vertex
// is connected to the camera via importance sampling." Grounded on the
// teacher's pkg/integrator/bdpt.go light-subpath construction, trimmed to
// the single light-path/camera-connection strategy (no camera subpath).
type LightTracer struct{}

func NewLightTracer() *LightTracer { return &LightTracer{} }

func (lt *LightTracer) Name() string { return "light-tracer" }

// RenderPixel contributes nothing of its own: LightTracer's radiance
// arrives entirely through Film splats performed in PreRender. The camera
// ray is not traced; RenderPixel returns zero radiance immediately.
func (lt *LightTracer) RenderPixel(ray colorspace.Ray, params RenderingParams, ctx *RenderingContext) colorspace.RayColor {
	return colorspace.RayColorZero
}

// PreRender traces params.NumLightPaths light sub-paths per worker context
// and splats their camera connections directly onto the film, per spec.md
// §4.1 step 4's "pre_render may enqueue parallel sub-tasks, e.g. a light
// sub-path pass."
func (lt *LightTracer) PreRender(scene scenekit.Scene, params RenderingParams, contexts []*RenderingContext) error {
	for _, ctx := range contexts {
		if ctx.Camera == nil || ctx.Film == nil {
			continue
		}
		paths := params.NumLightPaths
		if paths <= 0 {
			paths = 1
		}
		for i := 0; i < paths; i++ {
			lt.traceLightPath(scene, params, ctx)
		}
	}
	return nil
}

func (lt *LightTracer) traceLightPath(scene scenekit.Scene, params RenderingParams, ctx *RenderingContext) {
	light, pickPdf := scene.PickLight(ctx.Sampler.Get1D())
	if light == nil || pickPdf <= 0 {
		return
	}

	emission := light.SampleEmission(ctx.Sampler.Get2D(), ctx.Sampler.Get2D())
	if emission.AreaPDF <= 0 || emission.DirectionPDF <= 0 {
		return
	}

	throughput := emission.Emission.Multiply(1.0 / (pickPdf * emission.AreaPDF * emission.DirectionPDF))
	cosLight := emission.Normal.AbsDot(emission.Direction)
	throughput = throughput.Multiply(cosLight)

	ray := colorspace.NewRay(emission.Point, emission.Direction)
	ray.Time = ctx.Time

	lt.connectToCamera(ctx, emission.Point, emission.Normal, throughput)

	depth := uint32(1)
	maxDepth := params.MaxDepth
	for int(depth) < maxDepth {
		hit, ok := ctx.Scene.Trace(ray)
		if !ok || !hit.Hit() {
			break
		}
		intersection := ctx.Scene.EvaluateIntersection(ray, hit, ctx.Time)
		var shading scenekit.ShadingData
		ctx.Scene.EvaluateShadingData(&shading, intersection)
		outgoing := ray.Direction.Negate()

		if !shading.Material.IsDelta() {
			lt.connectToCamera(ctx, shading.Point, shading.Normal, throughput)
		}

		sample, scattered := sampleBSDF(shading.Material, shading, outgoing, ctx.Sampler)
		if !scattered || sample.PDF <= 0 {
			break
		}
		cosTheta := shading.Normal.AbsDot(sample.Incoming)
		if cosTheta < CosEpsilon {
			break
		}
		throughput = throughput.MultiplyVec(sample.Color).Multiply(cosTheta / sample.PDF)
		if !colorspace.IsValidRayColor(throughput) || throughput.MaxComponent() <= 0 {
			break
		}
		depth++

		terminate, compensation := applyRussianRoulette(depth, params.MinRussianRouletteDepth, throughput, ctx.Sampler.Get1D())
		if terminate {
			break
		}
		throughput = throughput.Multiply(compensation)

		ray = colorspace.NewRay(shading.Point, sample.Incoming)
		ray.Time = ctx.Time
	}
}

// connectToCamera attempts to splat a light-path vertex's contribution onto
// the film by importance-sampling the lens, per spec.md §4.3.d.
func (lt *LightTracer) connectToCamera(ctx *RenderingContext, point, normal colorspace.Vec3, throughput colorspace.RayColor) {
	filmCoord, importance, pdf, visible := ctx.Camera.SampleImportance(point)
	if !visible || pdf <= 0 {
		return
	}
	contribution := throughput.MultiplyVec(importance).Multiply(1.0 / pdf)
	if !isValidContribution(contribution) {
		return
	}
	_ = normal // reserved for cosine-weighted connection variants
	ctx.Film.Splat(filmCoord.X, filmCoord.Y, contribution)
}
