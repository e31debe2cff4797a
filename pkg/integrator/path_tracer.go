package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// PathTracer is the naive unidirectional estimator, per spec.md §4.3.b:
// "extends a camera path by BSDF sampling alone; light is only gathered by
// directly hitting an emitter. No next-event estimation." Grounded on the
// teacher's pkg/integrator/path_tracing.go pathTraceRay, generalized to the
// RayColor/Wavelength/Sampler abstractions.
type PathTracer struct{}

func NewPathTracer() *PathTracer { return &PathTracer{} }

func (pt *PathTracer) Name() string { return "path-tracer" }

func (pt *PathTracer) RenderPixel(ray colorspace.Ray, params RenderingParams, ctx *RenderingContext) colorspace.RayColor {
	state := NewPathState(ray)
	radiance := colorspace.RayColorZero

	for {
		hit, ok := ctx.Scene.Trace(state.Ray)
		if !ok || !hit.Hit() {
			pt.recordTermination(ctx, TerminationBackgroundHit)
			break
		}

		intersection := ctx.Scene.EvaluateIntersection(state.Ray, hit, ctx.Time)
		var shading scenekit.ShadingData
		ctx.Scene.EvaluateShadingData(&shading, intersection)

		outgoing := state.Ray.Direction.Negate()
		if emitter, isEmitter := shading.Material.(scenekit.Emitter); isEmitter {
			emitted := emitter.Emit(outgoing, shading)
			radiance = radiance.Add(state.Throughput.MultiplyVec(emitted))
		}

		if int(state.Depth) >= params.MaxDepth {
			pt.recordTermination(ctx, TerminationDepthExceeded)
			break
		}

		sample, scattered := sampleBSDF(shading.Material, shading, outgoing, ctx.Sampler)
		if !scattered || sample.PDF <= 0 {
			pt.recordTermination(ctx, TerminationNoScatterEvent)
			break
		}

		cosTheta := shading.Normal.AbsDot(sample.Incoming)
		if cosTheta < CosEpsilon {
			pt.recordTermination(ctx, TerminationNoScatterEvent)
			break
		}

		state.Throughput = state.Throughput.MultiplyVec(sample.Color).Multiply(cosTheta / sample.PDF)
		if !colorspace.IsValidRayColor(state.Throughput) || state.Throughput.MaxComponent() <= 0 {
			pt.recordTermination(ctx, TerminationThroughputNearZero)
			break
		}

		state.LastEvent = sample.Event
		state.LastSpecular = sample.Event.IsSpecular()
		state.LastPDF = sample.PDF
		state.Depth++

		terminate, compensation := applyRussianRoulette(state.Depth, params.MinRussianRouletteDepth, state.Throughput, ctx.Sampler.Get1D())
		if terminate {
			pt.recordTermination(ctx, TerminationRussianRoulette)
			break
		}
		state.Throughput = state.Throughput.Multiply(compensation)

		state.Ray = colorspace.NewRay(shading.Point, sample.Incoming)
		state.Ray.Time = ctx.Time

		if ctx.DebugCapture != nil {
			ctx.DebugCapture.Bounces = append(ctx.DebugCapture.Bounces, PathDebugBounce{
				RayOrigin:    state.Ray.Origin,
				RayDir:       state.Ray.Direction,
				Hit:          true,
				Shading:      shading,
				Throughput:   state.Throughput,
				SampledEvent: sample.Event,
			})
		}
	}

	if !isValidContribution(radiance) {
		return colorspace.RayColorZero
	}
	return radiance
}

func (pt *PathTracer) recordTermination(ctx *RenderingContext, reason PathTerminationReason) {
	if ctx.DebugCapture != nil {
		ctx.DebugCapture.Termination = reason
	}
}
