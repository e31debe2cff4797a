package integrator

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// DebugMode selects what DebugIntegrator visualizes, per spec.md §4.3.a.
type DebugMode int

const (
	DebugTriangleID DebugMode = iota
	DebugNormal
	DebugTangent
	DebugPosition
	DebugDepth
	DebugMaterialChannel
)

// DebugIntegrator renders a single geometric or material quantity per pixel
// with no light transport, per spec.md §4.3.a: "returns a visualization
// color derived only from the first hit; never recurses."
type DebugIntegrator struct {
	Mode           DebugMode
	MaterialParam  string  // used when Mode == DebugMaterialChannel
	DepthFar       float64 // distance mapped to white for DebugDepth
}

func NewDebugIntegrator(mode DebugMode) *DebugIntegrator {
	return &DebugIntegrator{Mode: mode, DepthFar: 100}
}

func (d *DebugIntegrator) Name() string { return "debug" }

func (d *DebugIntegrator) RenderPixel(ray colorspace.Ray, params RenderingParams, ctx *RenderingContext) colorspace.RayColor {
	hit, ok := ctx.Scene.Trace(ray)
	if !ok || !hit.Hit() {
		return colorspace.RayColorZero
	}
	intersection := ctx.Scene.EvaluateIntersection(ray, hit, ctx.Time)

	switch d.Mode {
	case DebugTriangleID:
		return triangleIDColor(hit.ObjectID, hit.SubObjectID)
	case DebugNormal:
		n := intersection.Normal()
		return colorspace.NewRayColorRGB(n.X*0.5+0.5, n.Y*0.5+0.5, n.Z*0.5+0.5)
	case DebugTangent:
		t := intersection.Tangent()
		return colorspace.NewRayColorRGB(t.X*0.5+0.5, t.Y*0.5+0.5, t.Z*0.5+0.5)
	case DebugPosition:
		p := intersection.Position()
		return colorspace.NewRayColorRGB(frac(p.X), frac(p.Y), frac(p.Z))
	case DebugDepth:
		v := clamp(hit.Distance/d.DepthFar, 0, 1)
		return colorspace.NewRayColorRGB(v, v, v)
	case DebugMaterialChannel:
		var shading scenekit.ShadingData
		ctx.Scene.EvaluateShadingData(&shading, intersection)
		v := shading.MaterialParams[d.MaterialParam]
		return colorspace.NewRayColorRGB(v, v, v)
	default:
		return colorspace.RayColorZero
	}
}

func frac(x float64) float64 {
	f := x - math.Floor(x)
	if f < 0 {
		f += 1
	}
	return f
}

// triangleIDColor hashes (objectID, subObjectID) into an HSV color per
// spec.md §4.3.a: "a 64-bit hash of (objectId << 32) | subObjectId ...
// hue = low32/2^32, saturation = 0.5 + 0.5*high32/2^32."
func triangleIDColor(objectID, subObjectID uint64) colorspace.RayColor {
	packed := objectID<<32 | subObjectID
	h := packed
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	const twoPow32 = 4294967296.0
	hue := float64(uint32(h)) / twoPow32
	sat := 0.5 + 0.5*float64(uint32(h>>32))/twoPow32
	r, g, b := hsvToRGB(hue, sat, 0.95)
	return colorspace.NewRayColorRGB(r, g, b)
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
