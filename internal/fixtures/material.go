package fixtures

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/sampler"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

const invPi = 1.0 / 3.14159265358979323846

// Lambertian is a perfectly diffuse, energy-conserving BSDF: f = albedo/pi,
// sampled cosine-weighted so the cosine term cancels the pdf.
type Lambertian struct {
	Albedo colorspace.RayColor
}

func (l *Lambertian) IsDelta() bool { return false }

func (l *Lambertian) Sample(shading scenekit.ShadingData, outgoing colorspace.Vec3, s sampler.Sampler) (scenekit.BSDFSample, bool) {
	n := faceforward(shading.Normal, outgoing)
	dir, pdf := sampleCosineHemisphere(n, s.Get2D())
	if pdf <= 0 {
		return scenekit.BSDFSample{}, false
	}
	return scenekit.BSDFSample{
		Incoming: dir,
		Color:    l.Albedo.Multiply(invPi),
		PDF:      pdf,
		Event:    scenekit.EventDiffuseReflection,
	}, true
}

func (l *Lambertian) Evaluate(shading scenekit.ShadingData, outgoing, incoming colorspace.Vec3) (colorspace.RayColor, float64, float64) {
	n := faceforward(shading.Normal, outgoing)
	cosTheta := n.Dot(incoming)
	if cosTheta <= 0 {
		return colorspace.RayColorZero, 0, 0
	}
	pdf := cosTheta * invPi
	return l.Albedo.Multiply(invPi), pdf, pdf
}

// faceforward flips n to the same side as outgoing, so a sphere's outward
// geometric normal still produces a correct hemisphere when seen from
// inside (used by the furnace-test enclosing sphere).
func faceforward(n, outgoing colorspace.Vec3) colorspace.Vec3 {
	if n.Dot(outgoing) < 0 {
		return n.Negate()
	}
	return n
}

// DiffuseLight is a two-sided emissive surface with no reflective
// component: every BSDF query reports no scattering so NEE and BSDF
// sampling both treat it purely as a light, never as a reflector.
type DiffuseLight struct {
	Emission colorspace.RayColor
}

func (d *DiffuseLight) IsDelta() bool { return true }

func (d *DiffuseLight) Sample(scenekit.ShadingData, colorspace.Vec3, sampler.Sampler) (scenekit.BSDFSample, bool) {
	return scenekit.BSDFSample{}, false
}

func (d *DiffuseLight) Evaluate(scenekit.ShadingData, colorspace.Vec3, colorspace.Vec3) (colorspace.RayColor, float64, float64) {
	return colorspace.RayColorZero, 0, 0
}

func (d *DiffuseLight) Emit(outgoing colorspace.Vec3, shading scenekit.ShadingData) colorspace.RayColor {
	if shading.Normal.AbsDot(outgoing) <= 0 {
		return colorspace.RayColorZero
	}
	return d.Emission
}

var (
	_ scenekit.Material = (*Lambertian)(nil)
	_ scenekit.Material = (*DiffuseLight)(nil)
	_ scenekit.Emitter  = (*DiffuseLight)(nil)
)
