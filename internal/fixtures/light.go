package fixtures

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// SphereLight is a spherical area light, importance-sampled via the
// standard cone-subtended-by-a-sphere solid-angle technique (Shirley et
// al.) so NEE shadow rays toward small, distant lights aren't wasted on
// directions that miss it.
type SphereLight struct {
	Center   colorspace.Vec3
	Radius   float64
	Emission colorspace.RayColor
}

func (l *SphereLight) Type() scenekit.LightType { return scenekit.LightTypeArea }

func (l *SphereLight) Sample(point, normal colorspace.Vec3, u colorspace.Vec2) scenekit.LightSample {
	toCenter := l.Center.Subtract(point)
	distSq := toCenter.LengthSquared()
	dist := math.Sqrt(distSq)

	if dist <= l.Radius {
		return l.sampleAreaFallback(point, u)
	}

	w := toCenter.Multiply(1 / dist)
	tangent, bitangent := orthonormalBasis(w)

	sinThetaMaxSq := (l.Radius * l.Radius) / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
	cosTheta := 1 - u.X*(1-cosThetaMax)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	dir := tangent.Multiply(sinTheta * math.Cos(phi)).
		Add(bitangent.Multiply(sinTheta * math.Sin(phi))).
		Add(w.Multiply(cosTheta)).Normalize()

	pdf := 1.0 / (2 * math.Pi * (1 - cosThetaMax))

	hitDist, hitPoint, normalAtHit, ok := l.intersectFromOutside(point, dir)
	if !ok {
		return scenekit.LightSample{}
	}

	return scenekit.LightSample{
		Point:     hitPoint,
		Normal:    normalAtHit,
		Direction: dir,
		Distance:  hitDist,
		Emission:  l.Emission,
		PDF:       pdf,
	}
}

func (l *SphereLight) sampleAreaFallback(point colorspace.Vec3, u colorspace.Vec2) scenekit.LightSample {
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u.Y
	localNormal := colorspace.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
	surfacePoint := l.Center.Add(localNormal.Multiply(l.Radius))

	toSurface := surfacePoint.Subtract(point)
	dist := toSurface.Length()
	if dist < 1e-8 {
		return scenekit.LightSample{}
	}
	dir := toSurface.Multiply(1 / dist)
	cosAtLight := localNormal.AbsDot(dir)
	if cosAtLight < 1e-6 {
		return scenekit.LightSample{}
	}
	area := 4 * math.Pi * l.Radius * l.Radius
	pdf := (dist * dist) / (cosAtLight * area)

	return scenekit.LightSample{
		Point:     surfacePoint,
		Normal:    localNormal,
		Direction: dir,
		Distance:  dist,
		Emission:  l.Emission,
		PDF:       pdf,
	}
}

// intersectFromOutside finds where a ray from point in direction dir first
// touches the sphere, used to turn a sampled cone direction back into a
// concrete surface point and normal.
func (l *SphereLight) intersectFromOutside(point, dir colorspace.Vec3) (dist float64, hitPoint, normal colorspace.Vec3, ok bool) {
	oc := point.Subtract(l.Center)
	b := oc.Dot(dir)
	c := oc.LengthSquared() - l.Radius*l.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, colorspace.Vec3{}, colorspace.Vec3{}, false
	}
	sqrtD := math.Sqrt(disc)
	t := -b - sqrtD
	if t < 1e-6 {
		t = -b + sqrtD
	}
	if t < 1e-6 {
		return 0, colorspace.Vec3{}, colorspace.Vec3{}, false
	}
	hitPoint = point.Add(dir.Multiply(t))
	normal = hitPoint.Subtract(l.Center).Multiply(1 / l.Radius)
	return t, hitPoint, normal, true
}

func (l *SphereLight) PDF(point, normal, direction colorspace.Vec3) float64 {
	toCenter := l.Center.Subtract(point)
	distSq := toCenter.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist <= l.Radius {
		return 0
	}
	w := toCenter.Multiply(1 / dist)
	cosAngle := w.Dot(direction)
	sinThetaMaxSq := (l.Radius * l.Radius) / distSq
	cosThetaMax := math.Sqrt(math.Max(0, 1-sinThetaMaxSq))
	if cosAngle < cosThetaMax {
		return 0
	}
	return 1.0 / (2 * math.Pi * (1 - cosThetaMax))
}

func (l *SphereLight) SampleEmission(samplePoint, sampleDirection colorspace.Vec2) scenekit.EmissionSample {
	z := 1 - 2*samplePoint.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * samplePoint.Y
	normal := colorspace.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
	point := l.Center.Add(normal.Multiply(l.Radius))

	dir, dirPdf := sampleCosineHemisphere(normal, sampleDirection)
	area := 4 * math.Pi * l.Radius * l.Radius

	return scenekit.EmissionSample{
		Point:        point,
		Normal:       normal,
		Direction:    dir,
		Emission:     l.Emission,
		AreaPDF:      1.0 / area,
		DirectionPDF: dirPdf,
	}
}

func (l *SphereLight) EmissionPDF(point, direction colorspace.Vec3) float64 {
	normal := point.Subtract(l.Center).Multiply(1 / l.Radius)
	cosTheta := normal.AbsDot(direction)
	return cosTheta * invPi
}

func (l *SphereLight) Emit(ray colorspace.Ray) colorspace.RayColor {
	return colorspace.RayColorZero
}

var _ scenekit.Light = (*SphereLight)(nil)
