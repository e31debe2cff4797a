// Package fixtures provides a minimal concrete Scene/Material/Light
// implementation — sphere geometry, Lambertian and emissive materials, and
// a spherical area light — used by cmd/render's demo scene and by the
// pkg/integrator tests.
// Scene/geometry construction and material evaluation bodies are outside
// this module's core scope (spec.md §1); this package exists only so the
// core has something concrete to drive, grounded loosely on the teacher's
// pkg/geometry/sphere.go ray-sphere intersection formula (quadratic
// discriminant test) and pkg/material/lambertian.go (cosine-weighted
// hemisphere sampling), rebuilt against the scenekit interfaces.
package fixtures

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// Sphere is a single piece of scene geometry.
type Sphere struct {
	Center   colorspace.Vec3
	Radius   float64
	Material scenekit.Material
}

func (s *Sphere) intersect(ray colorspace.Ray, tMin, tMax float64) (float64, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return 0, false
		}
	}
	return root, true
}

func (s *Sphere) normalAt(p colorspace.Vec3) colorspace.Vec3 {
	return p.Subtract(s.Center).Multiply(1 / s.Radius)
}

// orthonormalBasis builds an arbitrary tangent/bitangent pair orthogonal to
// n, using the Duff et al. branchless construction.
func orthonormalBasis(n colorspace.Vec3) (tangent, bitangent colorspace.Vec3) {
	sign := 1.0
	if n.Z < 0 {
		sign = -1.0
	}
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	tangent = colorspace.NewVec3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	bitangent = colorspace.NewVec3(b, sign+n.Y*n.Y*a, -n.Y)
	return tangent, bitangent
}

const sceneEpsilon = 1e-4
const sceneMaxDistance = 1e6

// Scene is a flat list of spheres implementing scenekit.Scene.
type Scene struct {
	Spheres      []*Sphere
	LightObjects []scenekit.Light
	lightSampler scenekit.LightSampler
}

// NewScene builds a Scene from spheres and lights, using a uniform light
// sampler by default.
func NewScene(spheres []*Sphere, lights []scenekit.Light) *Scene {
	return &Scene{
		Spheres:      spheres,
		LightObjects: lights,
		lightSampler: scenekit.NewUniformLightSampler(lights),
	}
}

func (s *Scene) Trace(ray colorspace.Ray) (scenekit.HitPoint, bool) {
	best := scenekit.NoHit
	found := false
	for i, sphere := range s.Spheres {
		if t, ok := sphere.intersect(ray, sceneEpsilon, sceneMaxDistance); ok && t < best.Distance {
			best = scenekit.HitPoint{Distance: t, ObjectID: uint64(i)}
			found = true
		}
	}
	return best, found
}

func (s *Scene) EvaluateIntersection(ray colorspace.Ray, hit scenekit.HitPoint, time float64) scenekit.IntersectionData {
	sphere := s.Spheres[hit.ObjectID]
	position := ray.At(hit.Distance)
	normal := sphere.normalAt(position)
	tangent, bitangent := orthonormalBasis(normal)

	return scenekit.IntersectionData{
		Frame:    [4]colorspace.Vec3{tangent, bitangent, normal, position},
		Material: sphere.Material,
	}
}

func (s *Scene) EvaluateShadingData(sd *scenekit.ShadingData, intersection scenekit.IntersectionData) {
	sd.Point = intersection.Position()
	sd.Normal = intersection.Normal()
	sd.Tangent = intersection.Tangent()
	sd.Bitangent = intersection.Bitangent()
	sd.TexCoord = intersection.TexCoord
	sd.Material = intersection.Material
}

func (s *Scene) Lights() []scenekit.Light { return s.LightObjects }

func (s *Scene) PickLight(u float64) (scenekit.Light, float64) {
	light, pdf, _ := s.lightSampler.SampleLight(u)
	return light, pdf
}

// occluded reports whether any sphere blocks the segment of length maxDist
// from origin along direction. Nothing in this module calls it.
func (s *Scene) occluded(origin, direction colorspace.Vec3, maxDist float64) bool {
	ray := colorspace.NewRay(origin.Add(direction.Multiply(sceneEpsilon)), direction)
	hit, ok := s.Trace(ray)
	return ok && hit.Distance < maxDist-sceneEpsilon
}

// Ensure Scene satisfies the exported interface at compile time.
var _ scenekit.Scene = (*Scene)(nil)

// sampleCosineHemisphere draws a direction from the cosine-weighted
// hemisphere around n, using Malley's method (uniform disc + projection).
func sampleCosineHemisphere(n colorspace.Vec3, u colorspace.Vec2) (colorspace.Vec3, float64) {
	tangent, bitangent := orthonormalBasis(n)
	r := math.Sqrt(u.X)
	theta := 2 * math.Pi * u.Y
	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-u.X))

	dir := tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(n.Multiply(z))
	pdf := z / math.Pi
	return dir.Normalize(), pdf
}
