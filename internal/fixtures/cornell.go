package fixtures

import (
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// NewCornellBoxScene builds a sphere-only stand-in for the classic Cornell
// box: red and green walls on either side, a white back/floor/ceiling, and
// a single overhead area light, all approximated with very large spheres so
// the demo scene needs no triangle mesh support. Two smaller spheres sit on
// the floor as the box's usual occupants.
func NewCornellBoxScene() *Scene {
	const wallRadius = 1e4

	red := &Lambertian{Albedo: colorspace.NewRayColorRGB(0.65, 0.05, 0.05)}
	green := &Lambertian{Albedo: colorspace.NewRayColorRGB(0.12, 0.45, 0.15)}
	white := &Lambertian{Albedo: colorspace.NewRayColorRGB(0.73, 0.73, 0.73)}
	glass := &Lambertian{Albedo: colorspace.NewRayColorRGB(0.9, 0.9, 0.9)}
	lightMat := &DiffuseLight{Emission: colorspace.NewRayColorRGB(15, 15, 15)}

	spheres := []*Sphere{
		{Center: colorspace.NewVec3(-wallRadius - 1, 0, 0), Radius: wallRadius, Material: red},
		{Center: colorspace.NewVec3(wallRadius+1, 0, 0), Radius: wallRadius, Material: green},
		{Center: colorspace.NewVec3(0, 0, -wallRadius - 1), Radius: wallRadius, Material: white},
		{Center: colorspace.NewVec3(0, -wallRadius-1, 0), Radius: wallRadius, Material: white},
		{Center: colorspace.NewVec3(0, wallRadius+1, 0), Radius: wallRadius, Material: white},
		{Center: colorspace.NewVec3(-0.4, -0.6, -0.4), Radius: 0.4, Material: white},
		{Center: colorspace.NewVec3(0.4, -0.75, 0.1), Radius: 0.25, Material: glass},
		{Center: colorspace.NewVec3(0, 0.85, 0), Radius: 0.15, Material: lightMat},
	}

	light := &SphereLight{Center: colorspace.NewVec3(0, 0.85, 0), Radius: 0.15, Emission: lightMat.Emission}

	return NewScene(spheres, []scenekit.Light{light})
}

// NewFurnaceTestScene builds a uniformly emitting enclosing sphere around a
// single Lambertian sphere of the same albedo as the environment, the
// standard furnace test for verifying a path tracer's energy conservation:
// the rendered albedo should converge to exactly the sphere's reflectance.
func NewFurnaceTestScene(albedo float64) *Scene {
	enclosure := &DiffuseLight{Emission: colorspace.NewRayColorRGB(1, 1, 1)}
	subject := &Lambertian{Albedo: colorspace.NewRayColorRGB(albedo, albedo, albedo)}

	spheres := []*Sphere{
		{Center: colorspace.Zero3, Radius: 100, Material: enclosure},
		{Center: colorspace.Zero3, Radius: 1, Material: subject},
	}

	light := &SphereLight{Center: colorspace.Zero3, Radius: 100, Emission: enclosure.Emission}
	return NewScene(spheres, []scenekit.Light{light})
}
