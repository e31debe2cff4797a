// Package camera provides a concrete thin-lens perspective camera
// implementing scenekit.Camera, including the reverse importance-sampling
// query light-path-based integrators (LightTracer, VCM) need to connect a
// world-space vertex back onto the film. Grounded on the teacher's
// pkg/renderer/camera.go (look-at basis construction, lens jitter, shutter
// time for motion blur), rebuilt on go-gl/mathgl/mgl64 for the basis
// vectors instead of the teacher's hand-rolled Vec3 cross products.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/sampler"
)

// Camera is a thin-lens perspective camera with an open shutter interval
// for motion blur, per spec.md §6's Camera collaborator contract.
type Camera struct {
	origin                mgl64.Vec3
	lowerLeft             mgl64.Vec3
	horizontal, vertical  mgl64.Vec3
	u, v, w               mgl64.Vec3 // right, up, -forward basis
	halfWidth, halfHeight float64    // angular half-extents at unit depth along -w
	lensRadius            float64
	shutterOpen, shutterClose float64

	width, height int
}

// New builds a camera looking from lookFrom to lookAt with the given
// vertical field of view (degrees), aspect ratio derived from
// width/height, aperture (2x lens radius), focus distance, and shutter
// interval in [0,1] render-time units for motion blur.
func New(lookFrom, lookAt, up mgl64.Vec3, vfovDegrees float64, width, height int, aperture, focusDist, shutterOpen, shutterClose float64) *Camera {
	aspect := float64(width) / float64(height)
	theta := vfovDegrees * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	w := lookFrom.Sub(lookAt).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	lowerLeft := lookFrom.
		Sub(u.Mul(halfWidth * focusDist)).
		Sub(v.Mul(halfHeight * focusDist)).
		Sub(w.Mul(focusDist))
	horizontal := u.Mul(2 * halfWidth * focusDist)
	vertical := v.Mul(2 * halfHeight * focusDist)

	return &Camera{
		origin: lookFrom, lowerLeft: lowerLeft, horizontal: horizontal, vertical: vertical,
		u: u, v: v, w: w,
		halfWidth: halfWidth, halfHeight: halfHeight,
		lensRadius:   aperture / 2,
		shutterOpen:  shutterOpen,
		shutterClose: shutterClose,
		width:        width, height: height,
	}
}

func toVec3(v mgl64.Vec3) colorspace.Vec3 { return colorspace.NewVec3(v.X(), v.Y(), v.Z()) }

// GenerateRay builds a primary ray through normalized film coordinates
// (0,0) at the bottom-left, (1,1) at the top-right, jittering the lens
// sample point and the shutter time from s.
func (c *Camera) GenerateRay(filmCoord colorspace.Vec2, s sampler.Sampler) colorspace.Ray {
	lensSample := s.Get2D()
	rd := sampleUnitDisc(lensSample.X, lensSample.Y).Mul(c.lensRadius)
	offset := c.u.Mul(rd.X()).Add(c.v.Mul(rd.Y()))

	direction := c.lowerLeft.
		Add(c.horizontal.Mul(filmCoord.X)).
		Add(c.vertical.Mul(filmCoord.Y)).
		Sub(c.origin).
		Sub(offset)

	origin := c.origin.Add(offset)
	time := c.shutterOpen + s.Get1D()*(c.shutterClose-c.shutterOpen)

	ray := colorspace.NewRay(toVec3(origin), toVec3(direction).Normalize())
	ray.Time = time
	return ray
}

func sampleUnitDisc(u1, u2 float64) mgl64.Vec3 {
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	return mgl64.Vec3{r * math.Cos(theta), r * math.Sin(theta), 0}
}

// SampleImportance implements the reverse projection spec.md §4.3.d/e
// requires for light-path-based integrators to splat a world-space vertex
// onto the film. It projects point into the camera's (u,v,w) basis: since
// the angular half-extents (halfWidth, halfHeight) are independent of
// depth, a point at depth d along -w maps to normalized film coordinates
// by dividing its u/v offsets by d*halfWidth and d*halfHeight, regardless
// of how far the focal plane itself sits. A pinhole/thin-lens camera has
// no lens area to integrate over in a single-point connection, so pdf is
// left at 1 and the inverse-square falloff is folded into importance.
func (c *Camera) SampleImportance(point colorspace.Vec3) (filmCoord colorspace.Vec2, importance colorspace.RayColor, pdf float64, visible bool) {
	p := mgl64.Vec3{point.X, point.Y, point.Z}
	rel := p.Sub(c.origin)

	depth := -rel.Dot(c.w)
	if depth <= 1e-6 {
		return colorspace.Vec2{}, colorspace.RayColorZero, 0, false
	}

	uComponent := rel.Dot(c.u) / depth
	vComponent := rel.Dot(c.v) / depth

	x := 0.5 + uComponent/(2*c.halfWidth)
	y := 0.5 + vComponent/(2*c.halfHeight)
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return colorspace.Vec2{}, colorspace.RayColorZero, 0, false
	}

	filmX := x * float64(c.width)
	filmY := (1 - y) * float64(c.height)

	falloff := 1.0 / (depth * depth)
	return colorspace.NewVec2(filmX, filmY), colorspace.NewRayColorRGB(falloff, falloff, falloff), 1.0, true
}
