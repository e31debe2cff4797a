package postprocess

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
)

// lutEpsilon floors the input to the log transform so black pixels don't
// produce -Inf lattice coordinates.
const lutEpsilon = 1e-6

// LUT is a precomputed 3D lattice mapping linear-light RGB to graded,
// tonemapped RGB in [0,1], sampled trilinearly. The lattice is built over a
// log-luminance domain rather than a linear one so a fixed lattice
// resolution spends equal precision across decades of exposure instead of
// concentrating it near zero, per spec.md §2. Grounded on the teacher's
// pkg/renderer/raytracer.go vec3ToColor (direct per-pixel tonemap call),
// generalized into a precomputed lattice the way production tonemapping
// pipelines cache a 3D LUT instead of evaluating the curve per pixel.
type LUT struct {
	size          int
	data          []colorspace.Vec3
	logMin, logMax float64
}

// BuildLUT bakes params' gain/saturation/contrast/tonemap chain into a
// lattice of size = 1 << params.LUTSizeShift per axis.
func BuildLUT(params PostprocessParams) *LUT {
	size := 1 << params.LUTSizeShift
	if size < 2 {
		size = 2
	}
	l := &LUT{size: size, logMin: math.Log(lutEpsilon), logMax: math.Log(64.0)}
	l.data = make([]colorspace.Vec3, size*size*size)

	for zi := 0; zi < size; zi++ {
		b := l.latticeToLinear(zi)
		for yi := 0; yi < size; yi++ {
			g := l.latticeToLinear(yi)
			for xi := 0; xi < size; xi++ {
				r := l.latticeToLinear(xi)
				rr, gg, bb := gradeLinear(params, r, g, b)
				tr, tg, tb := applyTonemap(params.Tonemap, rr, gg, bb)
				l.data[(zi*size+yi)*size+xi] = colorspace.NewVec3(tr, tg, tb)
			}
		}
	}
	return l
}

func (l *LUT) latticeToLinear(i int) float64 {
	t := float64(i) / float64(l.size-1)
	return math.Exp(l.logMin + t*(l.logMax-l.logMin))
}

// linearToLattice converts a linear-light channel value into a fractional
// lattice coordinate in [0, size-1], clamping in the log domain (per
// spec.md's preserved Open Question resolution: "Sample clamps by log-range
// not linear extrema") so highlights beyond the lattice's top decade still
// land at the brightest lattice slice instead of wrapping or extrapolating.
func (l *LUT) linearToLattice(v float64) float64 {
	v = math.Max(v, lutEpsilon)
	logV := math.Log(v)
	t := (logV - l.logMin) / (l.logMax - l.logMin)
	t = math.Max(0, math.Min(1, t))
	return t * float64(l.size-1)
}

// Sample trilinearly interpolates the lattice at the given linear-light
// RGB input.
func (l *LUT) Sample(r, g, b float64) colorspace.Vec3 {
	fx := l.linearToLattice(r)
	fy := l.linearToLattice(g)
	fz := l.linearToLattice(b)

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	z0 := int(math.Floor(fz))
	x1 := minInt(x0+1, l.size-1)
	y1 := minInt(y0+1, l.size-1)
	z1 := minInt(z0+1, l.size-1)

	tx := fx - float64(x0)
	ty := fy - float64(y0)
	tz := fz - float64(z0)

	c000 := l.at(x0, y0, z0)
	c100 := l.at(x1, y0, z0)
	c010 := l.at(x0, y1, z0)
	c110 := l.at(x1, y1, z0)
	c001 := l.at(x0, y0, z1)
	c101 := l.at(x1, y0, z1)
	c011 := l.at(x0, y1, z1)
	c111 := l.at(x1, y1, z1)

	c00 := lerpVec3(c000, c100, tx)
	c10 := lerpVec3(c010, c110, tx)
	c01 := lerpVec3(c001, c101, tx)
	c11 := lerpVec3(c011, c111, tx)

	c0 := lerpVec3(c00, c10, ty)
	c1 := lerpVec3(c01, c11, ty)

	return lerpVec3(c0, c1, tz)
}

func (l *LUT) at(x, y, z int) colorspace.Vec3 {
	return l.data[(z*l.size+y)*l.size+x]
}

func lerpVec3(a, b colorspace.Vec3, t float64) colorspace.Vec3 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// gradeLinear applies the pre-tonemap grading chain (gain, saturation,
// contrast) to a linear-light RGB triple.
func gradeLinear(params PostprocessParams, r, g, b float64) (float64, float64, float64) {
	exposureScale := math.Exp2(params.Exposure) * params.Gain
	r *= exposureScale
	g *= exposureScale
	b *= exposureScale

	lum := 0.2126*r + 0.7152*g + 0.0722*b
	r = lum + (r-lum)*params.Saturation
	g = lum + (g-lum)*params.Saturation
	b = lum + (b-lum)*params.Saturation

	r = applyContrast(r, params.Contrast)
	g = applyContrast(g, params.Contrast)
	b = applyContrast(b, params.Contrast)

	return math.Max(0, r), math.Max(0, g), math.Max(0, b)
}

// applyContrast pivots around mid-gray (0.18, the standard scene-linear
// middle gray) so contrast adjustments don't shift overall exposure.
func applyContrast(x, contrast float64) float64 {
	const midGray = 0.18
	return midGray + (x-midGray)*contrast
}
