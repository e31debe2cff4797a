//go:build spectral

package colorspace

// RayColor is the spectral radiance carrier: an N-vector of non-negative
// floats, one per hero wavelength, per spec.md §3/§4.4. This file is
// compiled only under the "spectral" build tag; raycolor_rgb.go provides
// the tristimulus alternative used by default builds.
type RayColor struct {
	Components [NumHeroWavelengths]float64
}

var (
	RayColorZero = RayColor{}
	RayColorOne  = newAllRayColor(1)
)

func newAllRayColor(v float64) RayColor {
	var c RayColor
	for i := range c.Components {
		c.Components[i] = v
	}
	return c
}

func (c RayColor) Add(o RayColor) RayColor {
	var r RayColor
	for i := range c.Components {
		r.Components[i] = c.Components[i] + o.Components[i]
	}
	return r
}

func (c RayColor) Multiply(s float64) RayColor {
	var r RayColor
	for i := range c.Components {
		r.Components[i] = c.Components[i] * s
	}
	return r
}

func (c RayColor) MultiplyVec(o RayColor) RayColor {
	var r RayColor
	for i := range c.Components {
		r.Components[i] = c.Components[i] * o.Components[i]
	}
	return r
}

// Luminance approximates photopic luminance by averaging the CIE y-match
// weighted contribution of each hero wavelength; with stratified hero
// sampling this Monte-Carlo-estimates the spectral integral.
func (c RayColor) Luminance(w Wavelength) float64 {
	sum := 0.0
	for i, v := range c.Components {
		_, y, _ := cieMatch(w.Components[i])
		sum += v * y
	}
	return sum / float64(NumHeroWavelengths)
}

// Luminance gives integrator code a build-tag-independent way to obtain a
// RayColor's perceptual luminance; see raycolor_rgb.go for the tristimulus
// counterpart.
func Luminance(c RayColor, w Wavelength) float64 { return c.Luminance(w) }

func (c RayColor) MaxComponent() float64 {
	m := 0.0
	for _, v := range c.Components {
		if v > m {
			m = v
		}
	}
	return m
}

// NewRayColorRGB approximates an RGB color as a flat spectrum matching its
// luminance; used wherever an RGB value is injected under spectral builds
// (fixture materials, debug visualization colors, tests).
func NewRayColorRGB(r, g, b float64) RayColor {
	lum := 0.2126*r + 0.7152*g + 0.0722*b
	return newAllRayColor(lum)
}

// IsValidRayColor reports whether every component is finite; spec.md §3
// tolerates negative RGB only under spectral rendering, so no sign check
// here (unlike the tristimulus build).
func IsValidRayColor(c RayColor) bool {
	for _, v := range c.Components {
		if v != v || v > maxFinite || v < -maxFinite {
			return false
		}
	}
	return true
}

const maxFinite = 1e300

// ResolveRayColor collapses a dispersed path onto its primary wavelength,
// per the single-wavelength fallback convention in wavelength.go: the
// primary slot holds N so that ConvertToTristimulus integrates back to the
// same total energy a non-dispersed path would have produced (spec.md §8:
// "the single-wavelength fallback yields exactly N·δ in the hero slot").
func ResolveRayColor(c RayColor, w Wavelength) RayColor {
	if !w.SingleFallback {
		return c
	}
	var r RayColor
	r.Components[w.Primary] = c.Components[w.Primary] * float64(NumHeroWavelengths)
	return r
}

// ConvertToTristimulus maps a spectral RayColor to CIE XYZ via the
// precomputed matching functions, per spec.md §4.4.
func ConvertToTristimulus(c RayColor, w Wavelength) Vec3 {
	var xyz Vec3
	for i, v := range c.Components {
		x, y, z := cieMatch(w.Components[i])
		xyz = xyz.Add(Vec3{x * v, y * v, z * v})
	}
	return xyz.Multiply(1.0 / float64(NumHeroWavelengths))
}
