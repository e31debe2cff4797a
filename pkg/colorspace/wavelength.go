package colorspace

import "math"

// NumHeroWavelengths is the number of hero wavelengths carried per ray in
// spectral builds (see raycolor_spectral.go). Tristimulus builds still
// expose Wavelength so call sites compile unchanged across both modes, but
// sampling it is a cheap no-op (spec.md §4.4: "Either spectral or
// tristimulus mode is compile-time").
const NumHeroWavelengths = 8

const (
	minWavelengthNM = 360.0
	maxWavelengthNM = 830.0
)

// Wavelength holds the hero wavelengths sampled for one camera ray, plus the
// "single-wavelength fallback" flag spec.md §3 describes: dispersive
// materials (e.g. a prism) can collapse a ray onto just its primary
// wavelength (Collapse sets SingleFallback), at which point
// ResolveRayColor keeps only the primary slot of a RayColor, scaled by
// NumHeroWavelengths, and zeroes every other slot — this degrades the full
// N-vector into an N·δ single-component contribution without a separate
// code path.
type Wavelength struct {
	Components      [NumHeroWavelengths]float64
	Primary         int  // index of the primary hero wavelength within Components
	SingleFallback  bool // true once dispersion has collapsed the path to one wavelength
}

// SampleWavelength draws a stratified hero-wavelength set from [360nm,830nm]
// using a single uniform offset, per spec.md §4.4: "N hero wavelengths
// sampled stratified from [360 nm, 830 nm] using a single uniform offset".
func SampleWavelength(u float64) Wavelength {
	var w Wavelength
	span := maxWavelengthNM - minWavelengthNM
	for i := 0; i < NumHeroWavelengths; i++ {
		offset := (float64(i) + u) / float64(NumHeroWavelengths)
		w.Components[i] = minWavelengthNM + offset*span
	}
	w.Primary = 0
	return w
}

// Collapse marks the wavelength as dispersed onto its primary component
// only, per the single-wavelength fallback convention described above.
func (w *Wavelength) Collapse() {
	w.SingleFallback = true
}

// cieMatch returns an approximate CIE 1931 color matching function sample
// (piecewise Gaussian fit) for a wavelength in nanometers. This is the
// "precomputed matching functions" spec.md §4.4 refers to for
// ConvertToTristimulus; a compact analytic fit stands in for a tabulated
// curve since the core has no asset-loading facility (out of scope, §1).
func cieMatch(lambda float64) (x, y, z float64) {
	gauss := func(t, mu, s1, s2 float64) float64 {
		s := s1
		if t > mu {
			s = s2
		}
		return math.Exp(-0.5 * ((t - mu) / s) * ((t - mu) / s))
	}
	x = 1.056*gauss(lambda, 599.8, 37.9, 31.0) +
		0.362*gauss(lambda, 442.0, 16.0, 26.7) -
		0.065*gauss(lambda, 501.1, 20.4, 26.2)
	y = 0.821*gauss(lambda, 568.8, 46.9, 40.5) +
		0.286*gauss(lambda, 530.9, 16.3, 31.1)
	z = 1.217*gauss(lambda, 437.0, 11.8, 36.0) +
		0.681*gauss(lambda, 459.0, 26.0, 13.8)
	return
}
