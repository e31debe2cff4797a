package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleWavelengthStratified(t *testing.T) {
	w := SampleWavelength(0.37)
	for i := 1; i < NumHeroWavelengths; i++ {
		assert.Greater(t, w.Components[i], w.Components[i-1], "hero wavelengths must be strictly increasing (stratified)")
		assert.GreaterOrEqual(t, w.Components[i], minWavelengthNM)
		assert.LessOrEqual(t, w.Components[i], maxWavelengthNM)
	}
}

// TestResolveConvertRoundTrip exercises spec.md §8's round-trip path,
// RayColor::resolve(wavelength, one).convert_to_tristimulus(wavelength), for
// a single collapsed wavelength, checking the result is finite and
// non-negative.
func TestResolveConvertRoundTrip(t *testing.T) {
	w := SampleWavelength(0.5)
	w.Collapse()

	resolved := ResolveRayColor(RayColorOne, w)
	xyz := ConvertToTristimulus(resolved, w)

	// The CIE matching functions don't integrate to exactly 1 per channel
	// for an arbitrary single wavelength, so this checks the quantity is
	// finite and on the right order of magnitude rather than an exact unit
	// vector; the tristimulus (non-spectral) build's identity path is
	// covered by TestConvertToTristimulusIdentity in raycolor_rgb_test.go.
	assert.True(t, xyz.IsFinite())
	assert.GreaterOrEqual(t, xyz.X, 0.0)
	assert.GreaterOrEqual(t, xyz.Y, 0.0)
	assert.GreaterOrEqual(t, xyz.Z, 0.0)
}

func TestIsValidRayColorAcceptsFiniteColor(t *testing.T) {
	valid := NewRayColorRGB(0.5, 0.5, 0.5)
	assert.True(t, IsValidRayColor(valid))
}

func TestLuminanceIsBuildTagAgnostic(t *testing.T) {
	w := SampleWavelength(0.0)
	lum := Luminance(RayColorOne, w)
	assert.Greater(t, lum, 0.0)
}
