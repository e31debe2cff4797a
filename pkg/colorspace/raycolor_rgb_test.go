//go:build !spectral

package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConvertToTristimulusIdentity locks in spec.md §8's round-trip
// property for the default (non-spectral) build: resolve/convert are both
// identities, so resolve(w, one).convert_to_tristimulus(w) is exactly
// (1,1,1).
func TestConvertToTristimulusIdentity(t *testing.T) {
	w := SampleWavelength(0.2)
	resolved := ResolveRayColor(RayColorOne, w)
	xyz := ConvertToTristimulus(resolved, w)
	assert.InDelta(t, 1.0, xyz.X, 1e-12)
	assert.InDelta(t, 1.0, xyz.Y, 1e-12)
	assert.InDelta(t, 1.0, xyz.Z, 1e-12)
}

func TestIsValidRayColorRejectsNegative(t *testing.T) {
	assert.False(t, IsValidRayColor(NewVec3(-0.1, 0, 0)))
}
