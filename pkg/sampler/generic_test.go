package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenericSamplerDeterministicPerPixel locks in spec.md §8 scenario 4:
// same seed, same pixel ⇒ bit-identical samples regardless of call order
// on other pixels in between (the tile scheduler may visit pixels in any
// order across worker goroutines).
func TestGenericSamplerDeterministicPerPixel(t *testing.T) {
	seeds := []uint64{11, 22, 33}

	s1 := NewGenericSampler()
	s1.ResetFrame(seeds, false)
	s1.ResetPixel(5, 9)
	u1 := s1.Get2D()

	s2 := NewGenericSampler()
	s2.ResetFrame(seeds, false)
	// Visit an unrelated pixel first to simulate a different tile order.
	s2.ResetPixel(100, 200)
	_ = s2.Get2D()
	s2.ResetPixel(5, 9)
	u2 := s2.Get2D()

	assert.Equal(t, u1, u2, "resetting to the same pixel must reproduce the same sample regardless of prior pixel visits")
}

func TestGenericSamplerBlueNoiseStaysInUnitInterval(t *testing.T) {
	s := NewGenericSampler()
	s.ResetFrame([]uint64{1}, true)
	s.ResetPixel(3, 4)

	for i := 0; i < 100; i++ {
		v := s.Get1D()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestGenericSamplerGet3D(t *testing.T) {
	s := NewGenericSampler()
	s.ResetFrame([]uint64{5}, false)
	s.ResetPixel(0, 0)
	v := s.Get3D()
	assert.GreaterOrEqual(t, v.X, 0.0)
	assert.Less(t, v.X, 1.0)
	assert.GreaterOrEqual(t, v.Y, 0.0)
	assert.Less(t, v.Y, 1.0)
	assert.GreaterOrEqual(t, v.Z, 0.0)
	assert.Less(t, v.Z, 1.0)
}
