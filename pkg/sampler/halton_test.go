package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaltonSequenceDeterministic(t *testing.T) {
	h1 := NewHaltonSequence(4, rand.New(rand.NewSource(42)))
	h2 := NewHaltonSequence(4, rand.New(rand.NewSource(42)))

	rng1 := rand.New(rand.NewSource(7))
	rng2 := rand.New(rand.NewSource(7))

	seeds1 := h1.NextLeap(rng1)
	seeds2 := h2.NextLeap(rng2)

	assert.Equal(t, seeds1, seeds2, "identical construction seed and leap RNG must produce identical leap seeds")
}

func TestHaltonSequenceDimensionsClamped(t *testing.T) {
	h := NewHaltonSequence(MaxHaltonDimensions+100, nil)
	assert.Equal(t, MaxHaltonDimensions, h.Dimensions())

	h0 := NewHaltonSequence(0, nil)
	assert.Equal(t, 1, h0.Dimensions())
}

func TestHaltonSequenceNilPermutationIsIdentity(t *testing.T) {
	h := NewHaltonSequence(2, nil)
	assert.Equal(t, []uint8{0, 1}, h.permutation[0])
}
