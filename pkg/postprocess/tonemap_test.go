package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTonemapOperatorsMapZeroToZero(t *testing.T) {
	for _, op := range []TonemapOperator{TonemapClamped, TonemapReinhard, TonemapFilmicHejlBurgessDawson, TonemapApproxACES} {
		r, g, b := applyTonemap(op, 0, 0, 0)
		assert.InDelta(t, 0.0, r, 1e-6)
		assert.InDelta(t, 0.0, g, 1e-6)
		assert.InDelta(t, 0.0, b, 1e-6)
	}
}

func TestTonemapOperatorsStayInUnitRange(t *testing.T) {
	for _, op := range []TonemapOperator{TonemapClamped, TonemapReinhard, TonemapFilmicHejlBurgessDawson, TonemapApproxACES} {
		for _, x := range []float64{0.1, 1, 4, 1000} {
			r, g, b := applyTonemap(op, x, x, x)
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
			assert.GreaterOrEqual(t, g, 0.0)
			assert.LessOrEqual(t, g, 1.0)
			assert.GreaterOrEqual(t, b, 0.0)
			assert.LessOrEqual(t, b, 1.0)
		}
	}
}

func TestReinhardMonotonic(t *testing.T) {
	assert.Less(t, reinhard(0.5), reinhard(1.0))
	assert.Less(t, reinhard(1.0), reinhard(2.0))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-5))
	assert.Equal(t, 1.0, clamp01(5))
	assert.Equal(t, 0.5, clamp01(0.5))
}
