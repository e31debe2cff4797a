package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
)

func TestPowerHeuristicSumsToOneForEqualStrategies(t *testing.T) {
	a := PowerHeuristic(1, 0.5, 1, 0.5)
	b := PowerHeuristic(1, 0.5, 1, 0.5)
	assert.InDelta(t, 1.0, a+b, 1e-12)
}

func TestPowerHeuristicFavorsLowerVariance(t *testing.T) {
	w := PowerHeuristic(1, 2.0, 1, 0.1)
	assert.Greater(t, w, 0.9, "the strategy with the much higher pdf should dominate the power heuristic weight")
}

func TestPowerHeuristicZeroPdf(t *testing.T) {
	assert.Equal(t, 0.0, PowerHeuristic(1, 0, 1, 1))
}

func TestBalanceHeuristicSumsToOne(t *testing.T) {
	a := BalanceHeuristic(1, 0.3, 1, 0.7)
	b := BalanceHeuristic(1, 0.7, 1, 0.3)
	assert.InDelta(t, 1.0, a+b, 1e-12)
}

func TestApplyRussianRouletteBeforeMinDepth(t *testing.T) {
	terminate, comp := applyRussianRoulette(1, 3, colorspace.NewRayColorRGB(0.01, 0, 0), 0.99)
	assert.False(t, terminate)
	assert.Equal(t, 1.0, comp)
}

func TestApplyRussianRouletteTerminatesLowThroughput(t *testing.T) {
	terminate, comp := applyRussianRoulette(5, 3, colorspace.RayColorZero, 0.0)
	assert.True(t, terminate)
	assert.Equal(t, 0.0, comp)
}

func TestApplyRussianRouletteCompensatesOnSurvival(t *testing.T) {
	terminate, comp := applyRussianRoulette(5, 3, colorspace.NewRayColorRGB(0.5, 0.5, 0.5), 0.0)
	assert.False(t, terminate)
	assert.InDelta(t, 2.0, comp, 1e-9)
}
