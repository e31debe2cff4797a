package scenekit

import "fmt"

// LightSampler abstracts the light-picking policy used by NEE across every
// integrator, per spec.md §4.3.c: "Pick a light with probability 1/nLights
// (or importance-pick; 'light picking probability' is a policy input,
// default uniform among non-delta lights)". Grounded on the teacher's
// core.WeightedLightSampler, generalized into an interface so a scene can
// swap in power-based importance picking without touching integrator code.
type LightSampler interface {
	SampleLight(u float64) (light Light, pdf float64, index int)
	Probability(index int) float64
	Count() int
}

// WeightedLightSampler picks lights from a fixed per-light weight table,
// independent of the shading point. It is used both as the default
// (uniform weights) and for scenes that want to bias sampling toward
// brighter lights.
type WeightedLightSampler struct {
	lights  []Light
	weights []float64 // normalized, sum to 1.0
}

// NewUniformLightSampler gives every light equal selection probability.
func NewUniformLightSampler(lights []Light) *WeightedLightSampler {
	if len(lights) == 0 {
		return &WeightedLightSampler{}
	}
	weights := make([]float64, len(lights))
	uniform := 1.0 / float64(len(lights))
	for i := range weights {
		weights[i] = uniform
	}
	return &WeightedLightSampler{lights: lights, weights: weights}
}

// NewWeightedLightSampler builds a sampler from explicit (unnormalized)
// per-light weights, normalizing them to sum to 1.0. Falls back to uniform
// weighting if every weight is zero.
func NewWeightedLightSampler(lights []Light, weights []float64) *WeightedLightSampler {
	if len(lights) != len(weights) {
		panic(fmt.Sprintf("lights length (%d) must match weights length (%d)", len(lights), len(weights)))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			panic("weights must be non-negative")
		}
		total += w
	}
	normalized := make([]float64, len(weights))
	if total == 0 {
		return NewUniformLightSampler(lights)
	}
	for i, w := range weights {
		normalized[i] = w / total
	}
	return &WeightedLightSampler{lights: lights, weights: normalized}
}

func (s *WeightedLightSampler) SampleLight(u float64) (Light, float64, int) {
	if len(s.lights) == 0 {
		return nil, 0, -1
	}
	cumulative := 0.0
	for i, w := range s.weights {
		cumulative += w
		if u <= cumulative {
			return s.lights[i], w, i
		}
	}
	last := len(s.lights) - 1
	return s.lights[last], s.weights[last], last
}

func (s *WeightedLightSampler) Probability(index int) float64 {
	if index < 0 || index >= len(s.weights) {
		return 0
	}
	return s.weights[index]
}

func (s *WeightedLightSampler) Count() int { return len(s.lights) }
