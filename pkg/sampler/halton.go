package sampler

import "math/rand"

// MaxHaltonDimensions bounds the dimension count per spec.md §4.4:
// "HaltonSequence maintains a state across mDimensions dimensions (≤4096)".
const MaxHaltonDimensions = 4096

// haltonDigitWidth is the number of base-p digits tracked per dimension
// before the radical inverse underflows float64 precision, per spec.md
// §4.4's "Width=64 digits per dimension".
const haltonDigitWidth = 64

// HaltonSequence produces deterministic, scrambled low-discrepancy integers
// across mDimensions independent prime bases, advanced one "leap" per
// render pass. Each leap yields one integer per dimension; GenericSampler
// seeds its per-pass state from these integers so that every worker thread
// produces identical samples for a given (pass, pixel, sampleIndex)
// regardless of which goroutine executes it (spec.md §5 determinism).
type HaltonSequence struct {
	dimensions  int
	primes      []uint64
	permutation [][]uint8 // per-dimension digit permutation, one table per prime base
	index       uint64    // current sequence index (advances by "leap" jumps)
}

// NewHaltonSequence builds a sequence over the given number of dimensions,
// scrambling each prime base's digit permutation with perm (perm may be nil
// to get the identity permutation, useful for deterministic tests).
func NewHaltonSequence(dimensions int, perm *rand.Rand) *HaltonSequence {
	if dimensions > MaxHaltonDimensions {
		dimensions = MaxHaltonDimensions
	}
	if dimensions < 1 {
		dimensions = 1
	}
	primes := firstNPrimes(dimensions)
	permutation := make([][]uint8, dimensions)
	for d, p := range primes {
		table := make([]uint8, p)
		for i := range table {
			table[i] = uint8(i)
		}
		if perm != nil {
			perm.Shuffle(len(table), func(i, j int) { table[i], table[j] = table[j], table[i] })
		}
		permutation[d] = table
	}
	return &HaltonSequence{dimensions: dimensions, primes: primes, permutation: permutation}
}

// Dimensions returns the number of independent dimensions this sequence
// tracks.
func (h *HaltonSequence) Dimensions() int { return h.dimensions }

// NextLeap advances the sequence index by a random multiple (drawn from
// rng) and returns one scrambled radical-inverse integer per dimension,
// suitable as a per-pass seed vector (spec.md §4.1 step 1: "Advance the
// Halton sequence by one leap; snapshot the integer form of each dimension
// into a per-pass seed vector").
func (h *HaltonSequence) NextLeap(rng *rand.Rand) []uint64 {
	jump := uint64(1 + rng.Intn(997))
	h.index += jump

	seeds := make([]uint64, h.dimensions)
	for d := 0; d < h.dimensions; d++ {
		seeds[d] = h.scrambledRadicalInverseBits(d, h.index)
	}
	return seeds
}

// scrambledRadicalInverseBits returns the scrambled radical inverse of
// index in the given dimension's prime base, represented as the integer
// formed by its digits (not normalized to [0,1)) so it can seed a
// downstream fast RNG without losing entropy to float64 rounding.
func (h *HaltonSequence) scrambledRadicalInverseBits(dim int, index uint64) uint64 {
	base := h.primes[dim]
	perm := h.permutation[dim]

	var result uint64
	n := index
	for digit := 0; digit < haltonDigitWidth && n > 0; digit++ {
		d := n % base
		n /= base
		result = result*base + uint64(perm[d])
	}
	return result
}

// Float64 returns the radical inverse normalized to [0,1) for the given
// dimension at the sequence's current index. GenericSampler does not call
// it; it draws from its own seeded state.
func (h *HaltonSequence) Float64(dim int) float64 {
	base := float64(h.primes[dim%len(h.primes)])
	perm := h.permutation[dim%len(h.primes)]

	f := 1.0
	invBase := 1.0 / base
	result := 0.0
	n := h.index
	for n > 0 {
		d := n % uint64(base)
		f *= invBase
		result += f * float64(perm[d])
		n /= uint64(base)
	}
	return result
}

func firstNPrimes(n int) []uint64 {
	primes := make([]uint64, 0, n)
	candidate := uint64(2)
	for len(primes) < n {
		isPrime := true
		for _, p := range primes {
			if p*p > candidate {
				break
			}
			if candidate%p == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			primes = append(primes, candidate)
		}
		candidate++
	}
	return primes
}
