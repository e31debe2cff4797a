package sampler

import (
	"math/rand"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
)

// blueNoiseTileSize is the side length of the small deterministic
// pseudo-blue-noise tile GenericSampler rotates samples by. A true blue
// noise texture is an external asset (out of scope, spec.md §1); this tile
// is generated once from a fixed hash so the distribution is reproducible
// without shipping a binary resource.
const blueNoiseTileSize = 64

var blueNoiseTile = buildBlueNoiseTile()

func buildBlueNoiseTile() [blueNoiseTileSize][blueNoiseTileSize]float64 {
	var tile [blueNoiseTileSize][blueNoiseTileSize]float64
	for y := 0; y < blueNoiseTileSize; y++ {
		for x := 0; x < blueNoiseTileSize; x++ {
			tile[y][x] = hashToUnit(uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xBF58476D1CE4E5B9)
		}
	}
	return tile
}

func hashToUnit(x uint64) float64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return float64(x>>11) / float64(1<<53)
}

// GenericSampler wraps a Halton-seeded per-pass state and a fallback
// math/rand source, implementing Sampler with reproducible, per-pixel
// decorrelated samples. Per spec.md §4.4: "wraps an RNG fallback and a
// per-pass seed; exposes get_float(), get_vec2(), get_float3(); reset_frame
// ... and reset_pixel ... make subsequent samples reproducible."
type GenericSampler struct {
	fallback *rand.Rand
	seeds    []uint64 // per-pass Halton leap seeds, set by ResetFrame
	dim      int      // next dimension index to draw from
	pixelX   int
	pixelY   int
	useBlueNoise bool
}

// NewGenericSampler creates a sampler whose fallback RNG starts from the
// fixed seed 1;
// callers must call ResetFrame before drawing samples.
func NewGenericSampler() *GenericSampler {
	return &GenericSampler{fallback: rand.New(rand.NewSource(1))}
}

// ResetFrame seeds the sampler for a new pass from the Halton leap's
// per-dimension integers, and toggles blue-noise Cranley-Patterson
// rotation, per spec.md §4.4.
func (g *GenericSampler) ResetFrame(seeds []uint64, useBlueNoiseDithering bool) {
	g.seeds = seeds
	g.useBlueNoise = useBlueNoiseDithering
	g.dim = 0
	var mix uint64 = 0x9E3779B97F4A7C15
	for _, s := range seeds {
		mix ^= s + 0x9E3779B97F4A7C15 + (mix << 6) + (mix >> 2)
	}
	g.fallback = rand.New(rand.NewSource(int64(mix)))
}

// ResetPixel reseeds the per-pixel stream so that the sequence of samples
// drawn afterwards depends only on (pass seed, x, y), never on thread or
// tile scheduling order (spec.md §5 determinism).
func (g *GenericSampler) ResetPixel(x, y int) {
	g.pixelX, g.pixelY = x, y
	g.dim = 0
	pixelSeed := uint64(x)*73856093 ^ uint64(y)*19349663
	if len(g.seeds) > 0 {
		pixelSeed ^= g.seeds[0]
	}
	g.fallback = rand.New(rand.NewSource(int64(pixelSeed)))
}

// nextDimension returns a raw uniform sample for the current dimension and
// advances the dimension counter, applying the blue-noise Cranley-Patterson
// rotation if enabled.
func (g *GenericSampler) nextDimension() float64 {
	u := g.fallback.Float64()
	if g.useBlueNoise {
		tx := ((g.pixelX % blueNoiseTileSize) + blueNoiseTileSize) % blueNoiseTileSize
		ty := ((g.pixelY%blueNoiseTileSize+g.dim)%blueNoiseTileSize + blueNoiseTileSize) % blueNoiseTileSize
		u += blueNoiseTile[ty][tx]
		u -= float64(int64(u))
		if u < 0 {
			u += 1
		}
	}
	g.dim++
	return u
}

func (g *GenericSampler) Get1D() float64 {
	return g.nextDimension()
}

func (g *GenericSampler) Get2D() colorspace.Vec2 {
	return colorspace.Vec2{X: g.nextDimension(), Y: g.nextDimension()}
}

func (g *GenericSampler) Get3D() colorspace.Vec3 {
	return colorspace.Vec3{X: g.nextDimension(), Y: g.nextDimension(), Z: g.nextDimension()}
}
