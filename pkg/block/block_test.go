package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/film"
)

func totalArea(blocks []*Block) int {
	total := 0
	for _, b := range blocks {
		total += b.Width * b.Height
	}
	return total
}

// TestBlockManagerCoversImageExactlyOnce locks in spec.md §8's universal
// invariant: the block list covers the image exactly once, both at
// construction and after repeated splits.
func TestBlockManagerCoversImageExactlyOnce(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.MaxBlockSize = 8
	m := NewBlockManager(17, 13, cfg)
	assert.Equal(t, 17*13, totalArea(m.ActiveBlocks()))

	f := film.New(17, 13)
	for i := 0; i < 10; i++ {
		m.Update(f, i)
	}
	assert.Equal(t, 17*13, totalArea(m.ActiveBlocks())+totalArea(convergedOf(m)))
}

func convergedOf(m *BlockManager) []*Block {
	var out []*Block
	for _, b := range m.blocks {
		if b.Converged {
			out = append(out, b)
		}
	}
	return out
}

// TestBlockManagerActivePixelsInvariant locks in spec.md §8's invariant
// "activePixels <= W*H; converged + activePixels/(W*H) = 1" using
// BlockManager's own area-weighted ActivePixels, not a block-count ratio.
func TestBlockManagerActivePixelsInvariant(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.MaxBlockSize = 8
	m := NewBlockManager(16, 16, cfg)
	active := m.ActivePixels()
	require.LessOrEqual(t, active, 16*16)
	convergedFraction := 1 - float64(active)/float64(16*16)
	assert.InDelta(t, 1.0, convergedFraction+float64(active)/float64(16*16), 1e-12)
}

// TestBlockManagerActivePixelsWeightsByArea exercises spec.md §4.2's area
// normalization with unequal block sizes: after the blocks split to
// unequal sizes, the manager's ActivePixels must reflect true pixel counts,
// not a per-block count that would treat a tiny block the same as a huge
// one.
func TestBlockManagerActivePixelsWeightsByArea(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.MaxBlockSize = 16
	cfg.MinBlockSize = 1
	m := NewBlockManager(16, 16, cfg)
	require.Len(t, m.blocks, 1, "a single maxBlockSize tile should cover the whole 16x16 image")

	m.blocks = splitBlock(m.blocks[0])
	require.Len(t, m.blocks, 2)
	assert.Equal(t, 16*16, totalArea(m.blocks))

	m.blocks = append(m.blocks[:1], splitBlock(m.blocks[1])...)
	require.Len(t, m.blocks, 3)
	assert.Equal(t, 16*16, totalArea(m.blocks))

	m.blocks[0].Converged = true
	active := m.ActivePixels()
	assert.Equal(t, m.blocks[1].area()+m.blocks[2].area(), active)
	assert.NotEqual(t, len(m.ActiveBlocks())*(16*16)/len(m.blocks), active, "active-pixel count must weight by area, not block count")
}

func TestBlockManagerSkipsBeforeInitialPasses(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.NumInitialPasses = 4
	cfg.MaxBlockSize = 8
	m := NewBlockManager(8, 8, cfg)
	f := film.New(8, 8)

	m.Update(f, 0)
	assert.Len(t, m.ActiveBlocks(), 1, "update before NumInitialPasses must be a no-op")
}

func TestBlockManagerRetiresLowErrorBlock(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.NumInitialPasses = 0
	cfg.UpdateEveryPasses = 1
	cfg.ConvergenceThreshold = 1e-3
	cfg.MaxBlockSize = 4
	m := NewBlockManager(4, 4, cfg)
	f := film.New(4, 4)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			for i := 0; i < 8; i++ {
				f.Accumulate(x, y, colorspace.NewRayColorRGB(0.5, 0.5, 0.5))
			}
		}
	}

	m.Update(f, 1)
	require.True(t, m.Converged(), "a block with zero primary/secondary difference must retire")
}

// TestBlockManagerLeavesBlockUnchangedBetweenThresholds locks in spec.md
// §4.2's third update branch: a block whose error sits at or above
// subdivisionThreshold (or is already at minimum size) is neither retired
// nor split, it is carried over unchanged.
func TestBlockManagerLeavesBlockUnchangedBetweenThresholds(t *testing.T) {
	cfg := DefaultAdaptiveConfig()
	cfg.NumInitialPasses = 0
	cfg.UpdateEveryPasses = 1
	cfg.MaxBlockSize = 4
	cfg.MinBlockSize = 4 // already at minimum size on both axes
	cfg.ConvergenceThreshold = -1 // never retires
	cfg.SubdivisionThreshold = -1 // never subdivides
	m := NewBlockManager(4, 4, cfg)
	f := film.New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			f.Accumulate(x, y, colorspace.NewRayColorRGB(0.9, 0.1, 0.1))
			f.Accumulate(x, y, colorspace.NewRayColorRGB(0.1, 0.9, 0.9))
		}
	}

	m.Update(f, 1)
	require.Len(t, m.blocks, 1, "a block that neither converges nor subdivides must be left unchanged")
	assert.False(t, m.blocks[0].Converged)
}

func TestSplitBlockHalvesLongerAxis(t *testing.T) {
	wide := &Block{X: 0, Y: 0, Width: 10, Height: 4}
	parts := splitBlock(wide)
	require.Len(t, parts, 2)
	assert.Equal(t, 5, parts[0].Width)
	assert.Equal(t, 5, parts[1].Width)
	assert.Equal(t, 4, parts[0].Height)

	tall := &Block{X: 0, Y: 0, Width: 4, Height: 10}
	parts2 := splitBlock(tall)
	require.Len(t, parts2, 2)
	assert.Equal(t, 5, parts2[0].Height)
	assert.Equal(t, 5, parts2[1].Height)
}
