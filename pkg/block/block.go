// Package block implements adaptive sampling: the frame is partitioned into
// rectangular blocks that split or retire as their estimated error falls,
// so later passes spend their ray budget only where the image still looks
// noisy, per spec.md §4.2. Grounded on the teacher's pkg/renderer/stats.go
// (which tracks a single whole-frame error estimate) generalized to a
// per-block quadtree-like split/retire policy, using gonum/stat to average
// the per-block estimates into the single reported AverageError.
package block

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/film"
)

// lumR709, lumG709, lumB709 are the Rec.709 luminance weights spec.md
// §4.2 projects both the mean estimate and the primary/secondary
// difference onto before computing a block's error.
const (
	lumR709 = 0.2126
	lumG709 = 0.7152
	lumB709 = 0.0722
)

// errorEpsilon is the epsilon added under the sqrt in the denominator of
// the per-block error estimator, per spec.md §4.2: "sum L(|A-B|) /
// sqrt(epsilon + L(A)) over block".
const errorEpsilon = 1e-2

// AdaptiveConfig configures the split/retire policy, per spec.md §4.2:
// "numInitialPasses, minBlockSize, maxBlockSize, convergenceThreshold,
// subdivisionThreshold (convergence <= subdivision)."
type AdaptiveConfig struct {
	Enabled              bool
	NumInitialPasses     int     // passes to run uniformly before adaptive refinement begins
	MinBlockSize         int     // blocks at or below this side length never split further
	MaxBlockSize         int     // side length of the initial uniform partition
	ConvergenceThreshold float64 // blocks below this error estimate retire
	SubdivisionThreshold float64 // blocks below this (but above ConvergenceThreshold) split
	UpdateEveryPasses    int     // how often (in passes) blocks are re-evaluated
}

// DefaultAdaptiveConfig mirrors the teacher's DefaultProgressiveConfig
// idiom of a single constructor for sane defaults.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		Enabled:              true,
		NumInitialPasses:     4,
		MinBlockSize:         8,
		MaxBlockSize:         32,
		ConvergenceThreshold: 1e-3,
		SubdivisionThreshold: 5e-3,
		UpdateEveryPasses:    2,
	}
}

// Block is one rectangular region of the film under independent
// convergence tracking.
type Block struct {
	X, Y, Width, Height int
	Converged           bool
}

func (b *Block) area() int { return b.Width * b.Height }

// BlockManager owns the active block partition for one render and updates
// it against a Film's accumulated variance, per spec.md §4.2: every
// UpdateEveryPasses passes it retires blocks whose error has fallen below
// convergenceThreshold and splits, at the midpoint of their longer axis,
// blocks whose error is below subdivisionThreshold but not yet below
// convergenceThreshold.
type BlockManager struct {
	config    AdaptiveConfig
	totalArea int
	blocks    []*Block
}

// NewBlockManager partitions a width x height frame into a uniform grid of
// config.MaxBlockSize blocks to start from, per spec.md §4.2's initial
// block list: "tile the image with maxBlockSize rectangles (last
// row/column clipped)."
func NewBlockManager(width, height int, config AdaptiveConfig) *BlockManager {
	m := &BlockManager{config: config, totalArea: width * height}
	tileSize := config.MaxBlockSize
	if tileSize <= 0 {
		tileSize = width
		if height > tileSize {
			tileSize = height
		}
	}
	for y := 0; y < height; y += tileSize {
		h := tileSize
		if y+h > height {
			h = height - y
		}
		for x := 0; x < width; x += tileSize {
			w := tileSize
			if x+w > width {
				w = width - x
			}
			m.blocks = append(m.blocks, &Block{X: x, Y: y, Width: w, Height: h})
		}
	}
	return m
}

// ActiveBlocks returns every block that has not yet converged.
func (m *BlockManager) ActiveBlocks() []*Block {
	active := make([]*Block, 0, len(m.blocks))
	for _, b := range m.blocks {
		if !b.Converged {
			active = append(active, b)
		}
	}
	return active
}

// Count returns the total number of blocks currently tracked (active plus
// converged).
func (m *BlockManager) Count() int { return len(m.blocks) }

// Converged reports whether every block has retired.
func (m *BlockManager) Converged() bool {
	for _, b := range m.blocks {
		if !b.Converged {
			return false
		}
	}
	return true
}

// ActivePixels sums the area of every block that has not yet retired: the
// `activePixels` quantity spec.md §3's RenderingProgress entity names, and
// spec.md §8's invariant "converged + activePixels/(W*H) = 1" is defined
// against.
func (m *BlockManager) ActivePixels() int {
	total := 0
	for _, b := range m.blocks {
		if !b.Converged {
			total += b.area()
		}
	}
	return total
}

// AverageError reports the mean of every block's current error estimate
// against f, the `averageError` RenderingProgress reports each pass per
// spec.md §3.
func (m *BlockManager) AverageError(f *film.Film) float64 {
	if len(m.blocks) == 0 {
		return 0
	}
	errs := make([]float64, len(m.blocks))
	for i, b := range m.blocks {
		errs[i] = blockError(f, b, m.totalArea)
	}
	return stat.Mean(errs, nil)
}

// Update re-evaluates every active block's error estimate against f after
// passIndex passes have completed, splitting or retiring blocks as needed,
// per spec.md §4.2's update policy: retire a block if its error falls
// below ConvergenceThreshold; otherwise split it along its longer axis if
// its error is still below SubdivisionThreshold and it is larger than
// MinBlockSize in either dimension; otherwise leave it unchanged. It is a
// no-op before NumInitialPasses passes have run, when adaptive refinement
// is disabled, or outside the UpdateEveryPasses cadence.
func (m *BlockManager) Update(f *film.Film, passIndex int) {
	if !m.config.Enabled {
		return
	}
	if passIndex < m.config.NumInitialPasses {
		return
	}
	if m.config.UpdateEveryPasses > 0 && passIndex%m.config.UpdateEveryPasses != 0 {
		return
	}

	var next []*Block
	for _, b := range m.blocks {
		if b.Converged {
			next = append(next, b)
			continue
		}

		errEstimate := blockError(f, b, m.totalArea)

		switch {
		case errEstimate < m.config.ConvergenceThreshold:
			b.Converged = true
			next = append(next, b)

		case errEstimate < m.config.SubdivisionThreshold &&
			(b.Width > m.config.MinBlockSize || b.Height > m.config.MinBlockSize):
			next = append(next, splitBlock(b)...)

		default:
			// error is still >= subdivisionThreshold, or the block is
			// already at minimum size on both axes: leave it unchanged
			// rather than splitting or retiring, per spec.md §4.2.
			next = append(next, b)
		}
	}
	m.blocks = next
}

// blockError computes spec.md §4.2's per-block error estimator:
//
//	A = sum/N, B = 2*secondarySum/N
//	sum(L(|A-B|) / sqrt(epsilon + L(A))) over the block's pixels,
//	* sqrt(blockArea/totalArea) / blockArea
//
// where L(.) projects linear RGB onto the fixed Rec.709 luminance weights.
// The secondary sum accumulates every other sample (alternated by pass
// parity in Film.Accumulate), so B is an independent-half estimate of A.
// Film.Accumulate already stores each secondary sample doubled, so
// Film.SecondaryMean is B as it stands.
func blockError(f *film.Film, b *Block, totalArea int) float64 {
	area := b.area()
	if area == 0 || totalArea == 0 {
		return 0
	}

	var sum float64
	for y := b.Y; y < b.Y+b.Height; y++ {
		for x := b.X; x < b.X+b.Width; x++ {
			if f.SampleCount(x, y) == 0 {
				continue
			}
			a := colorspace.ConvertToTristimulus(f.Mean(x, y), colorspace.Wavelength{})
			bEst := colorspace.ConvertToTristimulus(f.SecondaryMean(x, y), colorspace.Wavelength{})
			diffLum := lumR709*math.Abs(a.X-bEst.X) + lumG709*math.Abs(a.Y-bEst.Y) + lumB709*math.Abs(a.Z-bEst.Z)
			lumA := lumR709*a.X + lumG709*a.Y + lumB709*a.Z
			sum += diffLum / math.Sqrt(errorEpsilon+lumA)
		}
	}

	return sum * math.Sqrt(float64(area)/float64(totalArea)) / float64(area)
}

// splitBlock halves a block at the midpoint of its longer axis, per
// spec.md §2.
func splitBlock(b *Block) []*Block {
	if b.Width >= b.Height {
		half := b.Width / 2
		if half == 0 {
			return []*Block{b}
		}
		return []*Block{
			{X: b.X, Y: b.Y, Width: half, Height: b.Height},
			{X: b.X + half, Y: b.Y, Width: b.Width - half, Height: b.Height},
		}
	}
	half := b.Height / 2
	if half == 0 {
		return []*Block{b}
	}
	return []*Block{
		{X: b.X, Y: b.Y, Width: b.Width, Height: half},
		{X: b.X, Y: b.Y + half, Width: b.Width, Height: b.Height - half},
	}
}
