// Package viewport implements the progressive render scheduler: per-pass
// Halton advancement, thread-local context reset, the integrator's fenced
// pre-render phase, Hilbert-ordered tiled parallel rendering, and adaptive
// block refinement, per spec.md §4.1. Grounded on the teacher's
// pkg/renderer/progressive.go (the pass loop and worker pool shape),
// generalized onto golang.org/x/sync/errgroup and the new block/film/
// sampler abstractions.
package viewport

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-progressive-raytracer/internal/logging"
	"github.com/df07/go-progressive-raytracer/pkg/block"
	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/postprocess"
	"github.com/df07/go-progressive-raytracer/pkg/sampler"
	"github.com/df07/go-progressive-raytracer/pkg/scenekit"
)

// Viewport owns every piece of state a progressive render needs across
// passes and exposes the resize/set_renderer/set_rendering_params/
// set_postprocess_params/render/reset contract from spec.md §4.1.
type Viewport struct {
	logger    logging.Logger
	sessionID uuid.UUID

	numWorkers int
	width, height int

	film       *film.Film
	scene      scenekit.Scene
	camera     scenekit.Camera
	integrator integrator.Integrator

	params     integrator.RenderingParams
	postParams postprocess.PostprocessParams
	pipeline   *postprocess.Pipeline

	blocks   *block.BlockManager
	adaptive block.AdaptiveConfig

	halton  *sampler.HaltonSequence
	leapRNG *rand.Rand

	contexts []*integrator.RenderingContext

	passIndex         int
	counters          RayTracingCounters
	perPixelTimeNanos []float64

	hilbertSteps         []hilbertStep
	hilbertStepsTileSize int
}

// New creates a Viewport with the given worker concurrency. Callers must
// still call Resize, SetRenderer, and SetRenderingParams before Render.
func New(numWorkers int, logger logging.Logger) *Viewport {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if logger == nil {
		logger = logging.Noop()
	}
	return &Viewport{
		numWorkers: numWorkers,
		logger:     logger,
		sessionID:  uuid.New(),
		params:     integrator.DefaultRenderingParams(),
		postParams: postprocess.DefaultPostprocessParams(),
		pipeline:   postprocess.NewPipeline(postprocess.DefaultPostprocessParams()),
		adaptive:   block.DefaultAdaptiveConfig(),
	}
}

// SessionID identifies this viewport instance for logging/debugging.
func (vp *Viewport) SessionID() uuid.UUID { return vp.sessionID }

// Resize reallocates the film and every thread-local context, clearing all
// accumulated state, per spec.md §4.1.
func (vp *Viewport) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport: invalid size %dx%d", width, height)
	}
	vp.width, vp.height = width, height
	vp.film = film.New(width, height)
	vp.perPixelTimeNanos = make([]float64, width*height)
	vp.passIndex = 0
	vp.rebuildBlocks()
	vp.rebuildContexts()
	vp.logger.Infof("viewport resized to %dx%d", width, height)
	return nil
}

// SetRenderer installs the scene, camera, and integrator for subsequent
// passes, per spec.md §4.1.
func (vp *Viewport) SetRenderer(scene scenekit.Scene, camera scenekit.Camera, integ integrator.Integrator) error {
	if scene == nil || camera == nil || integ == nil {
		return fmt.Errorf("viewport: scene, camera, and integrator must all be non-nil")
	}
	vp.scene = scene
	vp.camera = camera
	vp.integrator = integ
	vp.passIndex = 0
	vp.rebuildContexts()
	if vp.film != nil {
		vp.film.Clear()
	}
	name := "integrator"
	if n, ok := integ.(integrator.Name); ok {
		name = n.Name()
	}
	vp.logger.WithField("integrator", name).Infof("renderer set")
	return nil
}

// SetRenderingParams installs new per-pass tunables, rebuilding the Halton
// sequence dimension count from MaxDepth since deeper paths draw more
// sampler dimensions per pixel, per spec.md §4.1.
func (vp *Viewport) SetRenderingParams(params integrator.RenderingParams) error {
	if params.TileSize <= 0 {
		return fmt.Errorf("viewport: tile size must be positive")
	}
	if params.MaxDepth <= 0 {
		return fmt.Errorf("viewport: max depth must be positive")
	}
	if params.PacketMode && params.PacketGroupSize > 0 && params.TileSize%params.PacketGroupSize != 0 {
		return fmt.Errorf("viewport: tile size (%d) must be a multiple of packet group size (%d)", params.TileSize, params.PacketGroupSize)
	}
	vp.params = params
	dimensions := 4 + params.MaxDepth*4
	vp.halton = sampler.NewHaltonSequence(dimensions, rand.New(rand.NewSource(1)))
	vp.leapRNG = rand.New(rand.NewSource(2))
	vp.passIndex = 0
	vp.rebuildBlocks()
	if vp.film != nil {
		vp.film.Clear()
	}
	return nil
}

// SetAdaptiveConfig installs the adaptive block split/retire policy.
func (vp *Viewport) SetAdaptiveConfig(config block.AdaptiveConfig) {
	vp.adaptive = config
	vp.rebuildBlocks()
}

// SetPostprocessParams installs new display-pipeline tunables, per spec.md
// §4.1. It never affects accumulated radiance — only how it's displayed.
func (vp *Viewport) SetPostprocessParams(params postprocess.PostprocessParams) postprocess.Diff {
	vp.postParams = params
	return vp.pipeline.SetParams(params)
}

// Reset clears accumulated radiance and pass count without resizing or
// changing the renderer, per spec.md §4.1 reset().
func (vp *Viewport) Reset() {
	vp.passIndex = 0
	if vp.film != nil {
		vp.film.Clear()
	}
	vp.rebuildBlocks()
}

func (vp *Viewport) rebuildBlocks() {
	if vp.width == 0 || vp.height == 0 {
		return
	}
	vp.blocks = block.NewBlockManager(vp.width, vp.height, vp.adaptive)
}

func (vp *Viewport) rebuildContexts() {
	if vp.scene == nil || vp.camera == nil || vp.film == nil {
		return
	}
	vp.contexts = make([]*integrator.RenderingContext, vp.numWorkers)
	for i := range vp.contexts {
		vp.contexts[i] = &integrator.RenderingContext{
			Sampler: sampler.NewGenericSampler(),
			Scene:   vp.scene,
			Camera:  vp.camera,
			Film:    vp.film,
		}
	}
}

type tileBounds struct{ x0, y0, x1, y1 int }

// Render advances the image by exactly one pass and returns a progress
// report, per spec.md §4.1. The ctx parameter lets a caller cancel a
// pass early; a canceled pass returns whatever progress had accumulated
// along with ctx.Err().
func (vp *Viewport) Render(ctx context.Context) (RenderingProgress, error) {
	if vp.scene == nil || vp.camera == nil || vp.integrator == nil {
		return RenderingProgress{}, fmt.Errorf("viewport: SetRenderer must be called before Render")
	}
	if vp.film == nil {
		return RenderingProgress{}, fmt.Errorf("viewport: Resize must be called before Render")
	}

	seeds := vp.halton.NextLeap(vp.leapRNG)
	for _, rc := range vp.contexts {
		rc.Sampler.(*sampler.GenericSampler).ResetFrame(seeds, vp.params.UseBlueNoiseDithering)
	}

	if pre, ok := vp.integrator.(integrator.PreRenderer); ok {
		if err := pre.PreRender(vp.scene, vp.params, vp.contexts); err != nil {
			return RenderingProgress{}, fmt.Errorf("viewport: pre-render failed: %w", err)
		}
	}

	tiles := vp.buildTileSchedule()
	if err := vp.renderTiles(ctx, tiles); err != nil {
		return vp.progressSnapshot(), err
	}

	vp.passIndex++
	if vp.adaptive.Enabled {
		vp.blocks.Update(vp.film, vp.passIndex)
	}

	return vp.progressSnapshot(), nil
}

func (vp *Viewport) buildTileSchedule() []tileBounds {
	tileSize := vp.params.TileSize
	tilesWide := (vp.width + tileSize - 1) / tileSize
	tilesHigh := (vp.height + tileSize - 1) / tileSize
	order := hilbertTileOrder(tilesWide, tilesHigh)

	tiles := make([]tileBounds, 0, len(order))
	for _, xy := range order {
		x0 := xy[0] * tileSize
		y0 := xy[1] * tileSize
		x1 := minInt(x0+tileSize, vp.width)
		y1 := minInt(y0+tileSize, vp.height)
		tiles = append(tiles, tileBounds{x0, y0, x1, y1})
	}
	return tiles
}

func (vp *Viewport) renderTiles(ctx context.Context, tiles []tileBounds) error {
	activeBlocks := vp.blocks.ActiveBlocks()

	type job struct{ tile tileBounds }
	jobs := make(chan job, len(tiles))
	for _, t := range tiles {
		jobs <- job{tile: t}
	}
	close(jobs)

	g, gctx := errgroup.WithContext(ctx)
	for workerIdx := 0; workerIdx < vp.numWorkers; workerIdx++ {
		rc := vp.contexts[workerIdx]
		g.Go(func() error {
			for j := range jobs {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if !tileOverlapsAnyBlock(j.tile, activeBlocks) {
					continue
				}
				vp.renderTile(j.tile, rc)
			}
			return nil
		})
	}
	return g.Wait()
}

func tileOverlapsAnyBlock(t tileBounds, blocks []*block.Block) bool {
	if len(blocks) == 0 {
		return false
	}
	for _, b := range blocks {
		if t.x0 < b.X+b.Width && t.x1 > b.X && t.y0 < b.Y+b.Height && t.y1 > b.Y {
			return true
		}
	}
	return false
}

// pixelHilbertSteps returns the cached per-tile-size Hilbert pixel-step
// table, rebuilding it only when the configured tile size changes, per
// spec.md §4.1: "reuse table unchanged if tile size doesn't change."
func (vp *Viewport) pixelHilbertSteps() []hilbertStep {
	if vp.hilbertSteps == nil || vp.hilbertStepsTileSize != vp.params.TileSize {
		vp.hilbertSteps = hilbertPixelSteps(vp.params.TileSize)
		vp.hilbertStepsTileSize = vp.params.TileSize
	}
	return vp.hilbertSteps
}

func (vp *Viewport) renderTile(t tileBounds, rc *integrator.RenderingContext) {
	packetRenderer, usePackets := vp.integrator.(integrator.PacketRenderer)
	usePackets = usePackets && vp.params.PacketMode && vp.params.PacketGroupSize > 1

	if usePackets {
		for y := t.y0; y < t.y1; y++ {
			vp.renderRowPackets(t, y, rc, packetRenderer)
		}
		return
	}

	// Pixels within the tile are visited along a Hilbert curve rather than
	// raster order, per spec.md §4.1, for cache coherence across a
	// worker's successive pixels (shared BVH nodes, textures, shading
	// data stay warm between neighboring samples).
	width := t.x1 - t.x0
	height := t.y1 - t.y0
	x, y := t.x0, t.y0
	for _, step := range vp.pixelHilbertSteps() {
		x += step.dx
		y += step.dy
		rx, ry := x-t.x0, y-t.y0
		if rx < 0 || ry < 0 || rx >= width || ry >= height {
			continue
		}
		vp.renderSinglePixel(x, y, rc)
	}
}

func (vp *Viewport) renderSinglePixel(x, y int, rc *integrator.RenderingContext) {
	start := time.Time{}
	if vp.postParams.VisualizeTimePerPixel {
		start = timeNow()
	}

	rc.Sampler.(*sampler.GenericSampler).ResetPixel(x, y)
	filmCoord := vp.pixelFilmCoord(x, y, rc.Sampler)

	ray := vp.camera.GenerateRay(filmCoord, rc.Sampler)
	ray.Time = vp.shutterTime(ray.Time)
	rc.Time = ray.Time
	vp.counters.CameraRays.Add(1)

	color := vp.integrator.RenderPixel(ray, vp.params, rc)
	vp.film.Accumulate(x, y, color)

	if vp.postParams.VisualizeTimePerPixel {
		idx := y*vp.width + x
		vp.perPixelTimeNanos[idx] = float64(timeNow().Sub(start))
	}
}

// renderRowPackets batches PacketGroupSize contiguous pixels of row y into
// one RayPacket, per spec.md §4.1's packet traversal mode. Grouping is done
// along scanlines rather than exact 2x2/4x2 tile blocks, a simplification
// documented in DESIGN.md: it still exercises PacketRenderer's batched-call
// contract, just without reproducing the SIMD-shaped 2D tiling a real
// packet tracer would use.
func (vp *Viewport) renderRowPackets(t tileBounds, y int, rc *integrator.RenderingContext, packetRenderer integrator.PacketRenderer) {
	groupSize := vp.params.PacketGroupSize
	for x := t.x0; x < t.x1; x += groupSize {
		end := minInt(x+groupSize, t.x1)
		packet := integrator.RayPacket{}
		for px := x; px < end; px++ {
			rc.Sampler.(*sampler.GenericSampler).ResetPixel(px, y)
			filmCoord := vp.pixelFilmCoord(px, y, rc.Sampler)
			ray := vp.camera.GenerateRay(filmCoord, rc.Sampler)
			ray.Time = vp.shutterTime(ray.Time)
			packet.Rays = append(packet.Rays, ray)
			packet.PixelX = append(packet.PixelX, px)
			packet.PixelY = append(packet.PixelY, y)
		}
		vp.counters.CameraRays.Add(int64(len(packet.Rays)))

		colors := packetRenderer.RaytracePacket(packet, vp.params, rc)
		for i, c := range colors {
			vp.film.Accumulate(packet.PixelX[i], packet.PixelY[i], c)
		}
	}
}

// pixelFilmCoord computes a pixel's normalized film coordinate, applying a
// probabilistic box-filter jitter scaled by params.AASpread, per spec.md
// §4.1: "the AA sample offset is drawn from a box filter whose spread is a
// per-pass parameter, not a fixed half-pixel square." The sampler's
// deterministic per-pixel state (reset just before this call) makes the
// jitter reproducible.
func (vp *Viewport) pixelFilmCoord(x, y int, s sampler.Sampler) colorspace.Vec2 {
	jitter := s.Get2D()
	spread := vp.params.AASpread
	offsetX := (jitter.X - 0.5) * spread
	offsetY := (jitter.Y - 0.5) * spread

	px := float64(x) + 0.5 + offsetX
	py := float64(y) + 0.5 + offsetY

	filmX := px / float64(vp.width)
	filmY := 1 - py/float64(vp.height) // flip: row 0 is the top, camera's v=0 is the bottom
	return colorspace.NewVec2(filmX, filmY)
}

func (vp *Viewport) shutterTime(sampledTime float64) float64 {
	if vp.params.MotionBlurStrength <= 0 {
		return 0
	}
	return sampledTime * vp.params.MotionBlurStrength
}

// progressSnapshot reports activePixels and convergedFraction derived from
// active block *area* rather than block count, per spec.md §3/§4.2/§8:
// "converged + activePixels/(W*H) = 1" is an area ratio, and blocks have
// unequal area once any of them have split.
func (vp *Viewport) progressSnapshot() RenderingProgress {
	if vp.blocks == nil {
		return RenderingProgress{PassIndex: vp.passIndex, Converged: false, Counters: vp.counters.Snapshot()}
	}

	active := len(vp.blocks.ActiveBlocks())
	total := vp.blocks.Count()
	activePixels := vp.blocks.ActivePixels()
	totalPixels := vp.width * vp.height
	convergedFraction := 1.0
	if totalPixels > 0 {
		convergedFraction = 1 - float64(activePixels)/float64(totalPixels)
	}

	return RenderingProgress{
		PassIndex:         vp.passIndex,
		ActiveBlocks:      active,
		TotalBlocks:       total,
		ActivePixels:      activePixels,
		AverageError:      vp.blocks.AverageError(vp.film),
		ConvergedFraction: convergedFraction,
		Converged:         vp.blocks.Converged(),
		Counters:          vp.counters.Snapshot(),
	}
}

// Snapshot runs the postprocess pipeline over the current accumulated film
// and returns the display image, per spec.md §4.1's separation between
// accumulated radiance and the display pipeline: Snapshot can be called at
// any point between passes without affecting subsequent Render calls.
func (vp *Viewport) Snapshot() *image.RGBA {
	bgra := vp.pipeline.Render(vp.film, colorspace.Wavelength{}, vp.perPixelTimeNanos, int64(vp.passIndex)+1)

	img := image.NewRGBA(image.Rect(0, 0, vp.width, vp.height))
	for i := 0; i < vp.width*vp.height; i++ {
		o := i * 4
		img.Pix[o+0] = bgra[o+2] // R
		img.Pix[o+1] = bgra[o+1] // G
		img.Pix[o+2] = bgra[o+0] // B
		img.Pix[o+3] = bgra[o+3] // A
	}
	return img
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func timeNow() time.Time { return time.Now() }
