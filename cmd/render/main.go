// Command render is a CLI driver for the progressive raytracer core: it
// configures a Viewport with a demo scene, runs passes in a loop until the
// pass budget (--max-passes) is spent or adaptive refinement reports
// convergence, and writes a PNG after each pass. Grounded
// on the teacher's main.go (flag-driven scene selection, per-pass PNG
// output, timestamped filenames), rebuilt on cobra/pflag for flag parsing
// and fatih/color + schollz/progressbar for terminal feedback.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"time"

	fatihcolor "github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-raytracer/internal/camera"
	"github.com/df07/go-progressive-raytracer/internal/fixtures"
	"github.com/df07/go-progressive-raytracer/internal/logging"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/viewport"
)

type options struct {
	scene       string
	integrator  string
	width       int
	height      int
	maxPasses   int
	workers     int
	outputDir   string
	verbose     bool
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:   "render",
		Short: "Run the progressive raytracer for a fixed number of passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.scene, "scene", "cornell", "demo scene: cornell or furnace")
	flags.StringVar(&opts.integrator, "integrator", "mis", "integrator: naive, mis, light, vcm")
	flags.IntVar(&opts.width, "width", 400, "output image width")
	flags.IntVar(&opts.height, "height", 400, "output image height")
	flags.IntVar(&opts.maxPasses, "max-passes", 8, "number of progressive passes to run")
	flags.IntVar(&opts.workers, "workers", 0, "parallel tile workers (0 = auto-detect CPU count)")
	flags.StringVar(&opts.outputDir, "output", "output", "directory to write pass PNGs into")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable debug-level logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, fatihcolor.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(opts *options) error {
	level := logrus.InfoLevel
	if opts.verbose {
		level = logrus.DebugLevel
	}
	logger := logging.New(level)

	if opts.workers <= 0 {
		opts.workers = runtime.NumCPU()
	}

	scn, lookFrom, lookAt := buildScene(opts.scene)
	cam := camera.New(lookFrom, lookAt, mgl64.Vec3{0, 1, 0}, 40, opts.width, opts.height, 0, 10, 0, 0)

	integ, err := buildIntegrator(opts.integrator)
	if err != nil {
		return err
	}

	vp := viewport.New(opts.workers, logger)
	if err := vp.Resize(opts.width, opts.height); err != nil {
		return err
	}
	if err := vp.SetRenderer(scn, cam, integ); err != nil {
		return err
	}
	if err := vp.SetRenderingParams(integrator.DefaultRenderingParams()); err != nil {
		return err
	}

	outputDir := filepath.Join(opts.outputDir, opts.scene)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	fatihcolor.New(fatihcolor.FgCyan, fatihcolor.Bold).Printf("session %s: %s scene, %s integrator, %dx%d\n",
		vp.SessionID(), opts.scene, opts.integrator, opts.width, opts.height)

	bar := progressbar.Default(int64(opts.maxPasses), "rendering")

	ctx := context.Background()
	timestamp := time.Now().Format("20060102_150405")
	var lastImage *image.RGBA

	for pass := 0; pass < opts.maxPasses; pass++ {
		progress, err := vp.Render(ctx)
		if err != nil {
			return fmt.Errorf("render pass %d: %w", pass, err)
		}
		_ = bar.Add(1)

		img := vp.Snapshot()
		lastImage = img

		filename := filepath.Join(outputDir, fmt.Sprintf("render_%s_pass_%02d.png", timestamp, pass))
		if err := savePNG(img, filename); err != nil {
			return fmt.Errorf("saving pass %d: %w", pass, err)
		}

		logger.WithField("pass", pass).Infof(
			"converged=%v active=%d/%d camera_rays=%d",
			progress.Converged, progress.ActiveBlocks, progress.TotalBlocks, progress.Counters.CameraRays)

		if progress.Converged {
			fatihcolor.Green("pass %d: adaptive refinement converged", pass)
			break
		}
	}

	finalPath := filepath.Join(outputDir, fmt.Sprintf("render_%s_final.png", timestamp))
	if lastImage != nil {
		if err := savePNG(lastImage, finalPath); err != nil {
			return err
		}
	}
	fatihcolor.New(fatihcolor.FgGreen, fatihcolor.Bold).Printf("wrote %s\n", finalPath)
	return nil
}

func buildIntegrator(name string) (integrator.Integrator, error) {
	switch name {
	case "naive":
		return integrator.NewPathTracer(), nil
	case "mis":
		return integrator.NewPathTracerMIS(), nil
	case "light":
		return integrator.NewLightTracer(), nil
	case "vcm":
		return integrator.NewVCM(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q (want naive, mis, light, vcm)", name)
	}
}

func buildScene(name string) (scn *fixtures.Scene, lookFrom, lookAt mgl64.Vec3) {
	switch name {
	case "furnace":
		return fixtures.NewFurnaceTestScene(0.5), mgl64.Vec3{0, 0, 4}, mgl64.Vec3{0, 0, 0}
	case "cornell":
		fallthrough
	default:
		return fixtures.NewCornellBoxScene(), mgl64.Vec3{0, 0, 4.2}, mgl64.Vec3{0, 0, 0}
	}
}

func savePNG(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
