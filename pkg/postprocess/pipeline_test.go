package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
	"github.com/df07/go-progressive-raytracer/pkg/film"
)

func TestPipelineRenderProducesCorrectByteLength(t *testing.T) {
	f := film.New(4, 3)
	p := NewPipeline(DefaultPostprocessParams())
	out := p.Render(f, colorspace.Wavelength{}, nil, 1)
	require.Len(t, out, 4*3*4)
}

func TestPipelineSetParamsDiffsLUTOnlyWhenNeeded(t *testing.T) {
	p := NewPipeline(DefaultPostprocessParams())

	same := DefaultPostprocessParams()
	diff := p.SetParams(same)
	assert.False(t, diff.LUTGenerationRequired)

	changedTonemap := DefaultPostprocessParams()
	changedTonemap.Tonemap = TonemapReinhard
	diff2 := p.SetParams(changedTonemap)
	assert.True(t, diff2.LUTGenerationRequired)
}

func TestPipelineVisualizeTimePerPixelUsesHeatmap(t *testing.T) {
	f := film.New(1, 1)
	f.Accumulate(0, 0, colorspace.NewRayColorRGB(1, 1, 1))

	params := DefaultPostprocessParams()
	params.VisualizeTimePerPixel = true
	params.DitherEnabled = false
	p := NewPipeline(params)

	fastOut := p.Render(f, colorspace.Wavelength{}, []float64{0}, 1)
	slowOut := p.Render(f, colorspace.Wavelength{}, []float64{5_000_000}, 1)

	// The heatmap is blue (fast) to red (slow); a slow pixel should carry
	// more red channel than a fast one at the same film contents.
	assert.Greater(t, slowOut[2], fastOut[2])
}

func TestDiffParamsFullUpdateOnAnyFieldChange(t *testing.T) {
	old := DefaultPostprocessParams()
	newParams := old
	newParams.Exposure = 1.0
	diff := DiffParams(old, newParams)
	assert.True(t, diff.FullUpdateRequired)
	assert.False(t, diff.LUTGenerationRequired)
}
