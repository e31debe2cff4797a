package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
)

func TestApplyBloomDisabledIsNoOp(t *testing.T) {
	pixels := []colorspace.Vec3{colorspace.NewVec3(2, 2, 2)}
	before := pixels[0]

	params := DefaultPostprocessParams()
	params.BloomEnabled = false
	ApplyBloom(pixels, 1, 1, params)

	assert.Equal(t, before, pixels[0])
}

func TestApplyBloomAddsEnergyAboveThreshold(t *testing.T) {
	width, height := 8, 8
	pixels := make([]colorspace.Vec3, width*height)
	pixels[3*width+3] = colorspace.NewVec3(5, 5, 5) // single bright pixel above threshold

	params := DefaultPostprocessParams()
	params.BloomEnabled = true
	params.BloomThreshold = 1.0
	params.BloomIntensity = 1.0

	ApplyBloom(pixels, width, height, params)

	neighbor := pixels[3*width+4]
	assert.Greater(t, neighbor.X, 0.0, "bloom must spread energy into neighboring pixels")
}

func TestGaussianKernelSumsToOne(t *testing.T) {
	k := gaussianKernel(2.0)
	sum := 0.0
	for _, w := range k {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
