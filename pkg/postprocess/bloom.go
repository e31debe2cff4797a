package postprocess

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/colorspace"
)

// ApplyBloom adds a multi-scale glow to pixels above params.BloomThreshold,
// compositing params.BloomElements' separable Gaussian blurs weighted by
// BloomIntensity, per spec.md §2. Grounded on standard separable-Gaussian
// bloom as implemented by most of the pack's rendering-adjacent examples'
// postprocess chains (no single teacher equivalent; the teacher has no
// bloom stage at all, so this stage is wholly new per spec.md's bloom
// requirement).
func ApplyBloom(pixels []colorspace.Vec3, width, height int, params PostprocessParams) {
	if !params.BloomEnabled || len(params.BloomElements) == 0 {
		return
	}

	bright := make([]colorspace.Vec3, len(pixels))
	for i, p := range pixels {
		lum := p.Luminance()
		if lum <= params.BloomThreshold {
			continue
		}
		scale := (lum - params.BloomThreshold) / lum
		bright[i] = p.Multiply(scale)
	}

	composite := make([]colorspace.Vec3, len(pixels))
	for _, element := range params.BloomElements {
		blurred := gaussianBlurSeparable(bright, width, height, element.Radius)
		for i := range composite {
			composite[i] = composite[i].Add(blurred[i].Multiply(element.Weight))
		}
	}

	for i := range pixels {
		pixels[i] = pixels[i].Add(composite[i].Multiply(params.BloomIntensity))
	}
}

// gaussianBlurSeparable runs a horizontal pass followed by a vertical pass
// with a kernel sized from radius (3-sigma support), avoiding the O(wh*r^2)
// cost of a full 2D convolution.
func gaussianBlurSeparable(src []colorspace.Vec3, width, height int, radius float64) []colorspace.Vec3 {
	sigma := math.Max(radius/3, 0.5)
	kernel := gaussianKernel(sigma)
	half := len(kernel) / 2

	tmp := make([]colorspace.Vec3, len(src))
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			sum := colorspace.Zero3
			for k, w := range kernel {
				sx := x + k - half
				if sx < 0 {
					sx = 0
				} else if sx >= width {
					sx = width - 1
				}
				sum = sum.Add(src[row+sx].Multiply(w))
			}
			tmp[row+x] = sum
		}
	}

	out := make([]colorspace.Vec3, len(src))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := colorspace.Zero3
			for k, w := range kernel {
				sy := y + k - half
				if sy < 0 {
					sy = 0
				} else if sy >= height {
					sy = height - 1
				}
				sum = sum.Add(tmp[sy*width+x].Multiply(w))
			}
			out[y*width+x] = sum
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(sigma * 3))
	if radius < 1 {
		radius = 1
	}
	size := 2*radius + 1
	kernel := make([]float64, size)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		w := math.Exp(-(x * x) / (2 * sigma * sigma))
		kernel[i] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
