//go:build !spectral

package colorspace

// RayColor is the tristimulus (non-spectral) radiance carrier: a 3-vector
// in linear Rec.709 (or XYZ, depending on the postprocess build — see
// pkg/postprocess). This file is compiled when the "spectral" build tag is
// absent; raycolor_spectral.go provides the N-component hero-wavelength
// alternative described in spec.md §4.4.
type RayColor = Vec3

var (
	RayColorZero = Zero3
	RayColorOne  = One3
)

// NewRayColorRGB constructs a RayColor directly from RGB components; it is
// the identity in tristimulus builds and exists so call sites that need to
// build a color from known linear RGB compile the same way under both
// build tags.
func NewRayColorRGB(r, g, b float64) RayColor { return RayColor{r, g, b} }

// IsValidRayColor reports whether every channel is finite and non-negative,
// per spec.md §3: "RayColor ... IsValid ⇒ no NaN/Inf".
func IsValidRayColor(c RayColor) bool {
	return c.IsFinite() && c.X >= 0 && c.Y >= 0 && c.Z >= 0
}

// ResolveRayColor returns c unchanged: in tristimulus mode there is no
// wavelength-dependent resolution step.
func ResolveRayColor(c RayColor, _ Wavelength) RayColor { return c }

// ConvertToTristimulus is the identity in non-spectral builds, per
// spec.md §4.4: "in non-spectral mode it is the identity."
func ConvertToTristimulus(c RayColor, _ Wavelength) Vec3 { return c }

// Luminance gives integrator code a build-tag-independent way to obtain a
// RayColor's perceptual luminance (the spectral build needs the ray's
// Wavelength to do this; the tristimulus build ignores it).
func Luminance(c RayColor, _ Wavelength) float64 { return c.Luminance() }
