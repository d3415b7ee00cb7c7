package shading

import "github.com/chewxy/math32"

// simpleModel is the flat stylized shading model: floored Lambertian diffuse,
// Blinn-Phong specular, and a flat ambient term, gamma-encoded on output.
type simpleModel struct {
	params LightingParams
}

var _ ShadingModel = &simpleModel{}

// NewSimpleModel creates the simple shading model with the given tuning.
//
// Parameters:
//   - params: the lighting constants to shade with
//
// Returns:
//   - ShadingModel: the simple model
func NewSimpleModel(params LightingParams) ShadingModel {
	return &simpleModel{params: params}
}

func (m *simpleModel) Shade(surface Surface, light Light, visibility float32) Vec3 {
	p := m.params

	n := surface.Normal
	l := light.Direction.Scale(-1)
	h := l.Add(surface.View).Normalize()

	// Surfaces never fall below the diffuse floor, even facing away.
	diffuseTerm := math32.Max(n.Dot(l), p.DiffuseFloor)
	diffuse := surface.Albedo.Mul(light.Color).Scale(diffuseTerm)

	ndotH := math32.Max(n.Dot(h), 0)
	specular := light.Color.Scale(math32.Pow(ndotH, p.SpecularExponent) * p.SpecularBoost)

	ambient := surface.Albedo.Mul(light.Color).Scale(p.SimpleAmbient)

	vis := Lerp(p.SimpleShadowFloor, 1.0, visibility)
	color := diffuse.Add(specular).Scale(vis).Add(ambient)

	// Gamma-encoded output. This applies the encoding curve on top of the
	// usual linear-to-sRGB conversion done by the surface format; kept for
	// compatibility with the shipped look.
	return Vec3{
		math32.Pow(color[0], p.OutputGamma),
		math32.Pow(color[1], p.OutputGamma),
		math32.Pow(color[2], p.OutputGamma),
	}.Clamp01()
}
