package shading

import "github.com/chewxy/math32"

// pbrModel is the stylized physically-based shading model: Cook-Torrance GGX
// specular with Reinhard compression, a wrapped diffuse term, and a
// hemispheric ambient blend.
type pbrModel struct {
	params LightingParams
}

var _ ShadingModel = &pbrModel{}

// NewPBRModel creates the stylized PBR shading model with the given tuning.
//
// Parameters:
//   - params: the lighting constants to shade with
//
// Returns:
//   - ShadingModel: the PBR model
func NewPBRModel(params LightingParams) ShadingModel {
	return &pbrModel{params: params}
}

func (m *pbrModel) Shade(surface Surface, light Light, visibility float32) Vec3 {
	p := m.params

	n := surface.Normal
	l := light.Direction.Scale(-1)
	v := surface.View
	h := l.Add(v).Normalize()

	rawNdotL := n.Dot(l)
	ndotL := math32.Max(rawNdotL, 0)
	ndotV := math32.Max(n.Dot(v), 0)
	ndotH := math32.Max(n.Dot(h), 0)
	hdotV := math32.Max(h.Dot(v), 0)

	// GGX normal distribution with alpha = roughness^2.
	alpha := surface.Roughness * surface.Roughness
	alpha2 := alpha * alpha
	dDenom := ndotH*ndotH*(alpha2-1.0) + 1.0
	d := alpha2 / math32.Max(math32.Pi*dDenom*dDenom, p.Epsilon)

	// Smith-Schlick-GGX geometry term.
	k := (surface.Roughness + 1.0) * (surface.Roughness + 1.0) / 8.0
	g := smithG1(ndotV, k) * smithG1(ndotL, k)

	// Schlick Fresnel with metallic-interpolated F0.
	f0 := LerpVec3(Vec3{p.DielectricF0, p.DielectricF0, p.DielectricF0}, surface.Albedo, surface.Metallic)
	f := f0.Add(Vec3{1, 1, 1}.Sub(f0).Scale(math32.Pow(1.0-hdotV, 5.0)))

	specular := f.Scale(d * g / (4.0*ndotV*ndotL + p.Epsilon))
	specular = specular.Mul(light.Color).Scale(ndotL)

	// Hard clamp, then Reinhard-style compression keeps the term in [0,1).
	specular = Vec3{
		Clamp(specular[0], 0, p.SpecularClamp),
		Clamp(specular[1], 0, p.SpecularClamp),
		Clamp(specular[2], 0, p.SpecularClamp),
	}
	specular = Vec3{
		specular[0] / (specular[0] + 1.0),
		specular[1] / (specular[1] + 1.0),
		specular[2] / (specular[2] + 1.0),
	}

	// Wrapped diffuse softens the terminator past the geometric horizon.
	wrapped := Clamp((rawNdotL+p.WrapAmount)/(1.0+p.WrapAmount), 0, 1)
	diffuse := surface.Albedo.Mul(light.Color).Scale(math32.Pow(wrapped, p.WrapPower))

	// Hemispheric ambient blends ground and sky by the normal's upness.
	up := n[1]*0.5 + 0.5
	ambient := LerpVec3(Vec3(p.GroundColor), Vec3(p.SkyColor), up).Scale(p.AmbientScale).Mul(surface.Albedo)

	vis := Lerp(p.PBRShadowFloor, 1.0, visibility)
	return diffuse.Add(specular).Scale(vis).Add(ambient).Clamp01()
}

// smithG1 is one direction's half of the Smith-Schlick-GGX geometry term.
func smithG1(x, k float32) float32 {
	return x / (x*(1.0-k) + k)
}
