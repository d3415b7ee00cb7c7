package shading

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LightingParams collects the tunable constants of both shading models and the
// shadow filter. The defaults reproduce the shipped look exactly; overriding
// them via a YAML file swaps the look without touching shader code.
//
// The zero value is NOT usable; start from DefaultLightingParams.
type LightingParams struct {
	// ShadowBias is subtracted from the fragment's light-space depth before
	// each shadow comparison, to avoid self-shadowing acne.
	ShadowBias float32 `yaml:"shadow_bias"`

	// SimpleShadowFloor is the lower bound of the simple model's shadow
	// remap: visibility maps to lerp(floor, 1, visibility).
	SimpleShadowFloor float32 `yaml:"simple_shadow_floor"`

	// PBRShadowFloor is the lower bound of the PBR model's shadow remap.
	PBRShadowFloor float32 `yaml:"pbr_shadow_floor"`

	// DiffuseFloor is the simple model's minimum N.L: surfaces never fall
	// below this diffuse level even facing away from the light.
	DiffuseFloor float32 `yaml:"diffuse_floor"`

	// SpecularExponent is the simple model's Blinn-Phong power.
	SpecularExponent float32 `yaml:"specular_exponent"`

	// SpecularBoost multiplies the simple model's specular term.
	SpecularBoost float32 `yaml:"specular_boost"`

	// SimpleAmbient scales the simple model's flat ambient term.
	SimpleAmbient float32 `yaml:"simple_ambient"`

	// OutputGamma is the exponent applied to the simple model's final color.
	OutputGamma float32 `yaml:"output_gamma"`

	// WrapAmount shifts the PBR wrapped-diffuse term:
	// wrapped = clamp((N.L + wrap) / (1 + wrap), 0, 1).
	WrapAmount float32 `yaml:"wrap_amount"`

	// WrapPower is the exponent applied to the wrapped diffuse term.
	WrapPower float32 `yaml:"wrap_power"`

	// AmbientScale scales the PBR hemispheric ambient term.
	AmbientScale float32 `yaml:"ambient_scale"`

	// SkyColor is the upper hemisphere color of the PBR ambient term.
	SkyColor [3]float32 `yaml:"sky_color"`

	// GroundColor is the lower hemisphere color of the PBR ambient term.
	GroundColor [3]float32 `yaml:"ground_color"`

	// SpecularClamp is the hard per-component ceiling applied to the PBR
	// specular term before Reinhard compression.
	SpecularClamp float32 `yaml:"specular_clamp"`

	// DielectricF0 is the Fresnel reflectance at normal incidence for
	// non-metallic surfaces.
	DielectricF0 float32 `yaml:"dielectric_f0"`

	// Epsilon floors the GGX and PCF-width denominators. Tuned; changing it
	// shifts highlight falloff at grazing angles.
	Epsilon float32 `yaml:"epsilon"`
}

// DefaultLightingParams returns the stock tuning for both shading models.
//
// Returns:
//   - LightingParams: the default parameter set
func DefaultLightingParams() LightingParams {
	return LightingParams{
		ShadowBias:        0.007,
		SimpleShadowFloor: 0.5,
		PBRShadowFloor:    0.4,
		DiffuseFloor:      0.6,
		SpecularExponent:  16.0,
		SpecularBoost:     2.0,
		SimpleAmbient:     0.2,
		OutputGamma:       2.2,
		WrapAmount:        0.4,
		WrapPower:         0.8,
		AmbientScale:      0.4,
		SkyColor:          [3]float32{0.6, 0.71, 0.85},
		GroundColor:       [3]float32{0.32, 0.28, 0.24},
		SpecularClamp:     5.0,
		DielectricF0:      0.04,
		Epsilon:           1e-4,
	}
}

// LoadLightingParams reads a YAML tuning file and merges it over the
// defaults, so partial files only override the keys they name.
//
// Parameters:
//   - path: filesystem path to the YAML file
//
// Returns:
//   - LightingParams: the merged parameter set
//   - error: non-nil if reading or decoding fails
func LoadLightingParams(path string) (LightingParams, error) {
	params := DefaultLightingParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("failed to read lighting params %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("failed to parse lighting params %s: %w", path, err)
	}
	return params, nil
}
