package matclass

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// testRegistry builds a small registry used across tests.
//
//	toon:    4-property signature, variants base/face/hair on _BodyPart
//	surface: 4-property signature, no variants
//	Alpha, Beta: toon shaders sharing _OutlineWidth, _ShadowColor and _BodyPart
func testRegistry(t testing.TB) *Registry {
	t.Helper()
	reg, err := NewRegistry(RegistryDef{
		Families: []ShaderFamily{
			{
				ID:            "toon",
				Name:          "Toon",
				Signature:     []string{"_MainTex", "_ShadowColor", "_OutlineWidth", "_BodyPart"},
				Discriminator: "_BodyPart",
				Variants: []Variant{
					{Name: "base", Value: 0},
					{Name: "face", Value: 2, Tokens: []string{"face", "kao"}},
					{Name: "hair", Value: 3},
				},
				Textures: []string{"_MainTex", "_LightMap"},
				Rules: TextureRules{
					Overlay: SettingsOverlay{MaxSize: ptr(2048), Mipmaps: ptr(false)},
					Slots: map[string]SettingsOverlay{
						"_LightMap": {SRGB: ptr(false), Compression: ptr(CompressionHigh)},
					},
				},
			},
			{
				ID:        "surface",
				Signature: []string{"_MainTex", "_BumpMap", "_Metallic", "_Glossiness"},
				Textures:  []string{"_MainTex", "_BumpMap"},
			},
		},
		Shaders: []ShaderDecl{
			{
				Name:   "Alpha",
				Family: "toon",
				Properties: []PropertyDecl{
					{Name: "_MainTex", Kind: KindTexture},
					{Name: "_OutlineWidth", Kind: KindFloat, Default: FloatValue(0.03), Min: ptr(0.0), Max: ptr(1.0)},
					{Name: "_ShadowColor", Kind: KindColor, Default: ColorValue{R: 0.7, G: 0.6, B: 0.65, A: 1}},
					{Name: "_BodyPart", Kind: KindInt, Options: []int64{0, 2, 3}},
					{Name: "_Toggle", Kind: KindBool, Default: BoolValue(true)},
				},
			},
			{
				Name:   "Beta",
				Family: "toon",
				Properties: []PropertyDecl{
					{Name: "_OutlineWidth", Kind: KindFloat, Default: FloatValue(0.02), Min: ptr(0.0), Max: ptr(0.5)},
					{Name: "_ShadowColor", Kind: KindColor},
					{Name: "_BodyPart", Kind: KindInt},
					{Name: "_Extra", Kind: KindFloat},
				},
			},
			{
				Name: "Gamma",
				Properties: []PropertyDecl{
					{Name: "_OutlineWidth", Kind: KindInt},
					{Name: "_Extra", Kind: KindFloat},
				},
			},
		},
	})
	require.NoError(t, err)
	return reg
}

// toonMaterial returns a material fully covering the toon signature.
func toonMaterial(name string) *Material {
	m := NewMaterial(name)
	m.Shader = "Alpha"
	m.Textures["_MainTex"] = PathTexture("Textures/" + name + ".png")
	m.Colors["_ShadowColor"] = Color{R: 0.7, G: 0.6, B: 0.65, A: 1}
	m.Floats["_OutlineWidth"] = 0.03
	m.Ints["_BodyPart"] = 0
	return m
}
