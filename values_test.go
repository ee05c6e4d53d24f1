package matclass

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"floats within eps", FloatValue(0.03), FloatValue(0.030001), true},
		{"floats apart", FloatValue(0.03), FloatValue(0.05), false},
		{"ints", IntValue(2), IntValue(2), true},
		{"ints differ", IntValue(2), IntValue(3), false},
		{"kinds differ", FloatValue(1), IntValue(1), false},
		{"bools", BoolValue(true), BoolValue(true), true},
		{"colors", ColorValue{R: 1, A: 1}, ColorValue{R: 1.000001, A: 1}, true},
		{"vectors", VectorValue{X: 1}, VectorValue{Y: 1}, false},
		{"textures ignore tiling", TextureValue(PathTexture("A/b.png")), TextureValue(PathTexture(`a\B.png`)), true},
		{"null textures", TextureValue(NullTexture()), TextureValue(NullTexture()), true},
		{"nil pair", nil, nil, true},
		{"nil one side", nil, FloatValue(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b, 1e-5))
		})
	}
}

func TestPropertyKindText(t *testing.T) {
	for _, k := range []PropertyKind{KindFloat, KindInt, KindBool, KindColor, KindVector, KindTexture} {
		b, err := k.MarshalText()
		require.NoError(t, err)

		parsed, ok := ParsePropertyKind(string(b))
		require.True(t, ok, string(b))
		assert.Equal(t, k, parsed)
	}

	var k PropertyKind
	require.NoError(t, json.Unmarshal([]byte(`"color"`), &k))
	assert.Equal(t, KindColor, k)
	assert.Error(t, json.Unmarshal([]byte(`"matrix"`), &k))

	b, err := json.Marshal(PropertyDecl{Name: "_A", Kind: KindVector, Default: VectorValue{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"vector"`)
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "0.03", FloatValue(0.03).String())
	assert.Equal(t, "7", IntValue(7).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "null", TextureValue(NullTexture()).String())
	assert.Equal(t, "guid:abc", TextureValue(ObjectTexture(1, 0, "abc")).String())
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, FloatValue(0), ZeroValue(KindFloat))
	assert.Equal(t, TextureValue(NullTexture()), ZeroValue(KindTexture))
	assert.Panics(t, func() { ZeroValue(PropertyKind(99)) })
}

func TestMaterialAccessor(t *testing.T) {
	m := NewMaterial("x")
	m.Floats["_Legacy"] = 2

	v, ok := m.GetProperty("_Legacy", KindInt)
	require.True(t, ok)
	assert.Equal(t, IntValue(2), v)

	require.NoError(t, m.SetProperty("_Legacy", IntValue(3)))
	assert.Equal(t, 3.0, m.Floats["_Legacy"], "int writes keep float storage")
	assert.NotContains(t, m.Ints, "_Legacy")

	require.NoError(t, m.SetProperty("_Mode", IntValue(1)))
	assert.Equal(t, int64(1), m.Ints["_Mode"])

	require.NoError(t, m.SetProperty("_Toggle", BoolValue(true)))
	assert.Equal(t, 1.0, m.Floats["_Toggle"])

	require.NoError(t, m.SetProperty("_Tex", TextureValue(PathTexture("a.png"))))
	assert.True(t, m.HasProperty("_Tex"))

	assert.ErrorIs(t, m.SetProperty("_Nil", nil), ErrValidation)

	_, ok = m.GetProperty("_Legacy", KindColor)
	assert.False(t, ok)

	assert.Equal(t, []string{"_Legacy", "_Mode", "_Tex", "_Toggle"}, m.PropertyNames())
}

func TestTextureValueKind(t *testing.T) {
	v := TextureValue(PathTexture("a.png"))
	assert.Equal(t, KindTexture, v.Kind())
	assert.Equal(t, TextureKindPath, TextureRef(v).Type)

	b, err := json.Marshal(PathTexture("a.png"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"path","path":"a.png"}`, string(b))
}

func TestSetPropertyMovesStorage(t *testing.T) {
	m := NewMaterial("x")
	m.Ints["_W"] = 1
	m.Vectors["_Tint"] = Vector{X: 1}

	require.NoError(t, m.SetProperty("_W", FloatValue(0.5)))
	assert.Equal(t, 0.5, m.Floats["_W"])
	assert.NotContains(t, m.Ints, "_W")

	require.NoError(t, m.SetProperty("_Tint", ColorValue{R: 1, A: 1}))
	assert.NotContains(t, m.Vectors, "_Tint")

	b, err := Format(m, &FormatOptions{Encoding: EncodingNested})
	require.NoError(t, err)
	back, err := Parse(b, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"_W": 0.5}, back.Floats)
	assert.Empty(t, back.Ints)
}

func TestMaterialClone(t *testing.T) {
	m := NewMaterial("x")
	scale := Vector{X: 1, Y: 1}
	m.Textures["_MainTex"] = TextureRef{Type: TextureKindPath, Path: "a.png", Scale: &scale}
	m.Floats["_A"] = 1

	c := m.Clone()
	c.Floats["_A"] = 2
	c.Textures["_MainTex"].Scale.X = 5

	assert.Equal(t, 1.0, m.Floats["_A"])
	assert.Equal(t, 1.0, m.Textures["_MainTex"].Scale.X)
	assert.Nil(t, (*Material)(nil).Clone())
}
