package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/matclass"
	"github.com/woozymasta/matclass/texmeta"
)

const faceMaterial = `{
  "name": "Hero_Face",
  "shader": "Custom/ToonCharacter",
  "textures": {"_MainTex": "Textures/face.png", "_ShadowRampTex": null},
  "floats": {"_ShadowThreshold": 0.5, "_OutlineWidth": 0.03},
  "ints": {"_BodyPart": 2},
  "colors": {
    "_ShadowColor": [0.7, 0.6, 0.65, 1],
    "_OutlineColor": {"r": 0, "g": 0, "b": 0, "a": 1},
    "_RimColor": [1, 1, 1, 1]
  }
}`

const bodyMaterial = `{
  "name": "Hero_Body",
  "shader": "Custom/ToonCharacter",
  "textures": {"_MainTex": "Textures/body.png"},
  "floats": {"_ShadowThreshold": 0.5, "_OutlineWidth": 0.08},
  "ints": {"_BodyPart": 1},
  "colors": {
    "_ShadowColor": [0.7, 0.6, 0.65, 1],
    "_OutlineColor": [0, 0, 0, 1],
    "_RimColor": [1, 1, 1, 1]
  }
}`

const oversizedMeta = `fileFormatVersion: 2
guid: 11111111111111111111111111111111
TextureImporter:
  mipmaps:
    enableMipMap: 1
    sRGBTexture: 1
  maxTextureSize: 4096
  textureCompression: 1
`

// project lays out a small project and returns its root and material paths.
func project(t *testing.T) (string, string, string) {
	t.Helper()
	root := t.TempDir()
	tex := filepath.Join(root, "Textures")
	require.NoError(t, os.MkdirAll(tex, 0o755))
	for _, name := range []string{"face.png", "body.png"} {
		f, err := os.Create(filepath.Join(tex, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 64, 64))))
		require.NoError(t, f.Close())
		require.NoError(t, os.WriteFile(filepath.Join(tex, name+".meta"), []byte(oversizedMeta), 0o600))
	}

	mats := filepath.Join(root, "Materials")
	require.NoError(t, os.MkdirAll(mats, 0o755))
	face := filepath.Join(mats, "Hero_Face.json")
	body := filepath.Join(mats, "Hero_Body.json")
	require.NoError(t, os.WriteFile(face, []byte(faceMaterial), 0o600))
	require.NoError(t, os.WriteFile(body, []byte(bodyMaterial), 0o600))
	return root, face, body
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	err := run(context.Background(), &out, &logs, args)
	return out.String(), err
}

func TestRun_Usage(t *testing.T) {
	out, err := runCmd(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "optimize")

	out, err = runCmd(t, "analyze", "-h")
	require.NoError(t, err)
	assert.Contains(t, out, "-strict")
}

func TestRun_Errors(t *testing.T) {
	_, err := runCmd(t, "explode")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, err = runCmd(t, "analyze", "--this-is-not-a-valid-flag")
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, err = runCmd(t, "analyze", "-format", "xml", "x.json")
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, err = runCmd(t, "analyze")
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_Registry(t *testing.T) {
	out, err := runCmd(t, "registry", "-format", "json")
	require.NoError(t, err)

	var got struct {
		Families []struct {
			ID string `json:"id"`
		} `json:"families"`
		Shaders []struct {
			Name       string `json:"name"`
			Properties []struct {
				Kind string `json:"kind"`
			} `json:"properties"`
		} `json:"shaders"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.Families)
	assert.Equal(t, "toon_character", got.Families[0].ID)
	require.NotEmpty(t, got.Shaders)
	assert.Equal(t, "texture", got.Shaders[0].Properties[0].Kind)

	out, err = runCmd(t, "registry", "-builtin-source")
	require.NoError(t, err)
	assert.Contains(t, out, `family "toon_character"`)

	out, err = runCmd(t, "registry", "-format", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "toon_character")
}

func TestRun_Analyze(t *testing.T) {
	root, face, _ := project(t)

	out, err := runCmd(t, "analyze", "-project-root", root, "-format", "json", face)
	require.NoError(t, err)

	var reports []struct {
		Classification struct {
			Family  string `json:"family"`
			Variant string `json:"variant"`
			Source  string `json:"variantSource"`
		} `json:"classification"`
		Slots []matclass.SlotStatus `json:"slots"`
		Textures []struct {
			Slot            string   `json:"slot"`
			Recommendations []string `json:"recommendations"`
			Valid           bool     `json:"valid"`
		} `json:"textures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "toon_character", r.Classification.Family)
	assert.Equal(t, "face", r.Classification.Variant)
	assert.Equal(t, "filename", r.Classification.Source)

	states := map[string]matclass.SlotState{}
	for _, s := range r.Slots {
		states[s.Slot] = s.State
	}
	assert.Equal(t, matclass.SlotAssigned, states["_MainTex"])
	assert.Equal(t, matclass.SlotNull, states["_ShadowRampTex"])
	assert.Equal(t, matclass.SlotAbsent, states["_LightMap"])

	require.Len(t, r.Textures, 1)
	assert.True(t, r.Textures[0].Valid)
	assert.Equal(t, "_MainTex", r.Textures[0].Slot)
	assert.Contains(t, r.Textures[0].Recommendations, "reduce max size from 4096 to 2048")
	assert.Contains(t, r.Textures[0].Recommendations, "disable mipmaps")

	text, err := runCmd(t, "analyze", "-project-root", root, face)
	require.NoError(t, err)
	assert.Contains(t, text, "family:  toon_character")
	assert.Contains(t, text, "[P2]")
}

func TestRun_Optimize(t *testing.T) {
	root, face, _ := project(t)
	facePNG := filepath.Join(root, "Textures", "face.png")
	store := texmeta.NewStore(root)

	out, err := runCmd(t, "optimize", "-project-root", root, "-dry-run", face)
	require.NoError(t, err)
	assert.Contains(t, out, "1 planned")
	before, err := store.LoadCurrentSettings(facePNG)
	require.NoError(t, err)
	assert.Equal(t, 4096, before.MaxSize, "dry run writes nothing")

	out, err = runCmd(t, "optimize", "-project-root", root, face)
	require.NoError(t, err)
	assert.Contains(t, out, "1 applied")

	after, err := texmeta.NewStore(root).LoadCurrentSettings(facePNG)
	require.NoError(t, err)
	assert.Equal(t, 2048, after.MaxSize)
	assert.False(t, after.Mipmaps)

	out, err = runCmd(t, "optimize", "-project-root", root, face)
	require.NoError(t, err)
	assert.Contains(t, out, "0 applied, 1 skipped")
}

func TestRun_Common(t *testing.T) {
	root, face, body := project(t)

	out, err := runCmd(t, "common", "-project-root", root, "-format", "json", face, body)
	require.NoError(t, err)
	assert.False(t, outlineConsistent(t, out))

	_, err = runCmd(t, "common", "-set", "_OutlineWidth=5", face, body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, matclass.ErrValidation))

	_, err = runCmd(t, "common", "-set", "_Unknown=1", face, body)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)

	out, err = runCmd(t, "common", "-set", "_OutlineWidth=0.05", "-format", "json", face, body)
	require.NoError(t, err)
	assert.True(t, outlineConsistent(t, out))

	m, err := matclass.DecodeFile(body, nil)
	require.NoError(t, err)
	assert.Equal(t, matclass.EncodingFlat, m.Encoding)
	assert.InDelta(t, 0.05, m.Floats["_OutlineWidth"], 1e-9)
	assert.Equal(t, "Textures/body.png", m.Textures["_MainTex"].Path)
}

const nestedMaterial = `{
  "m_Shader": {"name": "Custom/ToonCharacter"},
  "m_SavedProperties": {
    "m_TexEnvs": {"_MainTex": {"m_Texture": {"m_FileID": 2800000, "guid": "22222222222222222222222222222222"}}},
    "m_Floats": {"_OutlineWidth": 0.03},
    "m_Ints": {"_BodyPart": 3}
  }
}`

func TestRun_CommonWritesAllOrNothing(t *testing.T) {
	_, face, _ := project(t)
	nested := filepath.Join(filepath.Dir(face), "Hero_Hair.json")
	require.NoError(t, os.WriteFile(nested, []byte(nestedMaterial), 0o600))

	before, err := os.ReadFile(face)
	require.NoError(t, err)

	// A path texture cannot be written in the nested encoding.
	_, err = runCmd(t, "common", "-set", "_MainTex=Textures/new.png", face, nested)
	require.ErrorIs(t, err, matclass.ErrIncompatibleEncoding)

	after, err := os.ReadFile(face)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	_, err = runCmd(t, "common", "-dry-run", "-set", "_MainTex=Textures/new.png", face, nested)
	require.ErrorIs(t, err, matclass.ErrIncompatibleEncoding)
}

func TestRun_CommonKeepsSourceKeys(t *testing.T) {
	_, face, _ := project(t)
	nested := filepath.Join(filepath.Dir(face), "Hero_Hair.json")
	require.NoError(t, os.WriteFile(nested, []byte(nestedMaterial), 0o600))

	_, err := runCmd(t, "common", "-set", "_OutlineWidth=0.04", face, nested)
	require.NoError(t, err)

	b, err := os.ReadFile(nested)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "m_Name", "name derived from the file is not written")

	m, err := matclass.DecodeFile(nested, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, m.Floats["_OutlineWidth"], 1e-9)
	assert.Equal(t, "Hero_Hair", m.Name)
}

func outlineConsistent(t *testing.T, out string) bool {
	t.Helper()
	var report struct {
		Properties []struct {
			Property   string `json:"property"`
			Consistent bool   `json:"consistent"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	for _, p := range report.Properties {
		if p.Property == "_OutlineWidth" {
			return p.Consistent
		}
	}
	t.Fatalf("_OutlineWidth not reported in %s", out)
	return false
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind matclass.PropertyKind
		raw  string
		want matclass.Value
	}{
		{matclass.KindFloat, "0.25", matclass.FloatValue(0.25)},
		{matclass.KindInt, "3", matclass.IntValue(3)},
		{matclass.KindBool, "true", matclass.BoolValue(true)},
		{matclass.KindColor, "1,0.5,0", matclass.ColorValue(matclass.Color{R: 1, G: 0.5, A: 1})},
		{matclass.KindVector, "1, 2", matclass.VectorValue(matclass.Vector{X: 1, Y: 2})},
		{matclass.KindTexture, "null", matclass.TextureValue(matclass.NullTexture())},
		{matclass.KindTexture, "Textures/a.png", matclass.TextureValue(matclass.PathTexture("Textures/a.png"))},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.kind, tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, bad := range []struct {
		kind matclass.PropertyKind
		raw  string
	}{
		{matclass.KindFloat, "wide"},
		{matclass.KindInt, "1.5"},
		{matclass.KindColor, "1"},
		{matclass.KindVector, "1,2,3,4,5"},
	} {
		_, err := parseValue(bad.kind, bad.raw)
		assert.Error(t, err, bad.raw)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "12.0 MiB", formatBytes(12*1024*1024))
}
