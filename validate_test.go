package matclass

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCodes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

func TestValidateKnownFamily(t *testing.T) {
	reg := testRegistry(t)
	m := toonMaterial("char_face_01")

	issues := Validate(reg, m, nil)
	require.Len(t, issues, 2)

	assert.Equal(t, Issue{Level: IssueWarning, Code: CodeMissingTexture, Message: "expected texture slot missing", Path: "_LightMap"}, issues[0])
	assert.Equal(t, CodeVariantMismatch, issues[1].Code)
	assert.Equal(t, "_BodyPart", issues[1].Path)
	assert.Contains(t, issues[1].Message, "face (2)")
}

func TestValidateTemplateSlot(t *testing.T) {
	reg := testRegistry(t)
	m := toonMaterial("char_face_01")
	m.Ints["_BodyPart"] = 2
	m.Textures["_LightMap"] = NullTexture()

	issues := Validate(reg, m, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueInfo, issues[0].Level)
	assert.Equal(t, CodeTemplateSlot, issues[0].Code)

	assert.Empty(t, Validate(reg, m, &ValidateOptions{DisableSlotCheck: true}))
}

func TestValidateUnknownFamily(t *testing.T) {
	reg := testRegistry(t)
	m := NewMaterial("misc")
	m.Path = "Materials/misc.json"
	m.Floats["_Cutoff"] = 0.5

	issues := Validate(reg, m, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Level: IssueWarning, Code: CodeUnknownFamily, Message: "material matches no known shader family", Path: "Materials/misc.json"}, issues[0])
}

func TestValidateReusesClassification(t *testing.T) {
	reg := testRegistry(t)
	m := toonMaterial("char_face_01")
	cls := Classify(reg, m, &ClassifyOptions{FileNameHint: "base"})

	issues := Validate(reg, m, &ValidateOptions{Classification: &cls, DisableSlotCheck: true})
	assert.Empty(t, issues, "base matches _BodyPart 0")
}

func TestValidateColorsAndPaths(t *testing.T) {
	reg := testRegistry(t)
	m := NewMaterial("misc")
	m.Colors["_Bad"] = Color{R: math.NaN(), A: 1}
	m.Textures["_A"] = PathTexture("../outside/tex.png")
	m.Textures["_B"] = PathTexture("Textures/readme.txt")

	codes := issueCodes(Validate(reg, m, nil))
	assert.Equal(t, []string{CodeUnknownFamily, CodeColor, CodeParentPath, CodeExtension}, codes)

	codes = issueCodes(Validate(reg, m, &ValidateOptions{DisableExtensionsCheck: true}))
	assert.NotContains(t, codes, CodeExtension)
}

func TestValidateFileCheck(t *testing.T) {
	reg := testRegistry(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Textures", "here.png"), []byte("x"), 0o600))

	m := NewMaterial("misc")
	m.Textures["_Here"] = PathTexture("Textures/here.png")
	m.Textures["_Gone"] = PathTexture("Textures/gone.png")
	m.Textures["_Vendor"] = PathTexture("Vendor/pack/tex.png")

	issues := Validate(reg, m, &ValidateOptions{ProjectRoot: root, ExcludePaths: []string{"vendor/*"}})
	var missing []string
	for _, is := range issues {
		if is.Code == CodeMissingResource {
			missing = append(missing, is.Path)
		}
	}
	assert.Equal(t, []string{filepath.Join(root, "Textures", "gone.png")}, missing)
}

func TestValidateNil(t *testing.T) {
	assert.Empty(t, Validate(testRegistry(t), nil, nil))
}

func TestIsProjectRootExist(t *testing.T) {
	var nilOpt *ValidateOptions
	assert.False(t, nilOpt.IsProjectRootExist())
	assert.False(t, (&ValidateOptions{ProjectRoot: " "}).IsProjectRootExist())
	assert.True(t, (&ValidateOptions{ProjectRoot: t.TempDir()}).IsProjectRootExist())
}
