package matclass

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findProperty(t *testing.T, res []PropertyConsistency, name string) PropertyConsistency {
	t.Helper()
	for _, pc := range res {
		if pc.Property == name {
			return pc
		}
	}
	require.Failf(t, "property not reported", "%s", name)
	return PropertyConsistency{}
}

func propertyNames(res []PropertyConsistency) []string {
	out := make([]string, 0, len(res))
	for _, pc := range res {
		out = append(out, pc.Property)
	}
	return out
}

func TestAnalyzeCommonSingleShader(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")
	b.Floats["_OutlineWidth"] = 0.05

	res := AnalyzeCommon(reg, []PropertyAccessor{a, b}, nil)
	assert.Equal(t, []string{"_MainTex", "_OutlineWidth", "_ShadowColor", "_BodyPart", "_Toggle"}, propertyNames(res))

	width := findProperty(t, res, "_OutlineWidth")
	assert.False(t, width.Consistent)
	assert.Equal(t, KindFloat, width.Kind)
	assert.Equal(t, []string{"Alpha"}, width.Shaders)
	assert.Equal(t, []Value{FloatValue(0.03), FloatValue(0.05)}, width.Values)
	assert.Equal(t, FloatValue(0.03), width.Representative)
	assert.Empty(t, width.Missing)

	assert.True(t, findProperty(t, res, "_ShadowColor").Consistent)
	assert.True(t, findProperty(t, res, "_BodyPart").Consistent)
	assert.False(t, findProperty(t, res, "_MainTex").Consistent, "different texture paths")
}

func TestAnalyzeCommonMissingIsInconsistent(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")

	toggle := findProperty(t, AnalyzeCommon(reg, []PropertyAccessor{a, b}, nil), "_Toggle")
	assert.False(t, toggle.Consistent, "absent everywhere still counts as inconsistent")
	assert.Equal(t, []int{0, 1}, toggle.Missing)
	assert.Equal(t, []Value{BoolValue(true), BoolValue(true)}, toggle.Values)

	a.Floats["_Toggle"] = 1
	toggle = findProperty(t, AnalyzeCommon(reg, []PropertyAccessor{a, b}, nil), "_Toggle")
	assert.False(t, toggle.Consistent, "equal value does not hide a missing one")
	assert.Equal(t, []int{1}, toggle.Missing)

	b.Floats["_Toggle"] = 1
	toggle = findProperty(t, AnalyzeCommon(reg, []PropertyAccessor{a, b}, nil), "_Toggle")
	assert.True(t, toggle.Consistent)
}

func TestAnalyzeCommonSeveralShaders(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := NewMaterial("b")
	b.Shader = "Beta"
	b.Ints["_BodyPart"] = 0
	b.Colors["_ShadowColor"] = a.Colors["_ShadowColor"]

	res := AnalyzeCommon(reg, []PropertyAccessor{a, b}, nil)
	assert.Equal(t, []string{"_OutlineWidth", "_ShadowColor", "_BodyPart"}, propertyNames(res))

	width := findProperty(t, res, "_OutlineWidth")
	assert.Equal(t, []string{"Alpha", "Beta"}, width.Shaders)
	assert.Equal(t, []int{1}, width.Missing)
	assert.Equal(t, []Value{FloatValue(0.03), FloatValue(0.02)}, width.Values, "missing uses the material's own shader default")
	assert.False(t, width.Consistent)

	assert.True(t, findProperty(t, res, "_ShadowColor").Consistent)
	assert.True(t, findProperty(t, res, "_BodyPart").Consistent)
}

func TestAnalyzeCommonKindConflict(t *testing.T) {
	reg := testRegistry(t)
	b := NewMaterial("b")
	b.Shader = "Beta"
	b.Floats["_Extra"] = 4
	g := NewMaterial("g")
	g.Shader = "Gamma"
	g.Floats["_Extra"] = 4
	g.Ints["_OutlineWidth"] = 1

	res := AnalyzeCommon(reg, []PropertyAccessor{b, g}, nil)
	assert.Equal(t, []string{"_Extra"}, propertyNames(res), "_OutlineWidth is declared with two kinds")
	assert.True(t, res[0].Consistent)
}

func TestAnalyzeCommonEpsilon(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")
	b.Floats["_OutlineWidth"] = 0.0300001

	mats := []PropertyAccessor{a, b}
	assert.True(t, findProperty(t, AnalyzeCommon(reg, mats, nil), "_OutlineWidth").Consistent)
	assert.False(t, findProperty(t, AnalyzeCommon(reg, mats, &CommonOptions{Epsilon: 1e-9}), "_OutlineWidth").Consistent)
}

func TestAnalyzeCommonEmpty(t *testing.T) {
	reg := testRegistry(t)
	assert.Empty(t, AnalyzeCommon(reg, nil, nil))

	m := NewMaterial("x")
	m.Shader = "Unknown"
	assert.Empty(t, AnalyzeCommon(reg, []PropertyAccessor{m}, nil))
}

func TestApplyCommon(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")
	b.Floats["_OutlineWidth"] = 0.05
	other := NewMaterial("other")
	other.Shader = "Unknown"
	mats := []PropertyAccessor{a, b, other}

	n, err := ApplyCommon(reg, mats, "_OutlineWidth", FloatValue(0.04))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, other.Floats, "_OutlineWidth")

	width := findProperty(t, AnalyzeCommon(reg, mats[:2], nil), "_OutlineWidth")
	assert.True(t, width.Consistent)
	assert.Equal(t, FloatValue(0.04), width.Representative)

	n, err = ApplyCommon(reg, mats, "_BodyPart", FloatValue(3))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(3), a.Ints["_BodyPart"], "integral floats are coerced for int properties")
}

func TestApplyCommonValidation(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := NewMaterial("b")
	b.Shader = "Beta"
	b.Floats["_OutlineWidth"] = 0.1
	g := NewMaterial("g")
	g.Shader = "Gamma"

	tests := []struct {
		name     string
		mats     []PropertyAccessor
		property string
		value    Value
		shader   string
	}{
		{"above one shader's max", []PropertyAccessor{a, b}, "_OutlineWidth", FloatValue(0.8), "Beta"},
		{"below min", []PropertyAccessor{a}, "_OutlineWidth", FloatValue(-1), "Alpha"},
		{"fractional for int declaration", []PropertyAccessor{a, g}, "_OutlineWidth", FloatValue(0.05), "Gamma"},
		{"float beyond int64", []PropertyAccessor{g}, "_OutlineWidth", FloatValue(1e30), "Gamma"},
		{"float below int64", []PropertyAccessor{g}, "_OutlineWidth", FloatValue(-1e30), "Gamma"},
		{"float at 2^63", []PropertyAccessor{g}, "_OutlineWidth", FloatValue(9223372036854775808), "Gamma"},
		{"wrong kind", []PropertyAccessor{a}, "_ShadowColor", FloatValue(1), "Alpha"},
		{"not an option", []PropertyAccessor{a}, "_BodyPart", IntValue(1), "Alpha"},
		{"nil value", []PropertyAccessor{a}, "_OutlineWidth", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ApplyCommon(reg, tt.mats, tt.property, tt.value)
			require.Error(t, err)
			assert.Zero(t, n)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.property, verr.Property)
			assert.Equal(t, tt.shader, verr.Shader)
		})
	}

	assert.Equal(t, 0.03, a.Floats["_OutlineWidth"], "nothing written on validation failure")
	assert.Equal(t, 0.1, b.Floats["_OutlineWidth"])
	assert.Equal(t, int64(0), a.Ints["_BodyPart"])
	assert.NotContains(t, g.Ints, "_OutlineWidth")
}

// failingAccessor rejects every write.
type failingAccessor struct {
	*Material
}

func (f failingAccessor) SetProperty(string, Value) error {
	return errors.New("locked")
}

func TestApplyCommonRollback(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")
	locked := failingAccessor{Material: toonMaterial("locked")}
	mats := []PropertyAccessor{a, b, locked}

	_, err := ApplyCommon(reg, mats, "_OutlineWidth", FloatValue(0.5))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "locked")
	assert.Equal(t, 0.03, a.Floats["_OutlineWidth"])
	assert.Equal(t, 0.03, b.Floats["_OutlineWidth"])

	_, err = ApplyCommon(reg, mats, "_Toggle", BoolValue(false))
	require.Error(t, err)
	assert.NotContains(t, a.Floats, "_Toggle", "absent property stays absent")
	assert.NotContains(t, b.Floats, "_Toggle")
}

func TestApplyCommonRollbackKeepsStorage(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	delete(a.Floats, "_OutlineWidth")
	a.Ints["_OutlineWidth"] = 1
	locked := failingAccessor{Material: toonMaterial("locked")}

	_, err := ApplyCommon(reg, []PropertyAccessor{a, locked}, "_OutlineWidth", FloatValue(0.5))
	require.Error(t, err)
	assert.Equal(t, map[string]int64{"_BodyPart": 0, "_OutlineWidth": 1}, a.Ints)
	assert.NotContains(t, a.Floats, "_OutlineWidth")
}

// wrappedAccessor hides *Material behind another accessor type.
type wrappedAccessor struct {
	*Material
}

// plainAccessor lacks RemoveProperty.
type plainAccessor struct {
	m *Material
}

func (p plainAccessor) ShaderName() string { return p.m.ShaderName() }
func (p plainAccessor) GetProperty(name string, kind PropertyKind) (Value, bool) {
	return p.m.GetProperty(name, kind)
}
func (p plainAccessor) SetProperty(name string, v Value) error { return p.m.SetProperty(name, v) }

func TestApplyCommonRollbackAccessors(t *testing.T) {
	reg := testRegistry(t)
	wrapped := wrappedAccessor{Material: toonMaterial("w")}
	plain := plainAccessor{m: toonMaterial("p")}
	locked := failingAccessor{Material: toonMaterial("locked")}

	_, err := ApplyCommon(reg, []PropertyAccessor{wrapped, plain, locked}, "_Toggle", BoolValue(false))
	require.Error(t, err)
	assert.NotContains(t, wrapped.Floats, "_Toggle", "removed through PropertyRemover")
	assert.Equal(t, 1.0, plain.m.Floats["_Toggle"], "declared default without PropertyRemover")

	_, err = ApplyCommon(reg, []PropertyAccessor{wrapped, locked}, "_OutlineWidth", FloatValue(0.5))
	require.Error(t, err)
	assert.Equal(t, 0.03, wrapped.Floats["_OutlineWidth"])
}

func TestAnalyzeCommonConsistentMatchesRepresentative(t *testing.T) {
	reg := testRegistry(t)
	a := toonMaterial("a")
	b := toonMaterial("b")
	b.Floats["_OutlineWidth"] = 0.05
	b.Textures["_MainTex"] = a.Textures["_MainTex"]
	c := NewMaterial("c")
	c.Shader = "Beta"
	c.Floats["_OutlineWidth"] = 0.03
	c.Ints["_BodyPart"] = 0
	c.Colors["_ShadowColor"] = a.Colors["_ShadowColor"]

	for _, mats := range [][]PropertyAccessor{{a, b}, {a, c}, {a, b, c}} {
		res := AnalyzeCommon(reg, mats, nil)
		require.NotEmpty(t, res)
		for _, pc := range res {
			if !pc.Consistent {
				continue
			}
			require.Len(t, pc.Values, len(mats))
			for i, m := range mats {
				v, ok := m.GetProperty(pc.Property, pc.Kind)
				require.True(t, ok, "consistent property %s present in material %d", pc.Property, i)
				assert.True(t, ValuesEqual(pc.Representative, v, DefaultEpsilon), "%s material %d", pc.Property, i)
			}
		}
	}
}
