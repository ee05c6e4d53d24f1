package matclass

import (
	"fmt"
	"math"
	"slices"
)

// PropertyAccessor reads and writes material properties by name and kind.
// *Material implements it; hosts can wrap their own asset types.
type PropertyAccessor interface {
	ShaderName() string
	GetProperty(name string, kind PropertyKind) (Value, bool)
	SetProperty(name string, v Value) error
}

// PropertyRemover is an optional PropertyAccessor capability. ApplyCommon uses
// it to undo a write to a material that did not hold the property before.
type PropertyRemover interface {
	RemoveProperty(name string) error
}

// PropertyConsistency reports whether a set of materials agrees on one shared property.
// It is computed fresh on every AnalyzeCommon call and never patched.
type PropertyConsistency struct {
	Representative Value        `json:"representative" yaml:"representative"`       // First material's value
	Property       string       `json:"property" yaml:"property"`                   // Property name
	Values         []Value      `json:"values" yaml:"values"`                       // Per-material values, defaults for missing ones
	Missing        []int        `json:"missing,omitempty" yaml:"missing,omitempty"` // Indices of materials lacking the property
	Shaders        []string     `json:"shaders" yaml:"shaders"`                     // Shaders declaring the property
	Kind           PropertyKind `json:"kind" yaml:"kind"`                           // Declared kind
	Consistent     bool         `json:"consistent" yaml:"consistent"`               // All present and equal
}

// commonDecl tracks a property across declared shaders.
type commonDecl struct {
	decl     PropertyDecl
	shaders  []string
	conflict bool
}

// AnalyzeCommon finds the properties shared by the shaders of mats and checks
// whether every material agrees on their values.
//
// With two or more distinct declared shaders, a property is common when it
// appears in more than one shader's declared list; with a single shader, its
// whole declared list is common. Properties declared with different kinds are
// skipped. A material lacking a property contributes the declared default and
// makes the property inconsistent regardless of value equality.
func AnalyzeCommon(reg *Registry, mats []PropertyAccessor, opt *CommonOptions) []PropertyConsistency {
	copt := opt.normalize()
	if len(mats) == 0 {
		return []PropertyConsistency{}
	}

	decls := distinctShaders(reg, mats)
	if len(decls) == 0 {
		return []PropertyConsistency{}
	}

	var order []string
	props := make(map[string]*commonDecl)
	for _, s := range decls {
		for _, p := range s.Properties {
			cd, ok := props[p.Name]
			if !ok {
				cd = &commonDecl{decl: p}
				props[p.Name] = cd
				order = append(order, p.Name)
			} else if cd.decl.Kind != p.Kind {
				cd.conflict = true
			}
			cd.shaders = append(cd.shaders, s.Name)
		}
	}

	need := 2
	if len(decls) == 1 {
		need = 1
	}

	out := make([]PropertyConsistency, 0, len(order))
	for _, name := range order {
		cd := props[name]
		if cd.conflict || len(cd.shaders) < need {
			continue
		}
		out = append(out, checkConsistency(reg, mats, cd, copt.Epsilon))
	}
	return out
}

// checkConsistency reads one common property from every material.
func checkConsistency(reg *Registry, mats []PropertyAccessor, cd *commonDecl, eps float64) PropertyConsistency {
	pc := PropertyConsistency{
		Property: cd.decl.Name,
		Kind:     cd.decl.Kind,
		Shaders:  slices.Clone(cd.shaders),
		Values:   make([]Value, 0, len(mats)),
	}

	for i, m := range mats {
		v, ok := m.GetProperty(cd.decl.Name, cd.decl.Kind)
		if !ok {
			pc.Missing = append(pc.Missing, i)
			v = declaredDefault(reg, m.ShaderName(), cd.decl)
		}
		pc.Values = append(pc.Values, v)
	}

	pc.Representative = pc.Values[0]
	pc.Consistent = len(pc.Missing) == 0
	for _, v := range pc.Values[1:] {
		if !pc.Consistent {
			break
		}
		pc.Consistent = ValuesEqual(pc.Representative, v, eps)
	}
	return pc
}

// declaredDefault prefers the material's own shader default over the first declaration.
func declaredDefault(reg *Registry, shader string, fallback PropertyDecl) Value {
	if s, ok := reg.Shader(shader); ok {
		if p, ok := s.Property(fallback.Name); ok && p.Kind == fallback.Kind {
			return p.Default
		}
	}
	return fallback.Default
}

// distinctShaders returns declared shaders referenced by mats in first-seen order.
func distinctShaders(reg *Registry, mats []PropertyAccessor) []*ShaderDecl {
	var out []*ShaderDecl
	seen := make(map[string]struct{})
	for _, m := range mats {
		name := m.ShaderName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if s, ok := reg.Shader(name); ok {
			out = append(out, s)
		}
	}
	return out
}

// ApplyCommon writes value to every material whose shader declares property and
// returns the number of materials written. The value is validated against every
// eligible declaration before any write; on validation failure nothing is
// written and a *ValidationError is returned. If the accessor fails mid-way,
// materials already written are restored: *Material entries exactly, other
// accessors through SetProperty or, for a previously absent property,
// PropertyRemover. Accessors without it get the declared default back.
func ApplyCommon(reg *Registry, mats []PropertyAccessor, property string, value Value) (int, error) {
	if value == nil {
		return 0, &ValidationError{Property: property, Reason: "nil value"}
	}

	type target struct {
		m    PropertyAccessor
		decl PropertyDecl
		val  Value
	}

	targets := make([]target, 0, len(mats))
	for _, m := range mats {
		s, ok := reg.Shader(m.ShaderName())
		if !ok {
			continue
		}
		decl, ok := s.Property(property)
		if !ok {
			continue
		}
		v, err := coerceValue(decl, value)
		if err != nil {
			return 0, &ValidationError{Property: property, Shader: s.Name, Reason: err.Error()}
		}
		targets = append(targets, target{m: m, decl: decl, val: v})
	}

	type previous struct {
		val  Value
		snap *Material
		had  bool
	}
	prev := make([]previous, len(targets))
	for i, t := range targets {
		if mat, ok := t.m.(*Material); ok {
			prev[i].snap = mat.Clone()
			continue
		}
		v, ok := t.m.GetProperty(property, t.decl.Kind)
		prev[i] = previous{val: v, had: ok}
	}

	for i, t := range targets {
		if err := t.m.SetProperty(property, t.val); err != nil {
			for j := i - 1; j >= 0; j-- {
				p, m := prev[j], targets[j].m
				switch {
				case p.snap != nil:
					m.(*Material).restoreProperty(property, p.snap)
				case p.had:
					_ = m.SetProperty(property, p.val)
				default:
					if rm, ok := m.(PropertyRemover); ok {
						_ = rm.RemoveProperty(property)
					} else {
						_ = m.SetProperty(property, targets[j].decl.Default)
					}
				}
			}
			return 0, fmt.Errorf("apply %q: material %d: %w", property, i, err)
		}
	}

	return len(targets), nil
}

// coerceValue checks v against decl's kind and domain. Integers are accepted for
// float properties and integral floats for int properties.
func coerceValue(decl PropertyDecl, v Value) (Value, error) {
	switch decl.Kind {
	case KindFloat:
		var f float64
		switch tv := v.(type) {
		case FloatValue:
			f = float64(tv)
		case IntValue:
			f = float64(tv)
		default:
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		if !isFinite(f) {
			return nil, fmt.Errorf("value %v is not finite", f)
		}
		if err := checkRange(decl, f); err != nil {
			return nil, err
		}
		return FloatValue(f), nil

	case KindInt:
		var i int64
		switch tv := v.(type) {
		case IntValue:
			i = int64(tv)
		case FloatValue:
			f := float64(tv)
			if f != math.Trunc(f) || !isFinite(f) {
				return nil, fmt.Errorf("value %v is not an integer", f)
			}
			// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, fmt.Errorf("value %v overflows int64", f)
			}
			i = int64(tv)
		default:
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		if err := checkRange(decl, float64(i)); err != nil {
			return nil, err
		}
		if len(decl.Options) > 0 && !slices.Contains(decl.Options, i) {
			return nil, fmt.Errorf("value %d is not one of %v", i, decl.Options)
		}
		return IntValue(i), nil

	case KindBool:
		if _, ok := v.(BoolValue); !ok {
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		return v, nil

	case KindColor:
		c, ok := v.(ColorValue)
		if !ok {
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		if !Color(c).IsFinite() {
			return nil, fmt.Errorf("color %v is not finite", c)
		}
		return v, nil

	case KindVector:
		vec, ok := v.(VectorValue)
		if !ok {
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		for _, f := range Vector(vec).ToArray() {
			if !isFinite(f) {
				return nil, fmt.Errorf("vector %v is not finite", vec)
			}
		}
		return v, nil

	case KindTexture:
		t, ok := v.(TextureValue)
		if !ok {
			return nil, fmt.Errorf("expected %v, got %v", decl.Kind, v.Kind())
		}
		switch TextureRef(t).Type {
		case TextureKindNull, TextureKindPath, TextureKindObject:
			return v, nil
		default:
			return nil, fmt.Errorf("unknown texture kind %q", TextureRef(t).Type)
		}

	default:
		panic(fmt.Sprintf("matclass: unhandled property kind %v", decl.Kind))
	}
}

// checkRange checks f against the declared bounds.
func checkRange(decl PropertyDecl, f float64) error {
	if decl.Min != nil && f < *decl.Min {
		return fmt.Errorf("value %v below minimum %v", f, *decl.Min)
	}
	if decl.Max != nil && f > *decl.Max {
		return fmt.Errorf("value %v above maximum %v", f, *decl.Max)
	}
	return nil
}
