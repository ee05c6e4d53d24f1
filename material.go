package matclass

import (
	"fmt"
	"math"
	"sort"
)

// Encoding identifies the source encoding of a material description.
type Encoding string

const (
	// EncodingAuto requests encoding detection from top-level keys.
	EncodingAuto Encoding = ""
	// EncodingNested is the "saved properties" encoding (m_SavedProperties).
	EncodingNested Encoding = "nested"
	// EncodingFlat is the flat name-to-path encoding (textures/floats/colors).
	EncodingFlat Encoding = "flat"
)

// Material is the canonical, encoding-independent material representation.
// Property names are kept exactly as they appear in the source shader.
type Material struct {
	Floats       map[string]float64    `json:"floats,omitempty" yaml:"floats,omitempty"`     // Scalar float properties
	Ints         map[string]int64      `json:"ints,omitempty" yaml:"ints,omitempty"`         // Integer properties
	Colors       map[string]Color      `json:"colors,omitempty" yaml:"colors,omitempty"`     // Color properties
	Vectors      map[string]Vector     `json:"vectors,omitempty" yaml:"vectors,omitempty"`   // Vector properties
	Textures     map[string]TextureRef `json:"textures,omitempty" yaml:"textures,omitempty"` // Texture slots; absent key means absent slot
	Path         string                `json:"path,omitempty" yaml:"path,omitempty"`         // Source path
	Name         string                `json:"name,omitempty" yaml:"name,omitempty"`         // Display name
	Shader       string                `json:"shader,omitempty" yaml:"shader,omitempty"`     // Shader name, when the source carries one
	Encoding     Encoding              `json:"encoding,omitempty" yaml:"encoding,omitempty"` // Detected source encoding
	NameFromPath bool                  `json:"-" yaml:"-"`                                   // Name was derived from Path and is not written
}

// NewMaterial creates an empty material with initialized maps.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		Floats:   map[string]float64{},
		Ints:     map[string]int64{},
		Colors:   map[string]Color{},
		Vectors:  map[string]Vector{},
		Textures: map[string]TextureRef{},
	}
}

// Texture returns the slot content and whether the slot is present.
// A present slot may still hold a null reference.
func (m *Material) Texture(name string) (TextureRef, bool) {
	if m == nil {
		return TextureRef{}, false
	}
	t, ok := m.Textures[name]
	return t, ok
}

// HasProperty reports whether any property map contains name.
func (m *Material) HasProperty(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Floats[name]; ok {
		return true
	}
	if _, ok := m.Ints[name]; ok {
		return true
	}
	if _, ok := m.Colors[name]; ok {
		return true
	}
	if _, ok := m.Vectors[name]; ok {
		return true
	}
	_, ok := m.Textures[name]
	return ok
}

// PropertyNames returns the sorted union of all property names.
func (m *Material) PropertyNames() []string {
	if m == nil {
		return nil
	}

	set := m.propertySet()
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// propertySet returns the union of all property names.
func (m *Material) propertySet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Floats)+len(m.Ints)+len(m.Colors)+len(m.Vectors)+len(m.Textures))
	for k := range m.Floats {
		set[k] = struct{}{}
	}
	for k := range m.Ints {
		set[k] = struct{}{}
	}
	for k := range m.Colors {
		set[k] = struct{}{}
	}
	for k := range m.Vectors {
		set[k] = struct{}{}
	}
	for k := range m.Textures {
		set[k] = struct{}{}
	}
	return set
}

// Clone returns a deep copy of the material.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}

	out := *m
	out.Floats = cloneMap(m.Floats)
	out.Ints = cloneMap(m.Ints)
	out.Colors = cloneMap(m.Colors)
	out.Vectors = cloneMap(m.Vectors)
	out.Textures = make(map[string]TextureRef, len(m.Textures))
	for k, v := range m.Textures {
		if v.Scale != nil {
			s := *v.Scale
			v.Scale = &s
		}
		if v.Offset != nil {
			o := *v.Offset
			v.Offset = &o
		}
		out.Textures[k] = v
	}
	return &out
}

// ShaderName implements PropertyAccessor.
func (m *Material) ShaderName() string { return m.Shader }

// GetProperty implements PropertyAccessor. Toggles are read from floats;
// integers fall back to integral floats written by older exporters.
func (m *Material) GetProperty(name string, kind PropertyKind) (Value, bool) {
	switch kind {
	case KindFloat:
		if f, ok := m.Floats[name]; ok {
			return FloatValue(f), true
		}
		if i, ok := m.Ints[name]; ok {
			return FloatValue(float64(i)), true
		}
	case KindInt:
		if i, ok := m.Ints[name]; ok {
			return IntValue(i), true
		}
		if f, ok := m.Floats[name]; ok && f == math.Trunc(f) {
			return IntValue(int64(f)), true
		}
	case KindBool:
		if f, ok := m.Floats[name]; ok {
			return BoolValue(f != 0), true
		}
		if i, ok := m.Ints[name]; ok {
			return BoolValue(i != 0), true
		}
	case KindColor:
		if c, ok := m.Colors[name]; ok {
			return ColorValue(c), true
		}
	case KindVector:
		if v, ok := m.Vectors[name]; ok {
			return VectorValue(v), true
		}
	case KindTexture:
		if t, ok := m.Textures[name]; ok {
			return TextureValue(t), true
		}
	default:
		panic(fmt.Sprintf("matclass: unhandled property kind %v", kind))
	}

	return nil, false
}

// SetProperty implements PropertyAccessor. Integer and toggle writes go to the
// map that already holds the property, so legacy float-stored enums stay floats.
// A name is never left in two maps of the same encoding section.
func (m *Material) SetProperty(name string, v Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil value for %q", ErrValidation, name)
	}
	m.ensureMaps()

	switch tv := v.(type) {
	case FloatValue:
		delete(m.Ints, name)
		m.Floats[name] = float64(tv)
	case IntValue:
		if _, ok := m.Floats[name]; ok {
			m.Floats[name] = float64(tv)
		} else {
			m.Ints[name] = int64(tv)
		}
	case BoolValue:
		f := 0.0
		if tv {
			f = 1
		}
		if _, ok := m.Ints[name]; ok {
			m.Ints[name] = int64(f)
		} else {
			m.Floats[name] = f
		}
	case ColorValue:
		delete(m.Vectors, name)
		m.Colors[name] = Color(tv)
	case VectorValue:
		delete(m.Colors, name)
		m.Vectors[name] = Vector(tv)
	case TextureValue:
		m.Textures[name] = TextureRef(tv)
	default:
		panic(fmt.Sprintf("matclass: unhandled value type %T", v))
	}

	return nil
}

// RemoveProperty implements PropertyRemover by dropping name from every map.
func (m *Material) RemoveProperty(name string) error {
	delete(m.Floats, name)
	delete(m.Ints, name)
	delete(m.Colors, name)
	delete(m.Vectors, name)
	delete(m.Textures, name)
	return nil
}

// restoreProperty copies the entries of name from snap, dropping those snap lacks.
func (m *Material) restoreProperty(name string, snap *Material) {
	m.ensureMaps()
	restoreEntry(m.Floats, snap.Floats, name)
	restoreEntry(m.Ints, snap.Ints, name)
	restoreEntry(m.Colors, snap.Colors, name)
	restoreEntry(m.Vectors, snap.Vectors, name)
	restoreEntry(m.Textures, snap.Textures, name)
}

func restoreEntry[V any](dst, src map[string]V, name string) {
	if v, ok := src[name]; ok {
		dst[name] = v
		return
	}
	delete(dst, name)
}

// ensureMaps initializes nil property maps.
func (m *Material) ensureMaps() {
	if m.Floats == nil {
		m.Floats = map[string]float64{}
	}
	if m.Ints == nil {
		m.Ints = map[string]int64{}
	}
	if m.Colors == nil {
		m.Colors = map[string]Color{}
	}
	if m.Vectors == nil {
		m.Vectors = map[string]Vector{}
	}
	if m.Textures == nil {
		m.Textures = map[string]TextureRef{}
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
