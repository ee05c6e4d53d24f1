package matclass

import (
	"fmt"
	"strings"
)

// Variant is a sub-role within a shader family, encoded as an integer
// written into the family's discriminator property.
type Variant struct {
	Name   string   `json:"name" yaml:"name"`                         // Variant name
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"` // File name tokens; defaults to Name
	Value  int64    `json:"value" yaml:"value"`                       // Discriminator enum value
}

// ShaderFamily is a named group of shaders sharing a property signature and
// a discriminator encoding. Families are immutable once registered.
type ShaderFamily struct {
	Rules         TextureRules `json:"rules" yaml:"rules"`                                     // Texture import overrides
	ID            string       `json:"id" yaml:"id"`                                           // Stable identifier
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`                   // Display name
	Discriminator string       `json:"discriminator,omitempty" yaml:"discriminator,omitempty"` // Property selecting the variant
	Signature     []string     `json:"signature" yaml:"signature"`                             // Properties used for scoring
	Variants      []Variant    `json:"variants,omitempty" yaml:"variants,omitempty"`           // Ordered variants
	Textures      []string     `json:"textures,omitempty" yaml:"textures,omitempty"`           // Expected texture slots
}

// Variant looks up a variant by name.
func (f *ShaderFamily) Variant(name string) (Variant, bool) {
	if f == nil {
		return Variant{}, false
	}
	for _, v := range f.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// PropertyDecl is a property declared by a shader.
type PropertyDecl struct {
	Default Value        `json:"default,omitempty" yaml:"default,omitempty"` // Declared default
	Min     *float64     `json:"min,omitempty" yaml:"min,omitempty"`         // Lower bound for numeric kinds
	Max     *float64     `json:"max,omitempty" yaml:"max,omitempty"`         // Upper bound for numeric kinds
	Name    string       `json:"name" yaml:"name"`                           // Property name
	Options []int64      `json:"options,omitempty" yaml:"options,omitempty"` // Allowed values for enum-like ints
	Kind    PropertyKind `json:"kind" yaml:"kind"`                           // Declared kind
}

// ShaderDecl lists the properties a shader declares.
type ShaderDecl struct {
	Name       string         `json:"name" yaml:"name"`                         // Shader name
	Family     string         `json:"family,omitempty" yaml:"family,omitempty"` // Owning family ID, if any
	Properties []PropertyDecl `json:"properties" yaml:"properties"`             // Declared properties in order
}

// Property looks up a declared property.
func (s *ShaderDecl) Property(name string) (PropertyDecl, bool) {
	if s == nil {
		return PropertyDecl{}, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDecl{}, false
}

// RegistryDef is the input to NewRegistry.
type RegistryDef struct {
	Defaults SettingsOverlay // Overlay on DefaultTextureSettings applied to every family
	Families []ShaderFamily  // Families in registration order
	Shaders  []ShaderDecl    // Shader declarations
	Fallback []Variant       // Generic variant table; GenericVariants when empty
}

// Registry holds shader families and shader declarations. It is built once
// and passed explicitly to every engine call.
type Registry struct {
	byID     map[string]*ShaderFamily
	shaders  map[string]*ShaderDecl
	families []*ShaderFamily
	order    []string
	fallback []Variant
	defaults TextureSettings
}

// GenericVariants is the fallback table for unknown families.
func GenericVariants() []Variant {
	return []Variant{
		{Name: "base", Value: 0},
		{Name: "body", Value: 1},
		{Name: "face", Value: 2},
		{Name: "hair", Value: 3},
		{Name: "eye", Value: 4},
		{Name: "weapon", Value: 5},
	}
}

// NewRegistry validates def and builds an immutable Registry.
func NewRegistry(def RegistryDef) (*Registry, error) {
	r := &Registry{
		byID:     make(map[string]*ShaderFamily, len(def.Families)),
		shaders:  make(map[string]*ShaderDecl, len(def.Shaders)),
		defaults: def.Defaults.Apply(DefaultTextureSettings()),
	}

	if err := def.Defaults.validate(); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", ErrRegistry, err)
	}

	for i := range def.Families {
		f, err := copyFamily(def.Families[i])
		if err != nil {
			return nil, err
		}
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate family %q", ErrRegistry, f.ID)
		}
		r.byID[f.ID] = f
		r.families = append(r.families, f)
	}

	for i := range def.Shaders {
		s, err := copyShader(def.Shaders[i])
		if err != nil {
			return nil, err
		}
		if _, dup := r.shaders[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate shader %q", ErrRegistry, s.Name)
		}
		if s.Family != "" {
			if _, ok := r.byID[s.Family]; !ok {
				return nil, fmt.Errorf("%w: shader %q references family %q", ErrUnknownFamily, s.Name, s.Family)
			}
		}
		r.shaders[s.Name] = s
		r.order = append(r.order, s.Name)
	}

	r.fallback = def.Fallback
	if len(r.fallback) == 0 {
		r.fallback = GenericVariants()
	}
	if err := validateVariants("fallback", r.fallback); err != nil {
		return nil, err
	}
	r.fallback = append([]Variant(nil), r.fallback...)

	return r, nil
}

// Families returns families in registration order. Returned families must not be modified.
func (r *Registry) Families() []*ShaderFamily {
	if r == nil {
		return nil
	}
	return append([]*ShaderFamily(nil), r.families...)
}

// Family looks up a family by ID.
func (r *Registry) Family(id string) (*ShaderFamily, error) {
	if r != nil {
		if f, ok := r.byID[id]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, id)
}

// Shader looks up a shader declaration by name.
func (r *Registry) Shader(name string) (*ShaderDecl, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.shaders[name]
	return s, ok
}

// Shaders returns shader declarations in registration order.
func (r *Registry) Shaders() []*ShaderDecl {
	if r == nil {
		return nil
	}
	out := make([]*ShaderDecl, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.shaders[name])
	}
	return out
}

// FamilyForShader returns the family a declared shader belongs to.
func (r *Registry) FamilyForShader(name string) (*ShaderFamily, bool) {
	s, ok := r.Shader(name)
	if !ok || s.Family == "" {
		return nil, false
	}
	f, ok := r.byID[s.Family]
	return f, ok
}

// FallbackVariants returns the generic variant table.
func (r *Registry) FallbackVariants() []Variant {
	if r == nil {
		return GenericVariants()
	}
	return append([]Variant(nil), r.fallback...)
}

// Defaults returns the baseline texture settings before family overrides.
func (r *Registry) Defaults() TextureSettings {
	if r == nil {
		return DefaultTextureSettings()
	}
	return r.defaults
}

// copyFamily validates and deep-copies a family.
func copyFamily(f ShaderFamily) (*ShaderFamily, error) {
	f.ID = strings.TrimSpace(f.ID)
	if f.ID == "" {
		return nil, fmt.Errorf("%w: family without id", ErrRegistry)
	}
	if len(f.Signature) == 0 {
		return nil, fmt.Errorf("%w: family %q has empty signature", ErrRegistry, f.ID)
	}
	if len(f.Variants) > 0 && f.Discriminator == "" {
		return nil, fmt.Errorf("%w: family %q declares variants without discriminator", ErrRegistry, f.ID)
	}
	if err := validateVariants(f.ID, f.Variants); err != nil {
		return nil, err
	}
	if err := f.Rules.Overlay.validate(); err != nil {
		return nil, fmt.Errorf("%w: family %q rules: %w", ErrRegistry, f.ID, err)
	}
	for slot, o := range f.Rules.Slots {
		if err := o.validate(); err != nil {
			return nil, fmt.Errorf("%w: family %q slot %q rules: %w", ErrRegistry, f.ID, slot, err)
		}
	}

	out := f
	out.Signature = dedupe(f.Signature)
	out.Textures = dedupe(f.Textures)
	out.Variants = make([]Variant, len(f.Variants))
	for i, v := range f.Variants {
		v.Tokens = append([]string(nil), v.Tokens...)
		out.Variants[i] = v
	}
	out.Rules = f.Rules.clone()
	return &out, nil
}

// validateVariants checks names and values are unique within one table.
func validateVariants(owner string, vs []Variant) error {
	names := make(map[string]struct{}, len(vs))
	values := make(map[int64]string, len(vs))
	for _, v := range vs {
		if v.Name == "" {
			return fmt.Errorf("%w: %s: variant without name", ErrRegistry, owner)
		}
		if _, dup := names[v.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate variant %q", ErrRegistry, owner, v.Name)
		}
		if prev, dup := values[v.Value]; dup {
			return fmt.Errorf("%w: %s: variants %q and %q share value %d", ErrRegistry, owner, prev, v.Name, v.Value)
		}
		names[v.Name] = struct{}{}
		values[v.Value] = v.Name
	}
	return nil
}

// copyShader validates and deep-copies a shader declaration.
func copyShader(s ShaderDecl) (*ShaderDecl, error) {
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("%w: shader without name", ErrRegistry)
	}

	out := s
	out.Properties = make([]PropertyDecl, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.Properties))
	for _, p := range s.Properties {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: shader %q: property without name", ErrRegistry, s.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: shader %q: duplicate property %q", ErrRegistry, s.Name, p.Name)
		}
		seen[p.Name] = struct{}{}

		if !p.Kind.Valid() {
			return nil, fmt.Errorf("%w: shader %q: property %q has unknown kind %v", ErrRegistry, s.Name, p.Name, p.Kind)
		}
		if p.Default == nil {
			p.Default = ZeroValue(p.Kind)
		}
		if p.Default.Kind() != p.Kind {
			return nil, fmt.Errorf("%w: shader %q: property %q default is %v, declared %v", ErrRegistry, s.Name, p.Name, p.Default.Kind(), p.Kind)
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return nil, fmt.Errorf("%w: shader %q: property %q has min > max", ErrRegistry, s.Name, p.Name)
		}
		p.Options = append([]int64(nil), p.Options...)
		out.Properties = append(out.Properties, p)
	}
	return &out, nil
}

// dedupe returns a copy of in without duplicates, keeping first occurrences.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
