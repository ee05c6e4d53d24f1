package matclass

import (
	"path/filepath"
	"strings"
)

// VariantSource tells how a variant was resolved.
type VariantSource string

const (
	// VariantFromFileName means a file name token matched.
	VariantFromFileName VariantSource = "filename"
	// VariantFromProperty means the material's discriminator value matched a declared variant.
	VariantFromProperty VariantSource = "property"
	// VariantFallback means the first declared variant was used.
	VariantFallback VariantSource = "fallback"
)

// VariantResolution is the result of ResolveVariant.
type VariantResolution struct {
	Variant       string        `json:"variant" yaml:"variant"`                                 // Variant name
	Source        VariantSource `json:"source" yaml:"source"`                                   // Resolution source
	Value         int64         `json:"value" yaml:"value"`                                     // Discriminator value
	LowConfidence bool          `json:"lowConfidence,omitempty" yaml:"lowConfidence,omitempty"` // Fallback was used
	Generic       bool          `json:"generic,omitempty" yaml:"generic,omitempty"`             // Generic table was used
}

// ResolveVariant determines the structural variant of m within family.
//
// Precedence: a recognized token in the file name (case-insensitive substring,
// first declared variant wins), then the material's current discriminator
// value when it names a declared variant, then the first declared variant
// flagged as low confidence. A nil family, or one without variants, resolves
// against the registry's generic table.
func ResolveVariant(reg *Registry, family *ShaderFamily, m *Material, fileNameHint string) VariantResolution {
	table := reg.FallbackVariants()
	generic := true
	if family != nil && len(family.Variants) > 0 {
		table = family.Variants
		generic = false
	}
	if len(table) == 0 {
		return VariantResolution{Source: VariantFallback, LowConfidence: true, Generic: generic}
	}

	if stem := fileStem(fileNameHint); stem != "" {
		for _, v := range table {
			if matchesToken(stem, v) {
				return VariantResolution{Variant: v.Name, Value: v.Value, Source: VariantFromFileName, Generic: generic}
			}
		}
	}

	if !generic && m != nil {
		if cur, ok := m.GetProperty(family.Discriminator, KindInt); ok {
			for _, v := range table {
				if v.Value == int64(cur.(IntValue)) {
					return VariantResolution{Variant: v.Name, Value: v.Value, Source: VariantFromProperty}
				}
			}
		}
	}

	first := table[0]
	return VariantResolution{
		Variant:       first.Name,
		Value:         first.Value,
		Source:        VariantFallback,
		LowConfidence: true,
		Generic:       generic,
	}
}

// matchesToken reports whether stem contains any of the variant tokens.
func matchesToken(stem string, v Variant) bool {
	tokens := v.Tokens
	if len(tokens) == 0 {
		tokens = []string{v.Name}
	}
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && strings.Contains(stem, t) {
			return true
		}
	}
	return false
}

// fileStem returns the lowercase base name of hint without extension.
func fileStem(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}
	base := filepath.Base(normalizeOSPath(hint))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}
