package matclass

// FamilyScore is the signature coverage of one family.
type FamilyScore struct {
	Family   string  `json:"family" yaml:"family"`     // Family ID
	Coverage float64 `json:"coverage" yaml:"coverage"` // Fraction of signature properties present
	Present  int     `json:"present" yaml:"present"`   // Signature properties present
	Total    int     `json:"total" yaml:"total"`       // Signature size
}

// Classification is the result of Classify.
// Variant is empty whenever Family is nil, and DiscriminatorValue is set whenever Variant is set.
type Classification struct {
	Family             *ShaderFamily `json:"-" yaml:"-"`                                                       // Matched family, nil when unknown
	DiscriminatorValue *int64        `json:"discriminatorValue,omitempty" yaml:"discriminatorValue,omitempty"` // Encoded variant value
	FamilyID           string        `json:"family,omitempty" yaml:"family,omitempty"`                         // Matched family ID
	Variant            string        `json:"variant,omitempty" yaml:"variant,omitempty"`                       // Resolved variant
	VariantSource      VariantSource `json:"variantSource,omitempty" yaml:"variantSource,omitempty"`           // How the variant was chosen
	Scores             []FamilyScore `json:"scores,omitempty" yaml:"scores,omitempty"`                         // Per-family coverage in registry order
	Confidence         float64       `json:"confidence" yaml:"confidence"`                                     // Best coverage
	LowConfidence      bool          `json:"lowConfidence,omitempty" yaml:"lowConfidence,omitempty"`           // Variant came from fallback
	Ambiguous          bool          `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`                   // Another family tied the winner
}

// Known reports whether a family matched.
func (c Classification) Known() bool { return c.Family != nil }

// Classify scores m against every registered family by the fraction of the
// family signature present among the material's property names. The highest
// fraction at or above the threshold wins; equal fractions resolve to the
// family registered first. Below the threshold the family is unknown.
func Classify(reg *Registry, m *Material, opt *ClassifyOptions) Classification {
	copt := opt.normalize()

	var props map[string]struct{}
	if m != nil {
		props = m.propertySet()
	}

	var (
		out       Classification
		best      *ShaderFamily
		bestScore = -1.0
	)
	for _, f := range reg.Families() {
		present := 0
		for _, name := range f.Signature {
			if _, ok := props[name]; ok {
				present++
			}
		}
		score := float64(present) / float64(len(f.Signature))
		out.Scores = append(out.Scores, FamilyScore{
			Family:   f.ID,
			Coverage: score,
			Present:  present,
			Total:    len(f.Signature),
		})

		if score > bestScore {
			best, bestScore = f, score
		}
	}

	if best == nil {
		return out
	}

	out.Confidence = bestScore
	if bestScore < copt.Threshold {
		return out
	}

	for _, s := range out.Scores {
		if s.Family != best.ID && s.Coverage == bestScore {
			out.Ambiguous = true
			break
		}
	}

	out.Family = best
	out.FamilyID = best.ID

	hint := copt.FileNameHint
	if hint == "" && m != nil {
		hint = m.Path
		if hint == "" {
			hint = m.Name
		}
	}

	res := ResolveVariant(reg, best, m, hint)
	value := res.Value
	out.Variant = res.Variant
	out.DiscriminatorValue = &value
	out.VariantSource = res.Source
	out.LowConfidence = res.LowConfidence
	return out
}
