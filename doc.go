/*
Package matclass classifies serialized material descriptions into shader
families and variants, derives the textures they are expected to carry, and
checks texture import configuration against family-specific targets.

Two source encodings are accepted: the nested "saved properties" encoding
(m_SavedProperties with m_Floats, m_Ints, m_Colors and m_TexEnvs) and the
flat encoding (textures, floats, colors). Both are adapted into the same
Material value. The Registry holding shader families and shader declarations
is built once and passed to every call; see the hclregistry package for the
file format and a built-in registry.

Reader example:

	m, err := matclass.DecodeFile("hero_face.json", nil)
	if err != nil {
		// errors.Is(err, matclass.ErrMalformedStructure)
	}

Classifier example:

	c := matclass.Classify(reg, m, nil)
	if c.Known() {
		_ = c.Variant
		_ = *c.DiscriminatorValue
	}

Texture example:

	a := matclass.AnalyzeTexture(reg, store, "Assets/hero_face.png", c.Family, &matclass.TextureOptions{Slot: "_MainTex"})
	if a.Valid && a.Priority > 0 {
		// a.Recommendations, a.EstimatedSavings
	}

Batch example:

	res, err := matclass.BatchOptimize(ctx, reg, store, paths, c.Family, nil)
	if err != nil {
		// canceled; res holds the items processed so far
	}

Consistency example:

	props := matclass.AnalyzeCommon(reg, []matclass.PropertyAccessor{a, b}, nil)
	n, err := matclass.ApplyCommon(reg, []matclass.PropertyAccessor{a, b}, "_OutlineWidth", matclass.FloatValue(0.04))

Writer example:

	out, err := matclass.Format(m, &matclass.FormatOptions{Encoding: matclass.EncodingFlat})
*/
package matclass
