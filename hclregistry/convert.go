package hclregistry

import (
	"fmt"
	"strings"

	"github.com/woozymasta/matclass"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	colorKeys  = []string{"r", "g", "b", "a"}
	vectorKeys = []string{"x", "y", "z", "w"}
)

// decodeDefault converts an HCL default to a value of the declared kind.
// An absent or null default yields nil; NewRegistry substitutes the zero value.
func decodeDefault(kind matclass.PropertyKind, v *cty.Value) (matclass.Value, error) {
	if v == nil || v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("default must be a known value")
	}

	switch kind {
	case matclass.KindFloat:
		f, err := ctyFloat(*v)
		if err != nil {
			return nil, err
		}
		return matclass.FloatValue(f), nil

	case matclass.KindInt:
		n, err := convert.Convert(*v, cty.Number)
		if err != nil {
			return nil, err
		}
		var i int64
		if err := gocty.FromCtyValue(n, &i); err != nil {
			return nil, fmt.Errorf("int default: %w", err)
		}
		return matclass.IntValue(i), nil

	case matclass.KindBool:
		if v.Type() == cty.Number {
			f, err := ctyFloat(*v)
			if err != nil {
				return nil, err
			}
			return matclass.BoolValue(f != 0), nil
		}
		b, err := convert.Convert(*v, cty.Bool)
		if err != nil {
			return nil, err
		}
		var out bool
		if err := gocty.FromCtyValue(b, &out); err != nil {
			return nil, err
		}
		return matclass.BoolValue(out), nil

	case matclass.KindColor:
		vals, err := ctyComponents(*v, colorKeys)
		if err != nil {
			return nil, err
		}
		switch len(vals) {
		case 3:
			return matclass.ColorValue(matclass.Color{R: vals[0], G: vals[1], B: vals[2], A: 1}), nil
		case 4:
			return matclass.ColorValue(matclass.Color{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}), nil
		}
		return nil, fmt.Errorf("color default needs 3 or 4 components, got %d", len(vals))

	case matclass.KindVector:
		vals, err := ctyComponents(*v, vectorKeys)
		if err != nil {
			return nil, err
		}
		if len(vals) < 2 || len(vals) > 4 {
			return nil, fmt.Errorf("vector default needs 2 to 4 components, got %d", len(vals))
		}
		padded := make([]float64, 4)
		copy(padded, vals)
		return matclass.VectorValue(matclass.Vector{X: padded[0], Y: padded[1], Z: padded[2], W: padded[3]}), nil

	case matclass.KindTexture:
		s, err := convert.Convert(*v, cty.String)
		if err != nil {
			return nil, err
		}
		return matclass.TextureValue(matclass.PathTexture(s.AsString())), nil
	}

	return nil, fmt.Errorf("unsupported kind %v", kind)
}

func ctyFloat(v cty.Value) (float64, error) {
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := gocty.FromCtyValue(n, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// ctyComponents reads a numeric tuple or an object keyed by component name.
// Object keys must form a prefix of keys.
func ctyComponents(v cty.Value, keys []string) ([]float64, error) {
	ty := v.Type()
	if ty.IsObjectType() || ty.IsMapType() {
		m, err := convert.Convert(v, cty.Map(cty.Number))
		if err != nil {
			return nil, err
		}
		var byKey map[string]float64
		if err := gocty.FromCtyValue(m, &byKey); err != nil {
			return nil, err
		}
		out := make([]float64, 0, len(keys))
		for _, k := range keys {
			f, ok := byKey[k]
			if !ok {
				break
			}
			out = append(out, f)
		}
		if len(out) != len(byKey) {
			return nil, fmt.Errorf("components must be a prefix of %s", strings.Join(keys, ", "))
		}
		return out, nil
	}

	l, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, err
	}
	var out []float64
	if err := gocty.FromCtyValue(l, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// overlayFromBlock converts a rules block into a settings overlay.
func overlayFromBlock(compression *string, maxSize *int, mipmaps, srgb *bool) matclass.SettingsOverlay {
	var o matclass.SettingsOverlay
	if compression != nil {
		c := matclass.Compression(strings.ToLower(strings.TrimSpace(*compression)))
		o.Compression = &c
	}
	o.MaxSize = maxSize
	o.Mipmaps = mipmaps
	o.SRGB = srgb
	return o
}

// mergeOverlay returns base with the fields set in top replaced.
func mergeOverlay(base, top matclass.SettingsOverlay) matclass.SettingsOverlay {
	if top.Compression != nil {
		base.Compression = top.Compression
	}
	if top.MaxSize != nil {
		base.MaxSize = top.MaxSize
	}
	if top.Mipmaps != nil {
		base.Mipmaps = top.Mipmaps
	}
	if top.SRGB != nil {
		base.SRGB = top.SRGB
	}
	return base
}
