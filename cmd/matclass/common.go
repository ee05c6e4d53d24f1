package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/woozymasta/matclass"
)

// commonReport is the consistency of shared properties across materials.
type commonReport struct {
	Materials  []string                       `json:"materials" yaml:"materials"`
	Applied    map[string]int                 `json:"applied,omitempty" yaml:"applied,omitempty"`
	Properties []matclass.PropertyConsistency `json:"properties" yaml:"properties"`
}

func runCommon(ctx context.Context, outW, errW io.Writer, args []string) error {
	var g globalFlags
	var sets stringList
	fs := newFlagSet("common", "MATERIAL...", outW, &g)
	fs.Var(&sets, "set", "Assign NAME=VALUE to every material declaring NAME (repeatable).")
	dryRun := fs.Bool("dry-run", false, "Validate and report assignments without writing material files.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	cfg, err := g.resolve()
	if err != nil {
		return err
	}
	s, err := newSession(ctx, outW, errW, cfg)
	if err != nil {
		return err
	}
	mats, err := s.loadMaterials(fs.Args())
	if err != nil {
		return err
	}

	accessors := make([]matclass.PropertyAccessor, len(mats))
	report := commonReport{Materials: make([]string, len(mats))}
	for i, m := range mats {
		accessors[i] = m
		report.Materials[i] = m.Path
	}

	if len(sets) > 0 {
		report.Applied = make(map[string]int, len(sets))
		for _, assignment := range sets {
			name, raw, ok := strings.Cut(assignment, "=")
			if !ok || name == "" {
				return &ExitError{Code: 2, Message: fmt.Sprintf("invalid -set %q, want NAME=VALUE", assignment)}
			}
			kind, ok := declaredKind(s.reg, mats, name)
			if !ok {
				return &ExitError{Code: 2, Message: fmt.Sprintf("no material shader declares %q", name)}
			}
			v, err := parseValue(kind, raw)
			if err != nil {
				return &ExitError{Code: 2, Message: fmt.Sprintf("-set %s: %v", name, err)}
			}
			n, err := matclass.ApplyCommon(s.reg, accessors, name, v)
			if err != nil {
				return err
			}
			report.Applied[name] = n
			s.logger.Debug("Property applied.", "property", name, "value", v.String(), "materials", n)
		}

		encoded, err := encodeAll(mats)
		if err != nil {
			return err
		}
		if !*dryRun {
			for i, m := range mats {
				if err := os.WriteFile(m.Path, encoded[i], 0o600); err != nil {
					return fmt.Errorf("write %s: %w", m.Path, err)
				}
			}
		}
	}

	report.Properties = matclass.AnalyzeCommon(s.reg, accessors, &matclass.CommonOptions{Epsilon: cfg.Epsilon})

	return render(outW, cfg.Format, report, func(w io.Writer) error {
		for _, name := range slices.Sorted(maps.Keys(report.Applied)) {
			fmt.Fprintf(w, "set %s on %d materials\n", name, report.Applied[name])
		}
		for _, pc := range report.Properties {
			state := "consistent"
			if !pc.Consistent {
				state = "inconsistent"
			}
			fmt.Fprintf(w, "%-24s %-8s %-12s", pc.Property, strings.ToLower(pc.Kind.String()), state)
			if !pc.Consistent {
				vals := make([]string, len(pc.Values))
				for i, v := range pc.Values {
					vals[i] = v.String()
				}
				fmt.Fprintf(w, " [%s]", strings.Join(vals, " | "))
				if len(pc.Missing) > 0 {
					fmt.Fprintf(w, " missing in %d", len(pc.Missing))
				}
			} else {
				fmt.Fprintf(w, " %s", pc.Representative)
			}
			fmt.Fprintln(w)
		}
		return nil
	})
}

// encodeAll renders every material in its own encoding. Files are only
// written once all of them encode.
func encodeAll(mats []*matclass.Material) ([][]byte, error) {
	out := make([][]byte, len(mats))
	for i, m := range mats {
		b, err := matclass.Format(m, &matclass.FormatOptions{Encoding: m.Encoding})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Path, err)
		}
		out[i] = b
	}
	return out, nil
}

// declaredKind returns the kind of the first declaration of name among the
// shaders of mats.
func declaredKind(reg *matclass.Registry, mats []*matclass.Material, name string) (matclass.PropertyKind, bool) {
	for _, m := range mats {
		if s, ok := reg.Shader(m.Shader); ok {
			if p, ok := s.Property(name); ok {
				return p.Kind, true
			}
		}
	}
	return 0, false
}

// parseValue parses a command line value of kind. Colors and vectors are
// comma-separated components; "null" clears a texture slot.
func parseValue(kind matclass.PropertyKind, raw string) (matclass.Value, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case matclass.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return matclass.FloatValue(f), nil
	case matclass.KindInt:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return matclass.IntValue(i), nil
	case matclass.KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return matclass.BoolValue(b), nil
	case matclass.KindColor:
		c, err := parseFloats(raw, 3, 4)
		if err != nil {
			return nil, err
		}
		if len(c) == 3 {
			c = append(c, 1)
		}
		return matclass.ColorValue(matclass.SetColorRGBA(c[0], c[1], c[2], c[3])), nil
	case matclass.KindVector:
		c, err := parseFloats(raw, 2, 4)
		if err != nil {
			return nil, err
		}
		for len(c) < 4 {
			c = append(c, 0)
		}
		return matclass.VectorValue(matclass.Vector{X: c[0], Y: c[1], Z: c[2], W: c[3]}), nil
	case matclass.KindTexture:
		if strings.EqualFold(raw, "null") {
			return matclass.TextureValue(matclass.NullTexture()), nil
		}
		return matclass.TextureValue(matclass.PathTexture(raw)), nil
	}
	return nil, fmt.Errorf("unsupported kind %v", kind)
}

func parseFloats(raw string, minN, maxN int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < minN || len(parts) > maxN {
		return nil, fmt.Errorf("want %d to %d comma-separated components, got %d", minN, maxN, len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
