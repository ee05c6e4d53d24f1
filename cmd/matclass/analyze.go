package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/matclass"
)

// materialReport is the analysis of one material.
type materialReport struct {
	Path           string                     `json:"path" yaml:"path"`
	Name           string                     `json:"name" yaml:"name"`
	Shader         string                     `json:"shader,omitempty" yaml:"shader,omitempty"`
	Encoding       matclass.Encoding          `json:"encoding" yaml:"encoding"`
	Classification matclass.Classification    `json:"classification" yaml:"classification"`
	Issues         []matclass.Issue           `json:"issues,omitempty" yaml:"issues,omitempty"`
	Slots          []matclass.SlotStatus      `json:"slots,omitempty" yaml:"slots,omitempty"`
	Textures       []matclass.TextureAnalysis `json:"textures,omitempty" yaml:"textures,omitempty"`
	Summary        matclass.ComplianceSummary `json:"summary" yaml:"summary"`
}

func runAnalyze(ctx context.Context, outW, errW io.Writer, args []string) error {
	var g globalFlags
	fs := newFlagSet("analyze", "MATERIAL...", outW, &g)
	strict := fs.Bool("strict", false, "Exit with code 1 when any error-level issue is found.")
	skipTextures := fs.Bool("skip-textures", false, "Do not read textures or their import settings.")
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

	cache := matclass.NewAnalysisCache()
	reports := make([]materialReport, 0, len(mats))
	errorsFound := 0
	for _, m := range mats {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		r, err := s.analyze(m, cache, *skipTextures)
		if err != nil {
			return err
		}
		for _, is := range r.Issues {
			if is.Level == matclass.IssueError {
				errorsFound++
			}
		}
		reports = append(reports, r)
	}

	if err := render(outW, cfg.Format, reports, func(w io.Writer) error {
		for i := range reports {
			printMaterialReport(w, &reports[i])
		}
		return nil
	}); err != nil {
		return err
	}

	if *strict && errorsFound > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d error-level issues found", errorsFound)}
	}
	return nil
}

// analyze classifies, validates and audits one material.
func (s *session) analyze(m *matclass.Material, cache *matclass.AnalysisCache, skipTextures bool) (materialReport, error) {
	cls := matclass.Classify(s.reg, m, &matclass.ClassifyOptions{Threshold: s.cfg.Threshold})
	r := materialReport{
		Path:           m.Path,
		Name:           m.Name,
		Shader:         m.Shader,
		Encoding:       m.Encoding,
		Classification: cls,
		Issues: matclass.Validate(s.reg, m, &matclass.ValidateOptions{
			Classification: &cls,
			ProjectRoot:    s.cfg.ProjectRoot,
			ExcludePaths:   s.cfg.Exclude,
		}),
		Slots: matclass.CheckSlots(m, cls.Family),
	}
	s.logger.Debug("Material classified.", "path", m.Path, "family", cls.FamilyID, "variant", cls.Variant, "confidence", cls.Confidence)

	if skipTextures {
		return r, nil
	}

	slots, err := s.textureSlots(m)
	if err != nil {
		return r, err
	}
	for _, ts := range slots {
		if !ts.ok {
			r.Textures = append(r.Textures, matclass.TextureAnalysis{
				Path: ts.ref.String(),
				Slot: ts.slot,
				Err:  fmt.Errorf("%w: %s", matclass.ErrUnresolvedTexture, ts.ref),
			})
			continue
		}
		r.Textures = append(r.Textures, matclass.AnalyzeTexture(s.reg, s.store, ts.path, cls.Family, &matclass.TextureOptions{
			Slot:  ts.slot,
			Cache: cache,
		}))
	}
	r.Summary = matclass.Summarize(r.Textures)
	return r, nil
}

func printMaterialReport(w io.Writer, r *materialReport) {
	fmt.Fprintf(w, "%s\n", r.Path)
	if r.Shader != "" {
		fmt.Fprintf(w, "  shader:  %s\n", r.Shader)
	}
	cls := r.Classification
	if cls.Known() {
		fmt.Fprintf(w, "  family:  %s (coverage %.2f", cls.FamilyID, cls.Confidence)
		if cls.Ambiguous {
			fmt.Fprint(w, ", ambiguous")
		}
		fmt.Fprintln(w, ")")
		fmt.Fprintf(w, "  variant: %s (%s", cls.Variant, cls.VariantSource)
		if cls.LowConfidence {
			fmt.Fprint(w, ", low confidence")
		}
		fmt.Fprintln(w, ")")
	} else {
		fmt.Fprintf(w, "  family:  unknown (best coverage %.2f)\n", cls.Confidence)
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w, "  issues:")
		for _, is := range r.Issues {
			fmt.Fprintf(w, "    %-7s %s %s: %s\n", is.Level, is.Code, is.Path, is.Message)
		}
	}

	if len(r.Textures) == 0 {
		return
	}
	sum := r.Summary
	fmt.Fprintf(w, "  textures: %d valid, %d compliant, %d unresolved, estimated savings %s\n",
		sum.Total, sum.Compliant, sum.Unresolved, formatBytes(sum.EstimatedSavings))
	for _, a := range r.Textures {
		switch {
		case !a.Valid:
			fmt.Fprintf(w, "    [--] %s (%s): %v\n", a.Path, a.Slot, a.Err)
		case a.Compliant():
			fmt.Fprintf(w, "    [ok] %s (%s)\n", a.Path, a.Slot)
		default:
			fmt.Fprintf(w, "    [P%d] %s (%s): %s\n", a.Priority, a.Path, a.Slot, strings.Join(a.Recommendations, "; "))
		}
	}
}
