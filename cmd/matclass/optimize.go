package main

import (
	"context"
	"fmt"
	"io"

	"github.com/woozymasta/matclass"
)

// optimizeReport is the batch outcome for one material.
type optimizeReport struct {
	Path   string               `json:"path" yaml:"path"`
	Family string               `json:"family,omitempty" yaml:"family,omitempty"`
	Result matclass.BatchResult `json:"result" yaml:"result"`
}

func runOptimize(ctx context.Context, outW, errW io.Writer, args []string) error {
	var g globalFlags
	fs := newFlagSet("optimize", "MATERIAL...", outW, &g)
	dryRun := fs.Bool("dry-run", false, "Report planned changes without writing import settings.")
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
	reports := make([]optimizeReport, 0, len(mats))
	failed := 0
	var runErr error
	for _, m := range mats {
		cls := matclass.Classify(s.reg, m, &matclass.ClassifyOptions{Threshold: cfg.Threshold})
		slots, err := s.textureSlots(m)
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(slots))
		bySlot := make(map[string]string, len(slots))
		for _, ts := range slots {
			path := ts.path
			if !ts.ok {
				// Keep the reference so it is reported as unresolved.
				path = ts.ref.String()
			}
			paths = append(paths, path)
			bySlot[path] = ts.slot
		}

		res, err := matclass.BatchOptimize(s.ctx, s.reg, s.store, paths, cls.Family, &matclass.BatchOptions{
			Slots:  bySlot,
			Cache:  cache,
			DryRun: *dryRun,
		})
		reports = append(reports, optimizeReport{Path: m.Path, Family: cls.FamilyID, Result: res})
		failed += res.Failed
		if err != nil {
			runErr = err
			break
		}
	}

	if err := render(outW, cfg.Format, reports, func(w io.Writer) error {
		for _, r := range reports {
			printOptimizeReport(w, r)
		}
		return nil
	}); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d textures could not be updated", failed)}
	}
	return nil
}

func printOptimizeReport(w io.Writer, r optimizeReport) {
	family := r.Family
	if family == "" {
		family = "unknown family"
	}
	fmt.Fprintf(w, "%s (%s): %s\n", r.Path, family, r.Result.Summary)
	for _, it := range r.Result.Items {
		switch {
		case it.Error != "":
			fmt.Fprintf(w, "  %-10s %s: %s\n", it.Status, it.Path, it.Error)
		case it.Settings != nil:
			st := it.Settings
			fmt.Fprintf(w, "  %-10s %s: compression=%s max_size=%d mipmaps=%t srgb=%t\n",
				it.Status, it.Path, st.Compression, st.MaxSize, st.Mipmaps, st.SRGB)
		default:
			fmt.Fprintf(w, "  %-10s %s\n", it.Status, it.Path)
		}
	}
}
