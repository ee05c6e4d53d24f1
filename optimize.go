package matclass

import (
	"context"
	"fmt"

	"github.com/woozymasta/matclass/internal/ctxlog"
)

// MaxPriority is the highest recommendation priority.
const MaxPriority = 3

// TextureReader loads the current import configuration of a texture.
type TextureReader interface {
	LoadCurrentSettings(path string) (TextureSettings, error)
}

// TextureWriter applies an import configuration to a texture.
type TextureWriter interface {
	ApplySettings(path string, settings TextureSettings) error
}

// TextureReadWriter is both a TextureReader and a TextureWriter.
type TextureReadWriter interface {
	TextureReader
	TextureWriter
}

// TextureAnalysis compares a texture's import configuration with its family target.
// When Valid is false every field other than Path, Slot and Err is zero.
type TextureAnalysis struct {
	Err              error           `json:"-" yaml:"-"`                                                 // Resolution error when invalid
	Path             string          `json:"path" yaml:"path"`                                           // Texture path
	Slot             string          `json:"slot,omitempty" yaml:"slot,omitempty"`                       // Texture slot, when known
	Recommendations  []string        `json:"recommendations,omitempty" yaml:"recommendations,omitempty"` // One entry per mismatched field
	Current          TextureSettings `json:"current" yaml:"current"`                                     // Current configuration
	Recommended      TextureSettings `json:"recommended" yaml:"recommended"`                             // Target configuration
	EstimatedSavings int64           `json:"estimatedSavings" yaml:"estimatedSavings"`                   // Bytes saved by the size reduction
	Priority         int             `json:"priority" yaml:"priority"`                                   // Mismatch count clamped to 0..3
	Valid            bool            `json:"valid" yaml:"valid"`                                         // Texture resolved to pixel data
}

// Compliant reports whether a valid texture already matches its target.
func (a TextureAnalysis) Compliant() bool {
	return a.Valid && len(a.Recommendations) == 0
}

// AnalyzeTexture loads the current configuration of path through r, overlays the
// family and slot rules onto the registry baseline and diffs them field by field.
// A texture that cannot be loaded, or has no pixel data, is reported with Valid=false.
func AnalyzeTexture(reg *Registry, r TextureReader, path string, family *ShaderFamily, opt *TextureOptions) TextureAnalysis {
	topt := opt.normalize()
	key := cacheKey(path, family, topt.Slot)
	if a, ok := topt.Cache.get(key); ok {
		return a
	}

	a := analyzeTexture(reg, r, path, family, topt.Slot)
	topt.Cache.put(key, a)
	return a
}

// analyzeTexture performs an uncached analysis.
func analyzeTexture(reg *Registry, r TextureReader, path string, family *ShaderFamily, slot string) TextureAnalysis {
	out := TextureAnalysis{Path: path, Slot: slot}

	if r == nil {
		out.Err = fmt.Errorf("%w: %s: no texture reader", ErrUnresolvedTexture, path)
		return out
	}
	cur, err := r.LoadCurrentSettings(path)
	if err != nil {
		out.Err = fmt.Errorf("%w: %s: %w", ErrUnresolvedTexture, path, err)
		return out
	}
	if cur.Width <= 0 || cur.Height <= 0 {
		out.Err = fmt.Errorf("%w: %s: no pixel data", ErrUnresolvedTexture, path)
		return out
	}

	rec := RecommendedSettings(reg, family, slot)
	rec.Width, rec.Height = cur.Width, cur.Height

	out.Valid = true
	out.Current = cur
	out.Recommended = rec
	out.Recommendations = diffSettings(cur, rec)
	out.Priority = min(len(out.Recommendations), MaxPriority)

	if rec.MaxSize < cur.MaxSize {
		reduced := cur
		reduced.MaxSize = rec.MaxSize
		if saved := cur.EstimatedBytes() - reduced.EstimatedBytes(); saved > 0 {
			out.EstimatedSavings = saved
		}
	}

	return out
}

// diffSettings returns one recommendation per mismatched field.
func diffSettings(cur, rec TextureSettings) []string {
	var out []string

	if cur.Compression != rec.Compression {
		out = append(out, fmt.Sprintf("change compression from %s to %s", cur.Compression, rec.Compression))
	}

	if cur.MaxSize != rec.MaxSize {
		verb := "raise"
		if rec.MaxSize < cur.MaxSize {
			verb = "reduce"
		}
		out = append(out, fmt.Sprintf("%s max size from %d to %d", verb, cur.MaxSize, rec.MaxSize))
	}

	if cur.Mipmaps != rec.Mipmaps {
		if rec.Mipmaps {
			out = append(out, "enable mipmaps")
		} else {
			out = append(out, "disable mipmaps")
		}
	}

	if cur.SRGB != rec.SRGB {
		if rec.SRGB {
			out = append(out, "mark as sRGB color texture")
		} else {
			out = append(out, "mark as linear (non-color) texture")
		}
	}

	return out
}

// ComplianceSummary aggregates texture analyses. Invalid analyses are only
// counted in Unresolved and never contribute to the other totals.
type ComplianceSummary struct {
	ByPriority       [MaxPriority + 1]int `json:"byPriority" yaml:"byPriority"`             // Valid textures per priority
	Total            int                  `json:"total" yaml:"total"`                       // Valid textures
	Compliant        int                  `json:"compliant" yaml:"compliant"`               // Valid textures without recommendations
	NonCompliant     int                  `json:"nonCompliant" yaml:"nonCompliant"`         // Valid textures with recommendations
	Unresolved       int                  `json:"unresolved" yaml:"unresolved"`             // Invalid textures
	EstimatedSavings int64                `json:"estimatedSavings" yaml:"estimatedSavings"` // Sum of valid savings
}

// Summarize aggregates analyses, filtering out invalid entries.
func Summarize(analyses []TextureAnalysis) ComplianceSummary {
	var s ComplianceSummary
	for _, a := range analyses {
		if !a.Valid {
			s.Unresolved++
			continue
		}
		s.Total++
		s.ByPriority[a.Priority]++
		s.EstimatedSavings += a.EstimatedSavings
		if a.Compliant() {
			s.Compliant++
		} else {
			s.NonCompliant++
		}
	}
	return s
}

// BatchStatus is the outcome of one batch item.
type BatchStatus string

const (
	// BatchApplied means recommended settings were written.
	BatchApplied BatchStatus = "applied"
	// BatchPlanned means settings would be written (dry run).
	BatchPlanned BatchStatus = "planned"
	// BatchSkipped means the texture was already compliant.
	BatchSkipped BatchStatus = "skipped"
	// BatchUnresolved means the texture could not be loaded.
	BatchUnresolved BatchStatus = "unresolved"
	// BatchFailed means writing settings failed.
	BatchFailed BatchStatus = "failed"
)

// BatchItem is the outcome for one texture.
type BatchItem struct {
	Err      error            `json:"-" yaml:"-"`                                   // Failure cause
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`       // Failure message
	Path     string           `json:"path" yaml:"path"`                             // Texture path
	Status   BatchStatus      `json:"status" yaml:"status"`                         // Outcome
	Settings *TextureSettings `json:"settings,omitempty" yaml:"settings,omitempty"` // Written or planned settings
}

// BatchResult aggregates a BatchOptimize run.
type BatchResult struct {
	Summary    string      `json:"summary" yaml:"summary"`       // Human-readable summary
	Items      []BatchItem `json:"items" yaml:"items"`           // Per-texture outcomes in input order
	Applied    int         `json:"applied" yaml:"applied"`       // Textures written
	Planned    int         `json:"planned" yaml:"planned"`       // Textures that would be written (dry run)
	Skipped    int         `json:"skipped" yaml:"skipped"`       // Already compliant textures
	Failed     int         `json:"failed" yaml:"failed"`         // Write failures
	Unresolved int         `json:"unresolved" yaml:"unresolved"` // Textures that could not be loaded
}

// BatchOptimize applies recommended settings to every resolvable texture in paths.
// Compliant textures are skipped, so a second run applies nothing. Items are
// processed sequentially; ctx is checked once before each item and a canceled
// run returns the partial result with the context error. Per-item failures
// never abort the batch.
func BatchOptimize(ctx context.Context, reg *Registry, rw TextureReadWriter, paths []string, family *ShaderFamily, opt *BatchOptions) (BatchResult, error) {
	bopt := opt.normalize()
	logger := ctxlog.FromContext(ctx)
	if family != nil {
		logger = logger.With("family", family.ID)
	}
	logger.Debug("Batch optimize started.", "textures", len(paths), "dry_run", bopt.DryRun)

	res := BatchResult{Items: make([]BatchItem, 0, len(paths))}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			res.Summary = res.summarize() + " (canceled)"
			logger.Debug("Batch optimize canceled.", "processed", len(res.Items))
			return res, err
		}

		res.Items = append(res.Items, optimizeOne(reg, rw, p, family, bopt))
		item := &res.Items[len(res.Items)-1]
		switch item.Status {
		case BatchApplied:
			res.Applied++
		case BatchPlanned:
			res.Planned++
		case BatchSkipped:
			res.Skipped++
		case BatchUnresolved:
			res.Unresolved++
		case BatchFailed:
			res.Failed++
		}
		logger.Debug("Texture processed.", "path", p, "status", item.Status)
	}

	res.Summary = res.summarize()
	logger.Debug("Batch optimize finished.", "summary", res.Summary)
	return res, nil
}

// optimizeOne analyzes and, when needed, rewrites one texture.
func optimizeOne(reg *Registry, rw TextureReadWriter, path string, family *ShaderFamily, opt BatchOptions) BatchItem {
	slot := opt.Slots[path]
	a := analyzeTexture(reg, rw, path, family, slot)
	item := BatchItem{Path: path}

	switch {
	case !a.Valid:
		item.Status = BatchUnresolved
		item.Err = a.Err
	case a.Compliant():
		item.Status = BatchSkipped
	case opt.DryRun:
		s := a.Recommended.importable()
		item.Status = BatchPlanned
		item.Settings = &s
	default:
		s := a.Recommended.importable()
		item.Settings = &s
		if err := rw.ApplySettings(path, s); err != nil {
			item.Status = BatchFailed
			item.Err = fmt.Errorf("apply %s: %w", path, err)
			break
		}
		item.Status = BatchApplied
		opt.Cache.Invalidate(path)
	}

	if item.Err != nil {
		item.Error = item.Err.Error()
	}
	return item
}

// summarize renders result counters.
func (r BatchResult) summarize() string {
	s := fmt.Sprintf("%d applied, %d skipped, %d failed, %d unresolved", r.Applied, r.Skipped, r.Failed, r.Unresolved)
	if r.Planned > 0 {
		s += fmt.Sprintf(", %d planned", r.Planned)
	}
	return s
}
