package matclass

import (
	"os"
	"strings"
)

// Default tuning values.
const (
	// DefaultThreshold is the minimum signature coverage for a family match.
	DefaultThreshold = 0.5
	// DefaultEpsilon is the float tolerance used by consistency checks.
	DefaultEpsilon = 1e-5
)

// AdaptOptions controls format adaptation.
type AdaptOptions struct {
	// Encoding declares the source encoding. EncodingAuto detects it from top-level keys.
	Encoding Encoding
	// Path is recorded as the material source path.
	Path string
	// DisableUnwrap disables unwrapping of a single top-level "Material" object.
	DisableUnwrap bool
}

// FormatOptions controls writer formatting.
type FormatOptions struct {
	// Encoding selects the output encoding. EncodingAuto uses the material's own encoding,
	// falling back to nested.
	Encoding Encoding
	// Indent is the indentation string for nested objects (default is two spaces).
	Indent string
}

// ClassifyOptions controls shader classification.
type ClassifyOptions struct {
	// Threshold is the minimum signature coverage in (0,1]. Zero means DefaultThreshold.
	Threshold float64
	// FileNameHint is used for variant resolution. Defaults to the material path, then its name.
	FileNameHint string
}

// ValidateOptions controls validation rules.
type ValidateOptions struct {
	// Classification reuses a previous Classify result instead of classifying again.
	Classification *Classification
	// ProjectRoot is used to resolve texture paths when file checks are enabled.
	ProjectRoot string
	// ExcludePaths skips file existence checks for matching texture paths.
	// Supports exact match and prefix wildcard with '*' suffix (e.g. "Assets/Vendor/*").
	ExcludePaths []string
	// DisableFileCheck disables filesystem existence checks for texture paths.
	// If ProjectRoot is not set, this is enabled by default.
	DisableFileCheck bool
	// DisableExtensionsCheck disables extension validation for texture paths.
	DisableExtensionsCheck bool
	// DisableSlotCheck disables expected texture slot checks.
	DisableSlotCheck bool
	// DisableVariantCheck disables discriminator value checks.
	DisableVariantCheck bool
}

// TextureOptions controls texture analysis.
type TextureOptions struct {
	// Slot is the texture slot name; slot-level rules apply when set.
	Slot string
	// Cache is an optional caller-owned analysis cache.
	Cache *AnalysisCache
}

// BatchOptions controls batch optimization.
type BatchOptions struct {
	// Slots maps texture paths to slot names so slot-level rules apply.
	Slots map[string]string
	// Cache is an optional caller-owned analysis cache; applied paths are invalidated.
	Cache *AnalysisCache
	// DryRun computes the outcome without writing settings.
	DryRun bool
}

// CommonOptions controls cross-material analysis.
type CommonOptions struct {
	// Epsilon is the float tolerance. Zero means DefaultEpsilon.
	Epsilon float64
}

// IsProjectRootExist reports whether the project root exists and is a directory.
func (o *ValidateOptions) IsProjectRootExist() bool {
	if o == nil {
		return false
	}
	if strings.TrimSpace(o.ProjectRoot) == "" {
		return false
	}
	info, err := os.Stat(o.ProjectRoot)
	if err != nil {
		return false
	}

	return info.IsDir()
}

// normalize normalizes the AdaptOptions.
func (o *AdaptOptions) normalize() AdaptOptions {
	if o == nil {
		return AdaptOptions{}
	}

	return *o
}

// normalize normalizes the FormatOptions.
func (o *FormatOptions) normalize() FormatOptions {
	if o == nil {
		return FormatOptions{Indent: "  "}
	}

	out := *o
	if out.Indent == "" {
		out.Indent = "  "
	}

	return out
}

// normalize normalizes the ClassifyOptions.
func (o *ClassifyOptions) normalize() ClassifyOptions {
	if o == nil {
		return ClassifyOptions{Threshold: DefaultThreshold}
	}

	out := *o
	if out.Threshold <= 0 || out.Threshold > 1 {
		out.Threshold = DefaultThreshold
	}

	return out
}

// normalize normalizes the ValidateOptions.
func (o *ValidateOptions) normalize() ValidateOptions {
	if o == nil {
		return ValidateOptions{DisableFileCheck: true}
	}

	out := *o
	if out.ProjectRoot == "" {
		out.DisableFileCheck = true
	}

	return out
}

// normalize normalizes the TextureOptions.
func (o *TextureOptions) normalize() TextureOptions {
	if o == nil {
		return TextureOptions{}
	}

	return *o
}

// normalize normalizes the BatchOptions.
func (o *BatchOptions) normalize() BatchOptions {
	if o == nil {
		return BatchOptions{}
	}

	return *o
}

// normalize normalizes the CommonOptions.
func (o *CommonOptions) normalize() CommonOptions {
	if o == nil || o.Epsilon <= 0 {
		return CommonOptions{Epsilon: DefaultEpsilon}
	}

	return *o
}
