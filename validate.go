package matclass

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IssueLevel represents severity of validation issue.
type IssueLevel string

const (
	// IssueError indicates a validation error.
	IssueError IssueLevel = "error"
	// IssueWarning indicates a validation warning.
	IssueWarning IssueLevel = "warning"
	// IssueInfo indicates an informational note.
	IssueInfo IssueLevel = "info"
)

// Issue codes.
const (
	CodeUnknownFamily   = "unknown_family"
	CodeMissingTexture  = "missing_texture"
	CodeTemplateSlot    = "template_slot"
	CodeVariantMismatch = "variant_mismatch"
	CodeMissingResource = "missing_resource"
	CodeColor           = "invalid_color"
	CodeExtension       = "texture_extension"
	CodeParentPath      = "parent_path"
)

// Issue represents a validation issue.
type Issue struct {
	Level   IssueLevel `json:"level" yaml:"level"`                   // Severity level
	Code    string     `json:"code,omitempty" yaml:"code,omitempty"` // Machine-readable code
	Message string     `json:"message" yaml:"message"`               // Issue message
	Path    string     `json:"path,omitempty" yaml:"path,omitempty"` // Path to the affected resource
}

// Validate checks m against its classified family and returns issues.
func Validate(reg *Registry, m *Material, opt *ValidateOptions) []Issue {
	vopt := opt.normalize()
	var out []Issue
	if m == nil {
		return out
	}

	var cls Classification
	if vopt.Classification != nil {
		cls = *vopt.Classification
	} else {
		cls = Classify(reg, m, nil)
	}

	if !cls.Known() {
		out = append(out, Issue{Level: IssueWarning, Code: CodeUnknownFamily, Message: "material matches no known shader family", Path: m.Path})
	}

	if cls.Known() && !vopt.DisableSlotCheck {
		for _, st := range CheckSlots(m, cls.Family) {
			switch st.State {
			case SlotAbsent:
				out = append(out, Issue{Level: IssueWarning, Code: CodeMissingTexture, Message: "expected texture slot missing", Path: st.Slot})
			case SlotNull:
				out = append(out, Issue{Level: IssueInfo, Code: CodeTemplateSlot, Message: "texture slot awaiting content", Path: st.Slot})
			}
		}
	}

	if cls.Known() && !vopt.DisableVariantCheck && cls.Family.Discriminator != "" && cls.DiscriminatorValue != nil {
		cur, ok := m.GetProperty(cls.Family.Discriminator, KindInt)
		if ok && int64(cur.(IntValue)) != *cls.DiscriminatorValue {
			out = append(out, Issue{
				Level:   IssueWarning,
				Code:    CodeVariantMismatch,
				Message: "discriminator " + cur.String() + " does not match variant " + cls.Variant + " (" + formatInt(*cls.DiscriminatorValue) + ")",
				Path:    cls.Family.Discriminator,
			})
		}
	}

	for _, name := range sortedColorNames(m.Colors) {
		out = append(out, validateColor(name, m.Colors[name])...)
	}

	// Check if file validation or extension validation is enabled
	if !vopt.DisableFileCheck || !vopt.DisableExtensionsCheck {
		resolver := PathResolver{ProjectRoot: vopt.ProjectRoot}
		for _, slot := range sortedTextureNames(m.Textures) {
			tex := m.Textures[slot]
			if !tex.IsPath() {
				continue
			}

			if !vopt.DisableExtensionsCheck {
				if !hasAllowedExt(tex.Path) {
					out = append(out, Issue{Level: IssueWarning, Code: CodeExtension, Message: "unexpected texture extension", Path: tex.Path})
				}
			}

			if strings.Contains(tex.Path, "..") {
				out = append(out, Issue{Level: IssueWarning, Code: CodeParentPath, Message: "texture path contains '..'", Path: tex.Path})
			}

			if !vopt.DisableFileCheck {
				if shouldExcludePath(tex.Path, vopt.ExcludePaths) {
					continue
				}
				p := resolver.ResolvePath(tex.Path)
				if p != "" {
					if _, err := os.Stat(p); err != nil {
						out = append(out, Issue{Level: IssueWarning, Code: CodeMissingResource, Message: "texture file not found", Path: p})
					}
				}
			}
		}
	}

	return out
}

// validateColor validates a color.
func validateColor(name string, c Color) []Issue {
	if !c.IsFinite() {
		return []Issue{{Level: IssueError, Code: CodeColor, Message: "color has non-finite components", Path: name}}
	}
	return nil
}

// defaultTextureExts lists extensions accepted by texture importers.
var defaultTextureExts = []string{".png", ".tga", ".psd", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".exr", ".hdr", ".webp", ".gif"}

// hasAllowedExt checks if the path has an allowed extension.
func hasAllowedExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	// Check if the extension is allowed
	for _, e := range defaultTextureExts {
		if ext == e {
			return true
		}
	}

	return false
}

// shouldExcludePath checks if the path should be excluded.
func shouldExcludePath(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	// Normalize the path for matching
	norm := normalizePathForMatch(path)
	for _, p := range patterns {
		if p == "" {
			continue
		}

		// Check if the path matches a wildcard pattern
		pp := normalizePathForMatch(p)
		if strings.HasSuffix(pp, "*") {
			prefix := strings.TrimSuffix(pp, "*")
			if strings.HasPrefix(norm, prefix) {
				return true
			}

			continue
		}

		// Check if the path matches an exact pattern
		if norm == pp {
			return true
		}
	}

	return false
}

// normalizePathForMatch normalizes a path for matching.
func normalizePathForMatch(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(p)
}

func sortedColorNames(m map[string]Color) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedTextureNames(m map[string]TextureRef) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
