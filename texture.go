package matclass

import (
	"path/filepath"
	"strings"
)

// TextureKind indicates texture reference type.
type TextureKind string

const (
	// TextureKindNull represents a slot that is present but explicitly empty.
	TextureKindNull TextureKind = "null"
	// TextureKindObject represents an engine object reference (file ID / path ID / GUID).
	TextureKindObject TextureKind = "object"
	// TextureKindPath represents a file path texture reference.
	TextureKindPath TextureKind = "path"
)

// TextureRef represents the content of a texture slot.
type TextureRef struct {
	Scale  *Vector     `json:"scale,omitempty" yaml:"scale,omitempty"`   // Tiling scale (nested encoding only)
	Offset *Vector     `json:"offset,omitempty" yaml:"offset,omitempty"` // Tiling offset (nested encoding only)
	Type   TextureKind `json:"kind" yaml:"kind"`                         // Texture reference type
	Path   string      `json:"path,omitempty" yaml:"path,omitempty"`     // File path for path references
	GUID   string      `json:"guid,omitempty" yaml:"guid,omitempty"`     // Asset GUID for object references
	FileID int64       `json:"fileId,omitempty" yaml:"fileId,omitempty"` // Object file ID
	PathID int64       `json:"pathId,omitempty" yaml:"pathId,omitempty"` // Object path ID
}

// NullTexture returns a present-but-empty texture reference.
func NullTexture() TextureRef { return TextureRef{Type: TextureKindNull} }

// PathTexture returns a file path texture reference. An empty path yields a null reference.
func PathTexture(path string) TextureRef {
	path = NormalizeTexturePath(path)
	if path == "" {
		return NullTexture()
	}
	return TextureRef{Type: TextureKindPath, Path: path}
}

// ObjectTexture returns an object texture reference.
func ObjectTexture(fileID, pathID int64, guid string) TextureRef {
	return TextureRef{Type: TextureKindObject, FileID: fileID, PathID: pathID, GUID: guid}
}

// IsNull reports whether the slot is present but explicitly empty.
func (t TextureRef) IsNull() bool { return t.Type == TextureKindNull }

// IsPath reports whether the texture is a file path.
func (t TextureRef) IsPath() bool { return t.Type == TextureKindPath }

// IsObject reports whether the texture is an object reference.
func (t TextureRef) IsObject() bool { return t.Type == TextureKindObject }

// Equal reports whether two references point at the same content, ignoring tiling.
func (t TextureRef) Equal(o TextureRef) bool {
	if t.Type != o.Type {
		return false
	}

	switch t.Type {
	case TextureKindPath:
		return normalizePathForMatch(t.Path) == normalizePathForMatch(o.Path)
	case TextureKindObject:
		return t.FileID == o.FileID && t.PathID == o.PathID && t.GUID == o.GUID
	default:
		return true
	}
}

// String renders a short description of the reference.
func (t TextureRef) String() string {
	switch t.Type {
	case TextureKindPath:
		return t.Path
	case TextureKindObject:
		if t.GUID != "" {
			return "guid:" + t.GUID
		}
		return "object:" + formatInt(t.FileID) + "/" + formatInt(t.PathID)
	default:
		return "null"
	}
}

// NormalizeTexturePath cleans texture path strings seen in exported data.
func NormalizeTexturePath(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// PathResolver resolves texture paths relative to ProjectRoot.
type PathResolver struct {
	ProjectRoot string
}

// ResolveTexturePath resolves a texture reference against ProjectRoot.
// Returns empty string for null and object references.
func (r PathResolver) ResolveTexturePath(tex TextureRef) string {
	if !tex.IsPath() {
		return ""
	}

	return r.ResolvePath(tex.Path)
}

// ResolvePath resolves a raw path against ProjectRoot.
func (r PathResolver) ResolvePath(raw string) string {
	if raw == "" {
		return ""
	}

	norm := normalizeOSPath(raw)
	if filepath.IsAbs(norm) || hasVolume(norm) {
		return filepath.Clean(norm)
	}

	if r.ProjectRoot == "" {
		return filepath.Clean(norm)
	}

	return filepath.Clean(filepath.Join(r.ProjectRoot, norm))
}

// hasVolume checks if the path has a volume.
func hasVolume(p string) bool {
	if len(p) >= 2 && p[1] == ':' {
		return true
	}
	return false
}

// normalizeOSPath normalizes a path for OS-specific separators.
func normalizeOSPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return filepath.FromSlash(p)
}
