package texmeta

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/matclass"
	"github.com/woozymasta/matclass/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Index maps sidecar GUIDs to asset paths relative to the indexed root.
type Index struct {
	entries map[string]string // lowercase guid -> slash path
}

// BuildIndex walks root for sidecars and records each GUID with the asset it
// describes. Sidecars of directories and unreadable sidecars are skipped.
func BuildIndex(ctx context.Context, root string) (*Index, error) {
	logger := ctxlog.FromContext(ctx)
	idx := &Index{entries: make(map[string]string)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), MetaExt) {
			return nil
		}

		asset := strings.TrimSuffix(path, filepath.Ext(path))
		if info, err := os.Stat(asset); err == nil && info.IsDir() {
			return nil
		}

		guid, err := readGUID(path)
		if err != nil || guid == "" {
			logger.Debug("Skipping sidecar", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(root, asset)
		if err != nil {
			return err
		}
		key := strings.ToLower(guid)
		if prev, dup := idx.entries[key]; dup {
			logger.Warn("Duplicate sidecar guid", "guid", guid, "kept", prev, "ignored", filepath.ToSlash(rel))
			return nil
		}
		idx.entries[key] = filepath.ToSlash(rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Sidecar index built", "root", root, "entries", len(idx.entries))
	return idx, nil
}

// readGUID decodes only the guid key of a sidecar.
func readGUID(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var head struct {
		GUID string `yaml:"guid"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return "", err
	}
	return strings.TrimSpace(head.GUID), nil
}

// ResolveGUID returns the asset path recorded for guid, or ("", false).
func (idx *Index) ResolveGUID(guid string) (string, bool) {
	if idx == nil {
		return "", false
	}
	path, ok := idx.entries[strings.ToLower(strings.TrimSpace(guid))]
	return path, ok
}

// ResolveTexture returns the asset path of a texture reference. Path
// references resolve to themselves; object references go through the GUID
// table; null references never resolve.
func (idx *Index) ResolveTexture(ref matclass.TextureRef) (string, bool) {
	switch {
	case ref.IsPath():
		return ref.Path, true
	case ref.IsObject() && ref.GUID != "":
		return idx.ResolveGUID(ref.GUID)
	default:
		return "", false
	}
}

// Len returns the number of indexed assets.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}
