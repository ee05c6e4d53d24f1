// Package texmeta reads and writes texture import settings stored in YAML
// `.meta` sidecars next to texture files, and measures texture dimensions.
//
// Store implements matclass.TextureReader and matclass.TextureWriter:
//
//	store := texmeta.NewStore("/path/to/project")
//	res, err := matclass.BatchOptimize(ctx, reg, store, paths, family, nil)
//
// Index maps sidecar GUIDs to asset paths so object references in nested
// materials can be resolved to files.
package texmeta
