package texmeta

import (
	"fmt"
	"sync"

	"github.com/woozymasta/matclass"
)

// Store reads texture dimensions and sidecar import settings under a
// project root. Relative texture paths are resolved against Root.
type Store struct {
	dims     map[string]dimensions
	resolver matclass.PathResolver
	mu       sync.RWMutex
}

type dimensions struct {
	width, height int
}

// NewStore creates a store rooted at root.
func NewStore(root string) *Store {
	return &Store{
		dims:     make(map[string]dimensions),
		resolver: matclass.PathResolver{ProjectRoot: root},
	}
}

// Root returns the project root.
func (s *Store) Root() string {
	return s.resolver.ProjectRoot
}

// Resolve maps a texture path to a filesystem path.
func (s *Store) Resolve(path string) string {
	return s.resolver.ResolvePath(path)
}

// Dimensions returns the pixel size of a texture. Results are cached per
// resolved path; pixel data is never rewritten by this package.
func (s *Store) Dimensions(path string) (int, int, error) {
	full := s.Resolve(path)
	if full == "" {
		return 0, 0, fmt.Errorf("empty texture path")
	}

	s.mu.RLock()
	d, ok := s.dims[full]
	s.mu.RUnlock()
	if ok {
		return d.width, d.height, nil
	}

	w, h, err := readDimensions(full)
	if err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	if d, ok := s.dims[full]; ok {
		s.mu.Unlock()
		return d.width, d.height, nil
	}
	s.dims[full] = dimensions{width: w, height: h}
	s.mu.Unlock()
	return w, h, nil
}

// LoadCurrentSettings implements matclass.TextureReader. A missing sidecar
// yields importer defaults.
func (s *Store) LoadCurrentSettings(path string) (matclass.TextureSettings, error) {
	w, h, err := s.Dimensions(path)
	if err != nil {
		return matclass.TextureSettings{}, err
	}

	m, err := loadOrNewMeta(s.Resolve(path))
	if err != nil {
		return matclass.TextureSettings{}, err
	}
	settings, err := m.Settings()
	if err != nil {
		return matclass.TextureSettings{}, err
	}
	settings.Width = w
	settings.Height = h
	return settings, nil
}

// ApplySettings implements matclass.TextureWriter. Only the sidecar is
// written; keys other than the managed importer fields are preserved.
func (s *Store) ApplySettings(path string, settings matclass.TextureSettings) error {
	full := s.Resolve(path)
	if full == "" {
		return fmt.Errorf("empty texture path")
	}

	m, err := loadOrNewMeta(full)
	if err != nil {
		return err
	}
	if err := m.SetSettings(settings); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return WriteMeta(MetaPath(full), m)
}
