package texmeta

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/woozymasta/matclass"
	"gopkg.in/yaml.v3"
)

// MetaExt is the sidecar file extension.
const MetaExt = ".meta"

// Unity importer compression levels in sidecar order.
var compressionLevels = []matclass.Compression{
	matclass.CompressionNone,
	matclass.CompressionNormal,
	matclass.CompressionHigh,
	matclass.CompressionLow,
}

// Meta is a decoded sidecar. Keys not modeled here are kept in Extra and
// written back unchanged.
type Meta struct {
	FileFormatVersion int              `yaml:"fileFormatVersion,omitempty"`
	GUID              string           `yaml:"guid,omitempty"`
	Importer          *TextureImporter `yaml:"TextureImporter,omitempty"`
	Extra             map[string]any   `yaml:",inline"`
}

// TextureImporter holds the importer keys this package reads and writes.
type TextureImporter struct {
	Mipmaps            *MipmapSettings `yaml:"mipmaps,omitempty"`
	MaxTextureSize     *int            `yaml:"maxTextureSize,omitempty"`
	TextureCompression *int            `yaml:"textureCompression,omitempty"`
	Extra              map[string]any  `yaml:",inline"`
}

// MipmapSettings is the importer mipmaps section.
type MipmapSettings struct {
	EnableMipMap *int           `yaml:"enableMipMap,omitempty"`
	SRGBTexture  *int           `yaml:"sRGBTexture,omitempty"`
	Extra        map[string]any `yaml:",inline"`
}

// MetaPath returns the sidecar path of an asset.
func MetaPath(assetPath string) string {
	return assetPath + MetaExt
}

// ReadMeta decodes the sidecar at path.
func ReadMeta(path string) (*Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Meta
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", matclass.ErrMalformedStructure, path, err)
	}
	return &m, nil
}

// WriteMeta encodes m to path through a temporary file.
func WriteMeta(path string, m *Meta) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Settings reads import settings from the sidecar over the importer defaults.
// Width and Height are left zero.
func (m *Meta) Settings() (matclass.TextureSettings, error) {
	s := matclass.DefaultTextureSettings()
	if m == nil || m.Importer == nil {
		return s, nil
	}

	imp := m.Importer
	if imp.TextureCompression != nil {
		c := *imp.TextureCompression
		if c < 0 || c >= len(compressionLevels) {
			return s, fmt.Errorf("%w: textureCompression %d", matclass.ErrMalformedStructure, c)
		}
		s.Compression = compressionLevels[c]
	}
	if imp.MaxTextureSize != nil {
		s.MaxSize = *imp.MaxTextureSize
	}
	if mm := imp.Mipmaps; mm != nil {
		if mm.EnableMipMap != nil {
			s.Mipmaps = *mm.EnableMipMap != 0
		}
		if mm.SRGBTexture != nil {
			s.SRGB = *mm.SRGBTexture != 0
		}
	}
	return s, nil
}

// SetSettings stores import settings in the sidecar, keeping unknown keys.
func (m *Meta) SetSettings(s matclass.TextureSettings) error {
	level := -1
	for i, c := range compressionLevels {
		if c == s.Compression {
			level = i
			break
		}
	}
	if level < 0 {
		return fmt.Errorf("unknown compression %q", s.Compression)
	}

	if m.Importer == nil {
		m.Importer = &TextureImporter{}
	}
	imp := m.Importer
	if imp.Mipmaps == nil {
		imp.Mipmaps = &MipmapSettings{}
	}
	imp.TextureCompression = intPtr(level)
	imp.MaxTextureSize = intPtr(s.MaxSize)
	imp.Mipmaps.EnableMipMap = intPtr(boolInt(s.Mipmaps))
	imp.Mipmaps.SRGBTexture = intPtr(boolInt(s.SRGB))
	return nil
}

// loadOrNewMeta reads the sidecar of assetPath or starts a fresh one.
func loadOrNewMeta(assetPath string) (*Meta, error) {
	m, err := ReadMeta(MetaPath(assetPath))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	guid, err := newGUID()
	if err != nil {
		return nil, err
	}
	return &Meta{FileFormatVersion: 2, GUID: guid}, nil
}

// newGUID returns 32 random lowercase hex digits.
func newGUID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func intPtr(v int) *int { return &v }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
