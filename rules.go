package matclass

import (
	"fmt"
	"maps"
)

// Compression is a texture import compression level.
type Compression string

const (
	// CompressionNone stores raw pixels.
	CompressionNone Compression = "uncompressed"
	// CompressionLow is the smallest lossy block compression.
	CompressionLow Compression = "low_quality"
	// CompressionNormal is the default block compression.
	CompressionNormal Compression = "compressed"
	// CompressionHigh is high quality block compression.
	CompressionHigh Compression = "high_quality"
)

// Valid reports whether c is a known compression level.
func (c Compression) Valid() bool {
	switch c {
	case CompressionNone, CompressionLow, CompressionNormal, CompressionHigh:
		return true
	default:
		return false
	}
}

// bitsPerPixel estimates storage cost of one pixel.
func (c Compression) bitsPerPixel() float64 {
	switch c {
	case CompressionNone:
		return 32
	case CompressionLow:
		return 4
	case CompressionHigh:
		return 8
	default:
		return 8
	}
}

// TextureSettings is a texture import configuration. Width and Height are the
// source pixel dimensions and are never written back.
type TextureSettings struct {
	Compression Compression `json:"compression" yaml:"compression"`           // Compression level
	MaxSize     int         `json:"maxSize" yaml:"maxSize"`                   // Maximum imported dimension
	Width       int         `json:"width,omitempty" yaml:"width,omitempty"`   // Source width in pixels
	Height      int         `json:"height,omitempty" yaml:"height,omitempty"` // Source height in pixels
	Mipmaps     bool        `json:"mipmaps" yaml:"mipmaps"`                   // Mipmap generation
	SRGB        bool        `json:"srgb" yaml:"srgb"`                         // Color texture (sRGB sampling)
}

// DefaultTextureSettings is the global baseline import configuration.
func DefaultTextureSettings() TextureSettings {
	return TextureSettings{
		Compression: CompressionNormal,
		MaxSize:     2048,
		Mipmaps:     true,
		SRGB:        true,
	}
}

// SettingsOverlay overrides selected fields of TextureSettings.
type SettingsOverlay struct {
	Compression *Compression `json:"compression,omitempty" yaml:"compression,omitempty"` // Compression override
	MaxSize     *int         `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`         // Max size override
	Mipmaps     *bool        `json:"mipmaps,omitempty" yaml:"mipmaps,omitempty"`         // Mipmap override
	SRGB        *bool        `json:"srgb,omitempty" yaml:"srgb,omitempty"`               // sRGB override
}

// Apply returns base with the overlay's set fields replaced.
func (o SettingsOverlay) Apply(base TextureSettings) TextureSettings {
	if o.Compression != nil {
		base.Compression = *o.Compression
	}
	if o.MaxSize != nil {
		base.MaxSize = *o.MaxSize
	}
	if o.Mipmaps != nil {
		base.Mipmaps = *o.Mipmaps
	}
	if o.SRGB != nil {
		base.SRGB = *o.SRGB
	}
	return base
}

// IsZero reports whether the overlay sets nothing.
func (o SettingsOverlay) IsZero() bool {
	return o.Compression == nil && o.MaxSize == nil && o.Mipmaps == nil && o.SRGB == nil
}

// validate checks overlay values.
func (o SettingsOverlay) validate() error {
	if o.Compression != nil && !o.Compression.Valid() {
		return fmt.Errorf("unknown compression %q", *o.Compression)
	}
	if o.MaxSize != nil && !isPowerOfTwo(*o.MaxSize) {
		return fmt.Errorf("max size %d is not a power of two", *o.MaxSize)
	}
	return nil
}

// TextureRules holds per-family texture import overrides.
type TextureRules struct {
	Slots   map[string]SettingsOverlay `json:"slots,omitempty" yaml:"slots,omitempty"` // Per-slot overrides
	Overlay SettingsOverlay            `json:"overlay" yaml:"overlay"`                 // Family-wide override
}

func (r TextureRules) clone() TextureRules {
	r.Slots = maps.Clone(r.Slots)
	return r
}

// RecommendedSettings overlays family and slot overrides onto the registry baseline.
// A nil family yields the baseline.
func RecommendedSettings(reg *Registry, family *ShaderFamily, slot string) TextureSettings {
	out := reg.Defaults()
	if family == nil {
		return out
	}

	out = family.Rules.Overlay.Apply(out)
	if slot != "" {
		if o, ok := family.Rules.Slots[slot]; ok {
			out = o.Apply(out)
		}
	}
	return out
}

// EffectiveSize returns the imported dimensions: source dimensions clamped by MaxSize
// with aspect ratio preserved. Unknown source dimensions assume a square MaxSize texture.
func (s TextureSettings) EffectiveSize() (int, int) {
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		return s.MaxSize, s.MaxSize
	}
	if s.MaxSize <= 0 {
		return w, h
	}

	longest := max(w, h)
	if longest <= s.MaxSize {
		return w, h
	}

	scale := float64(s.MaxSize) / float64(longest)
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// EstimatedBytes estimates GPU memory of the imported texture.
func (s TextureSettings) EstimatedBytes() int64 {
	w, h := s.EffectiveSize()
	bits := float64(w) * float64(h) * s.Compression.bitsPerPixel()
	if s.Mipmaps {
		bits *= 4.0 / 3.0
	}
	return int64(bits / 8)
}

// importable returns s without the read-only source dimensions.
func (s TextureSettings) importable() TextureSettings {
	s.Width, s.Height = 0, 0
	return s
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
