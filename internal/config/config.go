// Package config loads CLI settings from a JSON or YAML file and merges
// them with command line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/matclass"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDump = "dump"
)

// Config holds CLI settings.
type Config struct {
	Builtin     *bool    `json:"builtin,omitempty" yaml:"builtin,omitempty"`           // Merge the embedded registry; default true
	ProjectRoot string   `json:"project_root,omitempty" yaml:"project_root,omitempty"` // Root for relative texture paths
	LogLevel    string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`       // debug, info, warn, error
	LogFormat   string   `json:"log_format,omitempty" yaml:"log_format,omitempty"`     // text or json
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`             // Report format
	Registry    []string `json:"registry,omitempty" yaml:"registry,omitempty"`         // HCL registry files or directories
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`           // Texture paths skipped by file checks; "dir/*" matches a prefix
	Threshold   float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`       // Classification threshold
	Epsilon     float64  `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`           // Float comparison tolerance
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ProjectRoot string
	LogLevel    string
	LogFormat   string
	Format      string
	Registry    []string
	Threshold   float64
	Epsilon     float64
	NoBuiltin   bool
}

// Load reads a config file. The format is chosen by extension: .yaml and
// .yml are YAML, anything else JSON. Relative paths in the file are
// resolved against its directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i, p := range cfg.Registry {
		cfg.Registry[i] = relTo(dir, p)
	}
	if cfg.ProjectRoot != "" {
		cfg.ProjectRoot = relTo(dir, cfg.ProjectRoot)
	}

	return cfg, nil
}

// Resolve applies flags over the file values and fills defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.ProjectRoot != "" {
		c.ProjectRoot = flags.ProjectRoot
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		c.LogFormat = flags.LogFormat
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if len(flags.Registry) > 0 {
		c.Registry = append([]string(nil), flags.Registry...)
	}
	if flags.Threshold > 0 {
		c.Threshold = flags.Threshold
	}
	if flags.Epsilon > 0 {
		c.Epsilon = flags.Epsilon
	}
	if flags.NoBuiltin {
		c.Builtin = boolPtr(false)
	}

	if c.Builtin == nil {
		c.Builtin = boolPtr(true)
	}
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Threshold <= 0 {
		c.Threshold = matclass.DefaultThreshold
	}
	if c.Epsilon <= 0 {
		c.Epsilon = matclass.DefaultEpsilon
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML, FormatDump:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.Threshold > 1 {
		return fmt.Errorf("config: threshold %v is above 1", c.Threshold)
	}
	return nil
}

// UseBuiltin reports whether the embedded registry is merged.
func (c *Config) UseBuiltin() bool {
	return c.Builtin == nil || *c.Builtin
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func boolPtr(b bool) *bool { return &b }
