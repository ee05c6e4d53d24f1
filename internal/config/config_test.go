package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/matclass"
)

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matclass.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "registry": ["registry", "/abs/extra.hcl"],
  "project_root": "project",
  "format": "json",
  "threshold": 0.6,
  "builtin": false
}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Config{
		Builtin:     boolPtr(false),
		ProjectRoot: filepath.Join(dir, "project"),
		Format:      FormatJSON,
		Registry:    []string{filepath.Join(dir, "registry"), "/abs/extra.hcl"},
		Threshold:   0.6,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matclass.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nexclude:\n  - Packages/\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"Packages/"}, cfg.Exclude)
	assert.True(t, cfg.UseBuiltin())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".", cfg.ProjectRoot)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, matclass.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, matclass.DefaultEpsilon, cfg.Epsilon)
	assert.True(t, cfg.UseBuiltin())

	cfg = Config{Format: FormatYAML, Registry: []string{"a.hcl"}, Threshold: 0.4}
	cfg.Resolve(Flags{Format: FormatDump, Registry: []string{"b.hcl"}, NoBuiltin: true})
	assert.Equal(t, FormatDump, cfg.Format)
	assert.Equal(t, []string{"b.hcl"}, cfg.Registry)
	assert.Equal(t, 0.4, cfg.Threshold)
	assert.False(t, cfg.UseBuiltin())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"format", Config{Format: "xml"}},
		{"log format", Config{LogFormat: "logfmt"}},
		{"log level", Config{LogLevel: "trace"}},
		{"threshold", Config{Threshold: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Resolve(Flags{})
			assert.Error(t, cfg.Validate())
		})
	}
}
