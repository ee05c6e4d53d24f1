package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/woozymasta/matclass"
	"github.com/woozymasta/matclass/hclregistry"
	"github.com/woozymasta/matclass/internal/config"
	"github.com/woozymasta/matclass/internal/ctxlog"
	"github.com/woozymasta/matclass/texmeta"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	registry   stringList
	flags      config.Flags
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Path to a JSON or YAML config file.")
	fs.Var(&g.registry, "registry", "HCL registry file or directory (repeatable).")
	fs.BoolVar(&g.flags.NoBuiltin, "no-builtin", false, "Do not merge the built-in registry.")
	fs.StringVar(&g.flags.ProjectRoot, "project-root", "", "Project root for relative texture paths.")
	fs.StringVar(&g.flags.Format, "format", "", "Output format. Options: 'text', 'json', 'yaml', 'dump'.")
	fs.StringVar(&g.flags.LogLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.StringVar(&g.flags.LogFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	fs.Float64Var(&g.flags.Threshold, "threshold", 0, "Minimum signature coverage for a family match (0..1].")
	fs.Float64Var(&g.flags.Epsilon, "epsilon", 0, "Float comparison tolerance.")
}

// resolve merges the config file, flags and defaults.
func (g *globalFlags) resolve() (config.Config, error) {
	var cfg config.Config
	if g.configPath != "" {
		var err error
		cfg, err = config.Load(g.configPath)
		if err != nil {
			return cfg, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	g.flags.Registry = g.registry
	cfg.Resolve(g.flags)
	if err := cfg.Validate(); err != nil {
		return cfg, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, nil
}

// parseFlags parses args. done is set when help was requested.
func parseFlags(fs *flag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, &ExitError{Code: 2, Message: err.Error()}
	}
	return false, nil
}

// newFlagSet creates a command flag set with shared flags and usage text.
func newFlagSet(name, args string, outW io.Writer, g *globalFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("matclass "+name, flag.ContinueOnError)
	fs.SetOutput(outW)
	fs.Usage = func() {
		fmt.Fprintf(outW, "\nUsage:\n  matclass %s [options] %s\n\nOptions:\n", name, args)
		fs.PrintDefaults()
	}
	g.register(fs)
	return fs
}

// session holds the state shared by a command run.
type session struct {
	ctx    context.Context
	logger *slog.Logger
	reg    *matclass.Registry
	store  *texmeta.Store
	index  *texmeta.Index
	out    io.Writer
	cfg    config.Config
}

// newSession configures logging and loads the registry.
func newSession(ctx context.Context, outW, errW io.Writer, cfg config.Config) (*session, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	ctx = ctxlog.WithLogger(ctx, logger)

	var (
		reg *matclass.Registry
		err error
	)
	if len(cfg.Registry) == 0 && cfg.UseBuiltin() {
		reg, err = hclregistry.Default()
	} else {
		reg, err = hclregistry.Load(ctx, cfg.UseBuiltin(), cfg.Registry...)
	}
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	logger.Debug("Session ready.", "families", len(reg.Families()), "project_root", cfg.ProjectRoot)

	return &session{
		ctx:    ctx,
		logger: logger,
		reg:    reg,
		store:  texmeta.NewStore(cfg.ProjectRoot),
		out:    outW,
		cfg:    cfg,
	}, nil
}

// loadMaterials decodes every material file under paths. Directories are
// walked for *.json files in lexical order.
func (s *session) loadMaterials(paths []string) ([]*matclass.Material, error) {
	files, err := expandMaterialPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &ExitError{Code: 2, Message: "no material files given"}
	}

	mats := make([]*matclass.Material, 0, len(files))
	for _, f := range files {
		m, err := matclass.DecodeFile(f, nil)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Material loaded.", "path", f, "shader", m.Shader, "encoding", m.Encoding)
		mats = append(mats, m)
	}
	return mats, nil
}

func expandMaterialPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// textureSlot is a texture slot resolved to an asset path.
type textureSlot struct {
	ref  matclass.TextureRef
	slot string
	path string
	ok   bool
}

// textureSlots resolves the non-null texture slots of m in name order.
// Object references are looked up in a GUID index built on first use.
func (s *session) textureSlots(m *matclass.Material) ([]textureSlot, error) {
	names := make([]string, 0, len(m.Textures))
	for name := range m.Textures {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]textureSlot, 0, len(names))
	for _, name := range names {
		ref := m.Textures[name]
		if ref.IsNull() {
			continue
		}
		if ref.IsObject() && s.index == nil {
			idx, err := texmeta.BuildIndex(s.ctx, s.cfg.ProjectRoot)
			if err != nil {
				return nil, fmt.Errorf("index %s: %w", s.cfg.ProjectRoot, err)
			}
			s.index = idx
		}
		path, ok := s.index.ResolveTexture(ref)
		out = append(out, textureSlot{ref: ref, slot: name, path: path, ok: ok})
	}
	return out, nil
}
