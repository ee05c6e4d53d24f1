package hclregistry

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/woozymasta/matclass"
	"github.com/woozymasta/matclass/internal/ctxlog"
)

// FileExt is the extension of registry files discovered in directories.
const FileExt = ".hcl"

// BuiltinFilename is the name reported in diagnostics for the embedded registry.
const BuiltinFilename = "builtin.hcl"

//go:embed builtin.hcl
var builtinSource []byte

// ErrNoFiles is returned when Load finds no registry files.
var ErrNoFiles = errors.New("no registry files found")

// Builtin returns a copy of the embedded registry source.
func Builtin() []byte {
	return append([]byte(nil), builtinSource...)
}

// Default builds the embedded registry.
func Default() (*matclass.Registry, error) {
	return Parse(builtinSource, BuiltinFilename)
}

// Parse decodes one registry file and builds a Registry from it.
func Parse(src []byte, filename string) (*matclass.Registry, error) {
	def, err := Decode(src, filename)
	if err != nil {
		return nil, err
	}
	return matclass.NewRegistry(def)
}

// Decode decodes one registry file without building it.
func Decode(src []byte, filename string) (matclass.RegistryDef, error) {
	return decode(hclparse.NewParser(), src, filename)
}

// Load decodes every registry file under paths, merges them in order and
// builds a Registry. Directories are walked for *.hcl files in lexical order.
// When includeBuiltin is set the embedded registry is merged first.
func Load(ctx context.Context, includeBuiltin bool, paths ...string) (*matclass.Registry, error) {
	logger := ctxlog.FromContext(ctx)

	var defs []matclass.RegistryDef
	parser := hclparse.NewParser()
	if includeBuiltin {
		def, err := decode(parser, builtinSource, BuiltinFilename)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 && !includeBuiltin {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, strings.Join(paths, ", "))
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("Loading registry file", "path", file)

		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read registry %s: %w", file, err)
		}
		def, err := decode(parser, src, file)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	merged := Merge(defs...)
	logger.Debug("Registry loaded",
		"files", len(files),
		"builtin", includeBuiltin,
		"families", len(merged.Families),
		"shaders", len(merged.Shaders),
	)
	return matclass.NewRegistry(merged)
}

// Merge concatenates definitions in order. Default overlays of later
// definitions replace the fields they set; the last non-empty fallback table wins.
// Duplicate families or shaders are reported by NewRegistry.
func Merge(defs ...matclass.RegistryDef) matclass.RegistryDef {
	var out matclass.RegistryDef
	for _, d := range defs {
		out.Defaults = mergeOverlay(out.Defaults, d.Defaults)
		out.Families = append(out.Families, d.Families...)
		out.Shaders = append(out.Shaders, d.Shaders...)
		if len(d.Fallback) > 0 {
			out.Fallback = d.Fallback
		}
	}
	return out
}

// decode parses src and converts the decoded schema into a RegistryDef.
func decode(parser *hclparse.Parser, src []byte, filename string) (matclass.RegistryDef, error) {
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return matclass.RegistryDef{}, fmt.Errorf("%w: failed to parse %s: %w", matclass.ErrRegistry, filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return matclass.RegistryDef{}, fmt.Errorf("%w: failed to decode %s: %w", matclass.ErrRegistry, filename, diags)
	}

	def, err := root.toDef()
	if err != nil {
		return matclass.RegistryDef{}, fmt.Errorf("%w: %s: %w", matclass.ErrRegistry, filename, err)
	}
	return def, nil
}

func (r *fileRoot) toDef() (matclass.RegistryDef, error) {
	var def matclass.RegistryDef

	if len(r.Defaults) > 1 {
		return def, errors.New("at most one defaults block is allowed")
	}
	for _, d := range r.Defaults {
		def.Defaults = overlayFromBlock(d.Compression, d.MaxSize, d.Mipmaps, d.SRGB)
	}

	for _, fb := range r.Families {
		f := matclass.ShaderFamily{
			ID:            fb.ID,
			Name:          fb.Name,
			Discriminator: fb.Discriminator,
			Signature:     fb.Signature,
			Textures:      fb.Textures,
		}
		if f.Name == "" {
			f.Name = fb.ID
		}
		for _, vb := range fb.Variants {
			f.Variants = append(f.Variants, variantFromBlock(vb))
		}
		if fb.Rules != nil {
			f.Rules.Overlay = overlayFromBlock(fb.Rules.Compression, fb.Rules.MaxSize, fb.Rules.Mipmaps, fb.Rules.SRGB)
		}
		if len(fb.SlotRules) > 0 {
			f.Rules.Slots = make(map[string]matclass.SettingsOverlay, len(fb.SlotRules))
			for _, sr := range fb.SlotRules {
				if _, dup := f.Rules.Slots[sr.Slot]; dup {
					return def, fmt.Errorf("family %q: duplicate slot_rule %q", fb.ID, sr.Slot)
				}
				f.Rules.Slots[sr.Slot] = overlayFromBlock(sr.Compression, sr.MaxSize, sr.Mipmaps, sr.SRGB)
			}
		}
		def.Families = append(def.Families, f)
	}

	for _, sb := range r.Shaders {
		s := matclass.ShaderDecl{Name: sb.Name, Family: sb.Family}
		for _, pb := range sb.Properties {
			kind, ok := matclass.ParsePropertyKind(pb.Kind)
			if !ok {
				return def, fmt.Errorf("shader %q: property %q: unknown kind %q", sb.Name, pb.Name, pb.Kind)
			}
			dv, err := decodeDefault(kind, pb.Default)
			if err != nil {
				return def, fmt.Errorf("shader %q: property %q: %w", sb.Name, pb.Name, err)
			}
			s.Properties = append(s.Properties, matclass.PropertyDecl{
				Name:    pb.Name,
				Kind:    kind,
				Default: dv,
				Min:     pb.Min,
				Max:     pb.Max,
				Options: pb.Options,
			})
		}
		def.Shaders = append(def.Shaders, s)
	}

	for _, vb := range r.Fallback {
		def.Fallback = append(def.Fallback, variantFromBlock(vb))
	}

	return def, nil
}

func variantFromBlock(vb *variantBlock) matclass.Variant {
	return matclass.Variant{Name: vb.Name, Value: vb.Value, Tokens: vb.Tokens}
}

// findFiles expands directories into sorted registry files. Explicit file
// paths are kept regardless of extension.
func findFiles(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("registry path %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), FileExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to find registry files in %s: %w", root, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
