package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/matclass"
	"github.com/woozymasta/matclass/hclregistry"
)

// registryReport is the printable form of a Registry.
type registryReport struct {
	Defaults matclass.TextureSettings `json:"defaults" yaml:"defaults"`
	Families []*matclass.ShaderFamily `json:"families" yaml:"families"`
	Shaders  []*matclass.ShaderDecl   `json:"shaders" yaml:"shaders"`
	Fallback []matclass.Variant       `json:"fallback" yaml:"fallback"`
}

func runRegistry(ctx context.Context, outW, errW io.Writer, args []string) error {
	var g globalFlags
	fs := newFlagSet("registry", "", outW, &g)
	source := fs.Bool("builtin-source", false, "Print the embedded HCL registry and exit.")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if *source {
		_, err := outW.Write(hclregistry.Builtin())
		return err
	}

	cfg, err := g.resolve()
	if err != nil {
		return err
	}
	s, err := newSession(ctx, outW, errW, cfg)
	if err != nil {
		return err
	}

	report := registryReport{
		Defaults: s.reg.Defaults(),
		Families: s.reg.Families(),
		Shaders:  s.reg.Shaders(),
		Fallback: s.reg.FallbackVariants(),
	}

	return render(outW, cfg.Format, report, func(w io.Writer) error {
		d := report.Defaults
		fmt.Fprintf(w, "defaults: compression=%s max_size=%d mipmaps=%t srgb=%t\n", d.Compression, d.MaxSize, d.Mipmaps, d.SRGB)
		for _, f := range report.Families {
			fmt.Fprintf(w, "family %s (%s)\n", f.ID, f.Name)
			fmt.Fprintf(w, "  signature: %s\n", strings.Join(f.Signature, ", "))
			if f.Discriminator != "" {
				names := make([]string, len(f.Variants))
				for i, v := range f.Variants {
					names[i] = fmt.Sprintf("%s=%d", v.Name, v.Value)
				}
				fmt.Fprintf(w, "  variants:  %s via %s\n", strings.Join(names, ", "), f.Discriminator)
			}
			if len(f.Textures) > 0 {
				fmt.Fprintf(w, "  textures:  %s\n", strings.Join(f.Textures, ", "))
			}
		}
		for _, sh := range report.Shaders {
			family := sh.Family
			if family == "" {
				family = "-"
			}
			fmt.Fprintf(w, "shader %s [%s] %d properties\n", sh.Name, family, len(sh.Properties))
		}
		return nil
	})
}
