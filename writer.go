package matclass

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode writes a Material to writer in the requested encoding.
func Encode(w io.Writer, m *Material, opt *FormatOptions) error {
	fopt := opt.normalize()
	enc := fopt.Encoding
	if enc == EncodingAuto {
		enc = m.Encoding
	}
	if enc == EncodingAuto {
		enc = EncodingNested
	}

	var doc any
	var err error
	switch enc {
	case EncodingNested:
		doc, err = buildNested(m)
	case EncodingFlat:
		doc, err = buildFlat(m)
	default:
		return fmt.Errorf("%w: unknown encoding %q", ErrIncompatibleEncoding, enc)
	}
	if err != nil {
		return err
	}

	// Buffered writer reduces syscall overhead and short writes.
	bw := bufio.NewWriter(w)
	je := json.NewEncoder(bw)
	je.SetIndent("", fopt.Indent)
	je.SetEscapeHTML(false)
	if err := je.Encode(doc); err != nil {
		return err
	}

	return bw.Flush()
}

// EncodeFile writes a Material to a file.
func EncodeFile(path string, m *Material, opt *FormatOptions) error {
	b, err := Format(m, opt)
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o600)
}

// Format renders a Material to bytes.
func Format(m *Material, opt *FormatOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, opt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// nestedDoc is the nested encoding document.
type nestedDoc struct {
	Shader          *nestedShader `json:"m_Shader,omitempty"`
	Name            string        `json:"m_Name,omitempty"`
	SavedProperties nestedProps   `json:"m_SavedProperties"`
}

type nestedShader struct {
	Name string `json:"name"`
}

type nestedProps struct {
	TexEnvs map[string]nestedTexEnv `json:"m_TexEnvs"`
	Floats  map[string]float64      `json:"m_Floats"`
	Ints    map[string]int64        `json:"m_Ints"`
	Colors  map[string]any          `json:"m_Colors"`
}

type nestedTexEnv struct {
	Texture *nestedTexture `json:"m_Texture"`
	Scale   *tiling        `json:"m_Scale,omitempty"`
	Offset  *tiling        `json:"m_Offset,omitempty"`
}

type nestedTexture struct {
	GUID   string `json:"guid,omitempty"`
	FileID int64  `json:"m_FileID"`
	PathID int64  `json:"m_PathID,omitempty"`
}

type tiling struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
	W float64 `json:"w,omitempty"`
}

// flatDoc is the flat encoding document.
type flatDoc struct {
	Textures map[string]*string `json:"textures"`
	Floats   map[string]float64 `json:"floats,omitempty"`
	Ints     map[string]int64   `json:"ints,omitempty"`
	Colors   map[string]Color   `json:"colors,omitempty"`
	Vectors  map[string]Vector  `json:"vectors,omitempty"`
	Name     string             `json:"name,omitempty"`
	Shader   string             `json:"shader,omitempty"`
}

// buildNested converts a Material into the nested encoding.
func buildNested(m *Material) (*nestedDoc, error) {
	doc := &nestedDoc{
		Name: sourceName(m),
		SavedProperties: nestedProps{
			TexEnvs: make(map[string]nestedTexEnv, len(m.Textures)),
			Floats:  cloneMap(m.Floats),
			Ints:    cloneMap(m.Ints),
			Colors:  make(map[string]any, len(m.Colors)+len(m.Vectors)),
		},
	}
	if m.Shader != "" {
		doc.Shader = &nestedShader{Name: m.Shader}
	}

	for name, c := range m.Colors {
		doc.SavedProperties.Colors[name] = c
	}
	for name, v := range m.Vectors {
		if _, dup := m.Colors[name]; dup {
			return nil, fmt.Errorf("%w: %q is both color and vector", ErrIncompatibleEncoding, name)
		}
		doc.SavedProperties.Colors[name] = v
	}

	for name, t := range m.Textures {
		env := nestedTexEnv{Scale: toTiling(t.Scale), Offset: toTiling(t.Offset)}
		switch t.Type {
		case TextureKindNull:
		case TextureKindObject:
			env.Texture = &nestedTexture{FileID: t.FileID, PathID: t.PathID, GUID: t.GUID}
		case TextureKindPath:
			return nil, fmt.Errorf("%w: texture %q is a path reference", ErrIncompatibleEncoding, name)
		default:
			return nil, fmt.Errorf("%w: texture %q has kind %q", ErrIncompatibleEncoding, name, t.Type)
		}
		doc.SavedProperties.TexEnvs[name] = env
	}

	return doc, nil
}

// buildFlat converts a Material into the flat encoding.
func buildFlat(m *Material) (*flatDoc, error) {
	doc := &flatDoc{
		Textures: make(map[string]*string, len(m.Textures)),
		Floats:   m.Floats,
		Ints:     m.Ints,
		Colors:   m.Colors,
		Vectors:  m.Vectors,
		Name:     sourceName(m),
		Shader:   m.Shader,
	}

	for name, t := range m.Textures {
		switch t.Type {
		case TextureKindNull:
			doc.Textures[name] = nil
		case TextureKindPath:
			p := t.Path
			doc.Textures[name] = &p
		case TextureKindObject:
			return nil, fmt.Errorf("%w: texture %q is an object reference", ErrIncompatibleEncoding, name)
		default:
			return nil, fmt.Errorf("%w: texture %q has kind %q", ErrIncompatibleEncoding, name, t.Type)
		}
	}

	return doc, nil
}

// sourceName returns the name to encode; a name derived from the file path is omitted.
func sourceName(m *Material) string {
	if m.NameFromPath {
		return ""
	}
	return m.Name
}

func toTiling(v *Vector) *tiling {
	if v == nil {
		return nil
	}
	return &tiling{X: v.X, Y: v.Y, Z: v.Z, W: v.W}
}
