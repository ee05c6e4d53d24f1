package matclass

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Nested encoding keys.
const (
	keySavedProperties = "m_SavedProperties"
	keyFloats          = "m_Floats"
	keyInts            = "m_Ints"
	keyColors          = "m_Colors"
	keyTexEnvs         = "m_TexEnvs"
	keyTexture         = "m_Texture"
	keyFileID          = "m_FileID"
	keyPathID          = "m_PathID"
	keyScale           = "m_Scale"
	keyOffset          = "m_Offset"
	keyName            = "m_Name"
	keyShader          = "m_Shader"
)

// Flat encoding keys.
const (
	flatTextures = "textures"
	flatFloats   = "floats"
	flatInts     = "ints"
	flatColors   = "colors"
	flatVectors  = "vectors"
	flatName     = "name"
	flatShader   = "shader"
)

// Parse parses a material description from bytes.
func Parse(data []byte, opt *AdaptOptions) (*Material, error) {
	return Decode(bytes.NewReader(data), opt)
}

// Decode parses a material description from reader.
func Decode(r io.Reader, opt *AdaptOptions) (*Material, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, malformedf("decode json: %v", err)
	}

	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, malformedf("top level must be an object, got %s", jsonType(doc))
	}

	return Adapt(raw, opt)
}

// DecodeFile parses a material description from a file.
func DecodeFile(path string, opt *AdaptOptions) (*Material, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	aopt := opt.normalize()
	if aopt.Path == "" {
		aopt.Path = path
	}
	return Parse(b, &aopt)
}

// DetectEncoding reports which encoding the top-level keys of raw belong to.
func DetectEncoding(raw map[string]any) (Encoding, bool) {
	if _, ok := raw[keySavedProperties]; ok {
		return EncodingNested, true
	}
	if _, ok := raw[flatTextures]; ok {
		return EncodingFlat, true
	}
	return EncodingAuto, false
}

// Adapt converts an already decoded JSON object into a Material.
// Numbers may be float64 or json.Number.
func Adapt(raw map[string]any, opt *AdaptOptions) (*Material, error) {
	aopt := opt.normalize()
	if raw == nil {
		return nil, malformedf("empty document")
	}
	if !aopt.DisableUnwrap {
		raw = unwrapMaterial(raw)
	}

	enc := aopt.Encoding
	if enc == EncodingAuto {
		detected, ok := DetectEncoding(raw)
		if !ok {
			return nil, malformedf("neither %s nor %s present", keySavedProperties, flatTextures)
		}
		enc = detected
	}

	var (
		m   *Material
		err error
	)
	switch enc {
	case EncodingNested:
		m, err = adaptNested(raw)
	case EncodingFlat:
		m, err = adaptFlat(raw)
	default:
		return nil, malformedf("unknown encoding %q", enc)
	}
	if err != nil {
		return nil, err
	}

	m.Path = aopt.Path
	if m.Name == "" && m.Path != "" {
		base := filepath.Base(normalizeOSPath(m.Path))
		m.Name = strings.TrimSuffix(base, filepath.Ext(base))
		m.NameFromPath = true
	}

	return m, nil
}

// unwrapMaterial unwraps {"Material": {...}} documents produced by YAML-to-JSON exports.
func unwrapMaterial(raw map[string]any) map[string]any {
	if len(raw) != 1 {
		return raw
	}
	inner, ok := raw["Material"].(map[string]any)
	if !ok {
		return raw
	}
	return inner
}

// adaptNested converts the nested "saved properties" encoding.
func adaptNested(raw map[string]any) (*Material, error) {
	spRaw, ok := raw[keySavedProperties]
	if !ok {
		return nil, malformedf("missing %s", keySavedProperties)
	}
	sp, ok := spRaw.(map[string]any)
	if !ok {
		return nil, malformedf("%s must be an object, got %s", keySavedProperties, jsonType(spRaw))
	}

	m := NewMaterial("")
	m.Encoding = EncodingNested
	if s, ok := raw[keyName].(string); ok {
		m.Name = s
	}
	m.Shader = shaderName(raw[keyShader])

	floats, err := sectionEntries(sp, keyFloats)
	if err != nil {
		return nil, err
	}
	for _, e := range floats {
		f, ok := toFloat(e.val)
		if !ok {
			return nil, malformedf("%s entry %q: expected number, got %s", keyFloats, e.name, jsonType(e.val))
		}
		m.Floats[e.name] = f
	}

	ints, err := sectionEntries(sp, keyInts)
	if err != nil {
		return nil, err
	}
	for _, e := range ints {
		i, ok := toInt(e.val)
		if !ok {
			return nil, malformedf("%s entry %q: expected integer, got %s", keyInts, e.name, jsonType(e.val))
		}
		m.Ints[e.name] = i
	}

	colors, err := sectionEntries(sp, keyColors)
	if err != nil {
		return nil, err
	}
	for _, e := range colors {
		if err := m.putColorOrVector(keyColors, e.name, e.val); err != nil {
			return nil, err
		}
	}

	texEnvs, err := sectionEntries(sp, keyTexEnvs)
	if err != nil {
		return nil, err
	}
	for _, e := range texEnvs {
		ref, err := parseTexEnv(e.name, e.val)
		if err != nil {
			return nil, err
		}
		m.Textures[e.name] = ref
	}

	return m, nil
}

// adaptFlat converts the flat name-to-path encoding.
func adaptFlat(raw map[string]any) (*Material, error) {
	texRaw, ok := raw[flatTextures]
	if !ok {
		return nil, malformedf("missing %s", flatTextures)
	}
	textures, ok := texRaw.(map[string]any)
	if !ok {
		return nil, malformedf("%s must be an object, got %s", flatTextures, jsonType(texRaw))
	}

	m := NewMaterial("")
	m.Encoding = EncodingFlat
	if s, ok := raw[flatName].(string); ok {
		m.Name = s
	}
	m.Shader = shaderName(raw[flatShader])

	for _, name := range sortedKeys(textures) {
		switch v := textures[name].(type) {
		case nil:
			m.Textures[name] = NullTexture()
		case string:
			m.Textures[name] = PathTexture(v)
		default:
			return nil, malformedf("%s entry %q: expected path or null, got %s", flatTextures, name, jsonType(v))
		}
	}

	floats, err := flatSection(raw, flatFloats)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(floats) {
		f, ok := toFloat(floats[name])
		if !ok {
			return nil, malformedf("%s entry %q: expected number, got %s", flatFloats, name, jsonType(floats[name]))
		}
		m.Floats[name] = f
	}

	ints, err := flatSection(raw, flatInts)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(ints) {
		i, ok := toInt(ints[name])
		if !ok {
			return nil, malformedf("%s entry %q: expected integer, got %s", flatInts, name, jsonType(ints[name]))
		}
		m.Ints[name] = i
	}

	colors, err := flatSection(raw, flatColors)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(colors) {
		if err := m.putColorOrVector(flatColors, name, colors[name]); err != nil {
			return nil, err
		}
	}

	vectors, err := flatSection(raw, flatVectors)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(vectors) {
		v, ok := parseVector(vectors[name])
		if !ok {
			return nil, malformedf("%s entry %q: expected vector, got %s", flatVectors, name, jsonType(vectors[name]))
		}
		m.Vectors[name] = v
	}

	return m, nil
}

// entry is a single named property value from a section.
type entry struct {
	val  any    // Raw JSON value
	name string // Property name
}

// sectionEntries reads a nested section in either map form or one of the legacy list forms:
// [{name: value}] and [{first: {name: N}, second: value}].
func sectionEntries(sp map[string]any, key string) ([]entry, error) {
	raw, ok := sp[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]any:
		out := make([]entry, 0, len(v))
		for _, name := range sortedKeys(v) {
			out = append(out, entry{name: name, val: v[name]})
		}
		return out, nil

	case []any:
		out := make([]entry, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, malformedf("%s[%d]: expected object, got %s", key, i, jsonType(item))
			}

			// Legacy pair form.
			if first, ok := obj["first"]; ok {
				name := pairName(first)
				if name == "" {
					return nil, malformedf("%s[%d]: pair without name", key, i)
				}
				out = append(out, entry{name: name, val: obj["second"]})
				continue
			}

			if len(obj) != 1 {
				return nil, malformedf("%s[%d]: expected single-key object, got %d keys", key, i, len(obj))
			}
			for name, val := range obj {
				out = append(out, entry{name: name, val: val})
			}
		}
		return out, nil

	default:
		return nil, malformedf("%s: expected object or list, got %s", key, jsonType(raw))
	}
}

// pairName extracts the property name from a legacy "first" key.
func pairName(first any) string {
	switch f := first.(type) {
	case string:
		return f
	case map[string]any:
		if s, ok := f["name"].(string); ok {
			return s
		}
	}
	return ""
}

// flatSection reads an optional flat-encoding map.
func flatSection(raw map[string]any, key string) (map[string]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformedf("%s must be an object, got %s", key, jsonType(v))
	}
	return m, nil
}

// putColorOrVector stores an {r,g,b,a} color or an {x,y,z,w} vector.
func (m *Material) putColorOrVector(section, name string, val any) error {
	switch v := val.(type) {
	case map[string]any:
		if _, ok := v["r"]; ok {
			c, ok := parseColorObject(v)
			if !ok {
				return malformedf("%s entry %q: invalid color", section, name)
			}
			m.Colors[name] = c
			return nil
		}
		if _, ok := v["x"]; ok {
			vec, ok := parseVector(v)
			if !ok {
				return malformedf("%s entry %q: invalid vector", section, name)
			}
			m.Vectors[name] = vec
			return nil
		}
		return malformedf("%s entry %q: object has neither r,g,b,a nor x,y,z,w", section, name)
	case []any:
		vals, ok := toFloats(v)
		if !ok {
			return malformedf("%s entry %q: non-numeric component", section, name)
		}
		c, ok := colorFromArray(vals)
		if !ok {
			return malformedf("%s entry %q: color must have 3 or 4 components", section, name)
		}
		m.Colors[name] = c
		return nil
	default:
		return malformedf("%s entry %q: expected color, got %s", section, name, jsonType(val))
	}
}

// parseColorObject parses {r,g,b[,a]}; alpha defaults to 1.
func parseColorObject(v map[string]any) (Color, bool) {
	c := Color{A: 1}
	for _, ch := range []struct {
		dst *float64
		key string
	}{{&c.R, "r"}, {&c.G, "g"}, {&c.B, "b"}, {&c.A, "a"}} {
		raw, ok := v[ch.key]
		if !ok {
			if ch.key == "a" {
				continue
			}
			return Color{}, false
		}
		f, ok := toFloat(raw)
		if !ok {
			return Color{}, false
		}
		*ch.dst = f
	}
	return c, true
}

// parseVector parses {x,y[,z[,w]]} or a numeric array.
func parseVector(val any) (Vector, bool) {
	switch v := val.(type) {
	case map[string]any:
		var out Vector
		for _, ch := range []struct {
			dst      *float64
			key      string
			required bool
		}{{&out.X, "x", true}, {&out.Y, "y", true}, {&out.Z, "z", false}, {&out.W, "w", false}} {
			raw, ok := v[ch.key]
			if !ok {
				if ch.required {
					return Vector{}, false
				}
				continue
			}
			f, ok := toFloat(raw)
			if !ok {
				return Vector{}, false
			}
			*ch.dst = f
		}
		return out, true
	case []any:
		vals, ok := toFloats(v)
		if !ok {
			return Vector{}, false
		}
		return vectorFromArray(vals)
	default:
		return Vector{}, false
	}
}

// parseTexEnv parses a texEnv entry. Both JSON null and a zero file ID without
// a GUID are the null-reference sentinel.
func parseTexEnv(name string, val any) (TextureRef, error) {
	env, ok := val.(map[string]any)
	if !ok {
		return TextureRef{}, malformedf("%s entry %q: expected object, got %s", keyTexEnvs, name, jsonType(val))
	}

	texRaw, ok := env[keyTexture]
	if !ok {
		return TextureRef{}, malformedf("%s entry %q: missing %s", keyTexEnvs, name, keyTexture)
	}

	var ref TextureRef
	switch tex := texRaw.(type) {
	case nil:
		ref = NullTexture()
	case map[string]any:
		fileID, ok := intField(tex, keyFileID, "fileID")
		if !ok {
			return TextureRef{}, malformedf("%s entry %q: invalid %s", keyTexEnvs, name, keyFileID)
		}
		pathID, ok := intField(tex, keyPathID, "pathID")
		if !ok {
			return TextureRef{}, malformedf("%s entry %q: invalid %s", keyTexEnvs, name, keyPathID)
		}
		guid, _ := tex["guid"].(string)
		if fileID == 0 && guid == "" {
			ref = NullTexture()
		} else {
			ref = ObjectTexture(fileID, pathID, guid)
		}
	default:
		return TextureRef{}, malformedf("%s entry %q: %s must be object or null, got %s", keyTexEnvs, name, keyTexture, jsonType(texRaw))
	}

	if raw, ok := env[keyScale]; ok && raw != nil {
		s, ok := parseVector(raw)
		if !ok {
			return TextureRef{}, malformedf("%s entry %q: invalid %s", keyTexEnvs, name, keyScale)
		}
		ref.Scale = &s
	}
	if raw, ok := env[keyOffset]; ok && raw != nil {
		o, ok := parseVector(raw)
		if !ok {
			return TextureRef{}, malformedf("%s entry %q: invalid %s", keyTexEnvs, name, keyOffset)
		}
		ref.Offset = &o
	}

	return ref, nil
}

// intField reads an optional integer field under any of keys; missing means zero.
func intField(obj map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok || raw == nil {
			continue
		}
		return toInt(raw)
	}
	return 0, true
}

// shaderName reads a shader name from a string or a {name: ...} object.
func shaderName(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]any:
		if n, ok := s["name"].(string); ok {
			return n
		}
	}
	return ""
}

// toFloat converts a decoded JSON number (or toggle bool) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// toInt converts a decoded JSON number to int64; fractional values are rejected.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// toFloats converts a JSON array to floats.
func toFloats(vals []any) ([]float64, bool) {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// sortedKeys returns map keys in sorted order.
func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// jsonType names the JSON type of a decoded value for error messages.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
