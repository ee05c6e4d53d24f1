package matclass

import (
	"fmt"
	"strconv"
	"strings"
)

//go:generate go tool stringer -type=PropertyKind -trimprefix=Kind -output=kind_string.go

// PropertyKind represents the declared type of a shader property.
type PropertyKind int

const (
	// KindFloat indicates a scalar float property (ranges, sliders).
	KindFloat PropertyKind = iota
	// KindInt indicates an integer or enum property.
	KindInt
	// KindColor indicates an RGBA color property.
	KindColor
	// KindVector indicates a four component vector property.
	KindVector
	// KindTexture indicates a texture slot.
	KindTexture
	// KindBool indicates a toggle property.
	KindBool
)

// ParsePropertyKind parses a lowercase kind name.
func ParsePropertyKind(s string) (PropertyKind, bool) {
	switch s {
	case "float", "range":
		return KindFloat, true
	case "int", "integer", "enum":
		return KindInt, true
	case "color":
		return KindColor, true
	case "vector":
		return KindVector, true
	case "texture", "tex":
		return KindTexture, true
	case "bool", "toggle":
		return KindBool, true
	default:
		return 0, false
	}
}

// Valid reports whether k is a known kind.
func (k PropertyKind) Valid() bool {
	return k >= KindFloat && k <= KindBool
}

// MarshalText encodes the kind as its lowercase name.
func (k PropertyKind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText decodes a kind name accepted by ParsePropertyKind.
func (k *PropertyKind) UnmarshalText(b []byte) error {
	v, ok := ParsePropertyKind(strings.ToLower(string(b)))
	if !ok {
		return fmt.Errorf("unknown property kind %q", b)
	}
	*k = v
	return nil
}

// Value is a typed property value. The set of implementations is closed:
// FloatValue, IntValue, ColorValue, VectorValue, TextureValue and BoolValue.
type Value interface {
	Kind() PropertyKind
	fmt.Stringer
	value()
}

// FloatValue is a float property value.
type FloatValue float64

// IntValue is an integer property value.
type IntValue int64

// BoolValue is a toggle property value.
type BoolValue bool

// ColorValue is a color property value.
type ColorValue Color

// VectorValue is a vector property value.
type VectorValue Vector

// TextureValue is a texture slot value.
type TextureValue TextureRef

// Kind implements Value.
func (FloatValue) Kind() PropertyKind { return KindFloat }

// Kind implements Value.
func (IntValue) Kind() PropertyKind { return KindInt }

// Kind implements Value.
func (BoolValue) Kind() PropertyKind { return KindBool }

// Kind implements Value.
func (ColorValue) Kind() PropertyKind { return KindColor }

// Kind implements Value.
func (VectorValue) Kind() PropertyKind { return KindVector }

// Kind implements Value.
func (TextureValue) Kind() PropertyKind { return KindTexture }

func (FloatValue) value()   {}
func (IntValue) value()     {}
func (BoolValue) value()    {}
func (ColorValue) value()   {}
func (VectorValue) value()  {}
func (TextureValue) value() {}

// String implements fmt.Stringer.
func (v FloatValue) String() string { return formatFloat(float64(v)) }

// String implements fmt.Stringer.
func (v IntValue) String() string { return formatInt(int64(v)) }

// String implements fmt.Stringer.
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

// String implements fmt.Stringer.
func (v ColorValue) String() string {
	return "rgba(" + formatFloats(Color(v).ToArray()) + ")"
}

// String implements fmt.Stringer.
func (v VectorValue) String() string {
	return "(" + formatFloats(Vector(v).ToArray()) + ")"
}

// String implements fmt.Stringer.
func (v TextureValue) String() string { return TextureRef(v).String() }

// ValuesEqual compares two values of the same kind; floats, colors and vectors
// use eps tolerance, everything else compares exactly.
func ValuesEqual(a, b Value, eps float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case FloatValue:
		return floatEqual(float64(av), float64(b.(FloatValue)), eps)
	case IntValue:
		return av == b.(IntValue)
	case BoolValue:
		return av == b.(BoolValue)
	case ColorValue:
		return Color(av).EqualApprox(Color(b.(ColorValue)), eps)
	case VectorValue:
		return Vector(av).EqualApprox(Vector(b.(VectorValue)), eps)
	case TextureValue:
		return TextureRef(av).Equal(TextureRef(b.(TextureValue)))
	default:
		panic(fmt.Sprintf("matclass: unhandled value type %T", a))
	}
}

// ZeroValue returns the zero value of a kind.
func ZeroValue(k PropertyKind) Value {
	switch k {
	case KindFloat:
		return FloatValue(0)
	case KindInt:
		return IntValue(0)
	case KindBool:
		return BoolValue(false)
	case KindColor:
		return ColorValue{}
	case KindVector:
		return VectorValue{}
	case KindTexture:
		return TextureValue(NullTexture())
	default:
		panic(fmt.Sprintf("matclass: unhandled property kind %v", k))
	}
}

// formatFloat formats a float64 value to a string.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatInt formats an int64 value to a string.
func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatFloats joins floats with commas.
func formatFloats(vals []float64) string {
	buf := make([]byte, 0, len(vals)*6)
	for i, v := range vals {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return string(buf)
}
