package matclass

import "math"

// Color represents RGBA color.
type Color struct {
	R float64 `json:"r" yaml:"r"` // Red channel component
	G float64 `json:"g" yaml:"g"` // Green channel component
	B float64 `json:"b" yaml:"b"` // Blue channel component
	A float64 `json:"a" yaml:"a"` // Alpha channel component
}

// Vector represents a four component shader vector.
type Vector struct {
	X float64 `json:"x" yaml:"x"` // X component
	Y float64 `json:"y" yaml:"y"` // Y component
	Z float64 `json:"z" yaml:"z"` // Z component
	W float64 `json:"w" yaml:"w"` // W component
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetColorRGBA creates a Color from RGBA values.
func SetColorRGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// SetColorRGB creates a Color with alpha=1.
func SetColorRGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// ToArray converts color to float array.
func (c Color) ToArray() []float64 {
	return []float64{c.R, c.G, c.B, c.A}
}

// IsFinite reports whether every channel is a finite number.
func (c Color) IsFinite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B) && isFinite(c.A)
}

// EqualApprox compares colors component-wise within eps.
func (c Color) EqualApprox(o Color, eps float64) bool {
	return floatEqual(c.R, o.R, eps) && floatEqual(c.G, o.G, eps) &&
		floatEqual(c.B, o.B, eps) && floatEqual(c.A, o.A, eps)
}

// ToArray converts vector to float array.
func (v Vector) ToArray() []float64 {
	return []float64{v.X, v.Y, v.Z, v.W}
}

// EqualApprox compares vectors component-wise within eps.
func (v Vector) EqualApprox(o Vector, eps float64) bool {
	return floatEqual(v.X, o.X, eps) && floatEqual(v.Y, o.Y, eps) &&
		floatEqual(v.Z, o.Z, eps) && floatEqual(v.W, o.W, eps)
}

// colorFromArray builds a Color from 3 or 4 components.
func colorFromArray(vals []float64) (Color, bool) {
	switch len(vals) {
	case 3:
		return SetColorRGB(vals[0], vals[1], vals[2]), true
	case 4:
		return SetColorRGBA(vals[0], vals[1], vals[2], vals[3]), true
	default:
		return Color{}, false
	}
}

// vectorFromArray builds a Vector from 2 to 4 components; missing ones are zero.
func vectorFromArray(vals []float64) (Vector, bool) {
	if len(vals) < 2 || len(vals) > 4 {
		return Vector{}, false
	}

	var v Vector
	dst := []*float64{&v.X, &v.Y, &v.Z, &v.W}
	for i, f := range vals {
		*dst[i] = f
	}
	return v, true
}

func floatEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= eps
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
