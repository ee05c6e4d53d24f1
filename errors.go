package matclass

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedStructure indicates the input matches neither known material encoding,
	// or one of its entries cannot be parsed.
	ErrMalformedStructure = errors.New("malformed material structure")

	// ErrUnresolvedTexture indicates a referenced texture cannot be loaded.
	ErrUnresolvedTexture = errors.New("unresolved texture")

	// ErrUnknownFamily indicates a shader family is not present in the registry.
	ErrUnknownFamily = errors.New("unknown shader family")

	// ErrValidation indicates a property value failed its declared type or range.
	ErrValidation = errors.New("validation failure")

	// ErrIncompatibleEncoding indicates a material cannot be expressed in the requested encoding.
	ErrIncompatibleEncoding = errors.New("incompatible encoding")

	// ErrRegistry indicates an invalid registry definition.
	ErrRegistry = errors.New("invalid registry")
)

// ValidationError describes why a value was rejected by ApplyCommon.
type ValidationError struct {
	Property string // Property name
	Shader   string // Shader declaring the rejected domain
	Reason   string // Human-readable reason
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Shader == "" {
		return fmt.Sprintf("%s: property %q: %s", ErrValidation, e.Property, e.Reason)
	}
	return fmt.Sprintf("%s: property %q (shader %q): %s", ErrValidation, e.Property, e.Shader, e.Reason)
}

// Unwrap returns ErrValidation so errors.Is works.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// malformedf wraps ErrMalformedStructure with a formatted message.
func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedStructure, fmt.Sprintf(format, args...))
}
