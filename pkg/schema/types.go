package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Type defines the contract for field conversion and validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Parse converts a raw submitted string into a typed value.
	Parse(raw string) (any, error)
	// Validate checks if an already typed value conforms to this type.
	// Values restored from JSON (float64 for numbers) are accepted.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType accepts any text.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Parse(raw string) (any, error) { return raw, nil }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType accepts whole numbers.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Parse(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("not a whole number: %q", raw)
	}
	return n, nil
}

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType accepts decimal numbers.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Parse(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return f, nil
}

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType accepts checkbox-style values ("on", "true", "yes", "1" ...).
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Parse(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "y", "yes", "true", "1":
		return true, nil
	case "", "off", "n", "no", "false", "0":
		return false, nil
	default:
		return nil, fmt.Errorf("not a boolean: %q", raw)
	}
}

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ChoiceType accepts one of a fixed set of strings.
type ChoiceType struct {
	options []string
}

func (t *ChoiceType) Name() string {
	return "choice(" + strings.Join(t.options, "|") + ")"
}

// Options returns the accepted values.
func (t *ChoiceType) Options() []string {
	return slices.Clone(t.options)
}

func (t *ChoiceType) Parse(raw string) (any, error) {
	if err := t.Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (t *ChoiceType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !slices.Contains(t.options, s) {
		return fmt.Errorf("%q is not one of %v", s, t.options)
	}
	return nil
}

// CustomType wraps a base type with an extra user-defined check.
type CustomType struct {
	name     string
	base     Type
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Parse(raw string) (any, error) {
	v, err := t.base.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := t.validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (t *CustomType) Validate(value any) error {
	if err := t.base.Validate(value); err != nil {
		return err
	}
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type.
func String() Type { return &StringType{} }

// Int creates an integer type.
func Int() Type { return &IntType{} }

// Float creates a float type.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Choice creates a type accepting only the given options.
func Choice(options ...string) Type { return &ChoiceType{options: options} }

// Custom creates a named type that parses like base and then applies validate.
func Custom(name string, base Type, validate func(any) error) Type {
	return &CustomType{name: name, base: base, validate: validate}
}

// ParseType converts a type name to a Type.
// Supports "string", "int", "float", "bool", "text" (alias of string) and
// "choice(a|b|c)".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if rest, ok := strings.CutPrefix(typeStr, "choice("); ok && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSuffix(rest, ")")
		if rest == "" {
			return nil, fmt.Errorf("choice type needs at least one option")
		}
		return Choice(strings.Split(rest, "|")...), nil
	}

	switch typeStr {
	case "", "string", "text":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
