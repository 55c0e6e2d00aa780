package schema

import (
	"encoding/json"
	"fmt"
)

// Field declares one input of a form.
type Field struct {
	Name     string
	Label    string
	Type     Type
	Required bool
	Default  any
}

// label falls back to the field name.
func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// MarshalJSON renders the field with its type name, for the presentation layer.
func (f Field) MarshalJSON() ([]byte, error) {
	typ := "string"
	if f.Type != nil {
		typ = f.Type.Name()
	}
	out := struct {
		Name     string   `json:"name"`
		Label    string   `json:"label"`
		Type     string   `json:"type"`
		Required bool     `json:"required,omitempty"`
		Default  any      `json:"default,omitempty"`
		Options  []string `json:"options,omitempty"`
	}{
		Name:     f.Name,
		Label:    f.label(),
		Type:     typ,
		Required: f.Required,
		Default:  f.Default,
	}
	if c, ok := f.Type.(*ChoiceType); ok {
		out.Options = c.Options()
	}
	return json.Marshal(out)
}

// Fields is an ordered list of field declarations.
type Fields []Field

// Names returns the field names in declaration order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name.
func (fs Fields) Lookup(name string) (Field, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check reports declaration mistakes: empty or duplicate names.
func (fs Fields) Check() error {
	seen := make(map[string]bool, len(fs))
	for i, f := range fs {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q declared twice", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

func (f Field) typ() Type {
	if f.Type == nil {
		return String()
	}
	return f.Type
}
