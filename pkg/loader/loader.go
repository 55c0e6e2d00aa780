// Package loader reads wizard definitions from YAML or JSON files.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepform/pkg/schema"
	"github.com/aretw0/stepform/pkg/wizard"
)

// WizardFile is the on-disk shape of a wizard definition.
type WizardFile struct {
	Key   string     `yaml:"key" json:"key"`
	Param string     `yaml:"param,omitempty" json:"param,omitempty"`
	Steps []StepFile `yaml:"steps" json:"steps"`
}

// StepFile describes one step.
type StepFile struct {
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []FieldFile `yaml:"fields" json:"fields"`
}

// FieldFile describes one field. Type accepts the names understood by
// schema.ParseType; Options is a shorthand for a choice type.
type FieldFile struct {
	Name     string   `yaml:"name" json:"name"`
	Label    string   `yaml:"label,omitempty" json:"label,omitempty"`
	Type     string   `yaml:"type,omitempty" json:"type,omitempty"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Default  any      `yaml:"default,omitempty" json:"default,omitempty"`
}

// LoadFile reads a definition; files ending in .json are parsed as JSON,
// anything else as YAML.
func LoadFile(path string) (*wizard.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wizard definition: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes and validates a YAML definition. Unknown keys are errors.
func ParseYAML(data []byte) (*wizard.Definition, error) {
	var f WizardFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse wizard yaml: %w", err)
	}
	return f.Definition()
}

// ParseJSON decodes and validates a JSON definition. Unknown keys are errors.
func ParseJSON(data []byte) (*wizard.Definition, error) {
	var f WizardFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse wizard json: %w", err)
	}
	return f.Definition()
}

// Definition converts the file into a validated wizard.Definition.
func (f WizardFile) Definition() (*wizard.Definition, error) {
	def := &wizard.Definition{Key: f.Key, Param: f.Param}
	for i, s := range f.Steps {
		step := wizard.StepSpec{Title: s.Title, Description: s.Description}
		for _, ff := range s.Fields {
			field, err := ff.field()
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
			step.Fields = append(step.Fields, field)
		}
		def.Steps = append(def.Steps, step)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func (ff FieldFile) field() (schema.Field, error) {
	var typ schema.Type
	switch {
	case len(ff.Options) > 0:
		if ff.Type != "" && ff.Type != "choice" {
			return schema.Field{}, fmt.Errorf("field %q: options require type choice, got %q", ff.Name, ff.Type)
		}
		typ = schema.Choice(ff.Options...)
	default:
		var err error
		if typ, err = schema.ParseType(ff.Type); err != nil {
			return schema.Field{}, fmt.Errorf("field %q: %w", ff.Name, err)
		}
	}
	return schema.Field{
		Name:     ff.Name,
		Label:    ff.Label,
		Type:     typ,
		Required: ff.Required,
		Default:  ff.Default,
	}, nil
}
