package wizard

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/schema"
)

// Payload is the storage strategy for the data collected by a wizard.
//
// Load receives whatever the session holds under the wizard key (nil when
// nothing was saved yet, or a JSON-shaped value after a round trip through a
// store). Value returns what should be written back.
type Payload interface {
	Load(raw any) error
	StepData(index int, fields schema.Fields) domain.StepData
	Merge(index int, data domain.StepData) error
	Value() any
}

// FlatPayload keeps one map per step, keyed by step index.
type FlatPayload struct {
	data domain.WizardData
}

// NewFlatPayload returns an empty per-step payload.
func NewFlatPayload() *FlatPayload {
	return &FlatPayload{data: domain.WizardData{}}
}

func (p *FlatPayload) Load(raw any) error {
	p.data = domain.WizardData{}
	if raw == nil {
		return nil
	}
	if err := decode(raw, &p.data); err != nil {
		return fmt.Errorf("decoding wizard data: %w", err)
	}
	return nil
}

func (p *FlatPayload) StepData(index int, _ schema.Fields) domain.StepData {
	out := domain.StepData{}
	for k, v := range p.data[index] {
		out[k] = v
	}
	return out
}

// Merge overwrites the submitted keys of a step and keeps the others.
func (p *FlatPayload) Merge(index int, data domain.StepData) error {
	step, ok := p.data[index]
	if !ok {
		step = domain.StepData{}
		p.data[index] = step
	}
	for k, v := range data {
		step[k] = v
	}
	return nil
}

func (p *FlatPayload) Value() any {
	return p.data.Clone()
}

// Data returns a copy of every saved step.
func (p *FlatPayload) Data() domain.WizardData {
	return p.data.Clone()
}

// ModelPayload stores the whole wizard in a single struct M. Each step reads
// and writes the model fields named after its form fields.
type ModelPayload[M any] struct {
	model M
}

// NewModelPayload returns a payload holding the zero value of M.
func NewModelPayload[M any]() *ModelPayload[M] {
	return &ModelPayload[M]{}
}

func (p *ModelPayload[M]) Load(raw any) error {
	var zero M
	p.model = zero
	if raw == nil {
		return nil
	}
	if err := decode(raw, &p.model); err != nil {
		return fmt.Errorf("decoding wizard model: %w", err)
	}
	return nil
}

// StepData projects the model onto the step fields. Zero-valued fields are
// left out so the step form falls back to its defaults.
func (p *ModelPayload[M]) StepData(_ int, fields schema.Fields) domain.StepData {
	values := p.values()
	out := domain.StepData{}
	for _, f := range fields {
		for k, v := range values {
			if !strings.EqualFold(k, f.Name) {
				continue
			}
			if v != nil && !reflect.ValueOf(v).IsZero() {
				out[f.Name] = v
			}
			break
		}
	}
	return out
}

// Merge decodes the submitted keys into the model; other fields are untouched.
func (p *ModelPayload[M]) Merge(_ int, data domain.StepData) error {
	if err := decode(map[string]any(data), &p.model); err != nil {
		return fmt.Errorf("updating wizard model: %w", err)
	}
	return nil
}

func (p *ModelPayload[M]) Value() any {
	return p.values()
}

// Model returns the current model.
func (p *ModelPayload[M]) Model() M {
	return p.model
}

func (p *ModelPayload[M]) values() map[string]any {
	out := map[string]any{}
	// Decoding a struct into a map only fails on non-struct models.
	if err := mapstructure.Decode(p.model, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// decode converts session values (possibly restored from JSON, with string
// map keys and float64 numbers) into out.
func decode(raw, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
