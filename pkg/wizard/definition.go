package wizard

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/schema"
)

// ErrInvalidDefinition is returned by Definition.Validate.
var ErrInvalidDefinition = errors.New("invalid wizard definition")

// StepSpec declares one step of a wizard.
type StepSpec struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      schema.Fields `json:"fields"`
}

// Definition is the static description of a wizard: where its data lives in
// the session, which query parameter selects the step, and the ordered steps.
type Definition struct {
	// Key is the session key holding the wizard payload.
	Key string `json:"key"`
	// Param is the query parameter carrying the 1-based step index.
	// Defaults to domain.StepParam.
	Param string     `json:"param,omitempty"`
	Steps []StepSpec `json:"steps"`
}

// Len returns the number of steps.
func (d *Definition) Len() int {
	return len(d.Steps)
}

// Step returns the declaration of the 1-based step index.
func (d *Definition) Step(index int) (StepSpec, bool) {
	if index < 1 || index > len(d.Steps) {
		return StepSpec{}, false
	}
	return d.Steps[index-1], true
}

// ParamName returns the step query parameter.
func (d *Definition) ParamName() string {
	if d.Param == "" {
		return domain.StepParam
	}
	return d.Param
}

// Validate checks that the definition is usable: a session key, at least one
// step, well-formed fields, and no field name shared between two steps.
func (d *Definition) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("%w: missing session key", ErrInvalidDefinition)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: %s has no steps", ErrInvalidDefinition, d.Key)
	}

	owner := make(map[string]int)
	for i, step := range d.Steps {
		if err := step.Fields.Check(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidDefinition, i+1, err)
		}
		for _, name := range step.Fields.Names() {
			if prev, ok := owner[name]; ok {
				return fmt.Errorf("%w: field %q declared by steps %d and %d", ErrInvalidDefinition, name, prev, i+1)
			}
			owner[name] = i + 1
		}
	}
	return nil
}
