package domain

// StepData is the saved payload of a single wizard step (field -> value).
type StepData map[string]any

// WizardData maps a 1-based step index to that step's saved payload.
type WizardData map[int]StepData

// Clone returns a copy deep enough that mutating a step does not leak into
// the original.
func (d WizardData) Clone() WizardData {
	out := make(WizardData, len(d))
	for i, step := range d {
		cp := make(StepData, len(step))
		for k, v := range step {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// Step is the view of one wizard step for the current request. It is derived
// on demand from the wizard payload and never stored on its own.
type Step struct {
	Index       int      `json:"index"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Data        StepData `json:"data"`
}
