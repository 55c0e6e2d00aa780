package domain

const (
	// ActionField is the form field carrying the submitted trigger id.
	ActionField = "form.trigger"

	// TriggerPrefix namespaces generated trigger ids.
	TriggerPrefix = "trigger."

	// DefaultOrder is the sort order given to triggers that do not set one.
	DefaultOrder = 10

	// StepParam is the query parameter selecting the wizard step.
	StepParam = "step"
)
