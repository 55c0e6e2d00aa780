/*
Package dsl provides a fluent builder for declaring the trigger table of a view.

Each view type assembles its table once, usually in a package-level variable,
instead of relying on reflection over its methods. Inheritance is explicit:
a derived view extends the table of its base (Extend for the same view type,
Inherit for an embedded one) and may override base triggers by declaring a
trigger with the same id.

Example usage:

	type Editor struct{ doc *Document }

	var editorTriggers = dsl.New[*Editor]().
		Add("save").Title("Save").CSS("btn btn-primary").Do(save).
		Builder().
		Add("cancel").Title("Cancel").Order(5).Do(cancel).
		Builder().
		MustBuild()

	// editorTriggers.IDs() == ["trigger.cancel", "trigger.save"]
*/
package dsl
