/*
Package stepform is a form action dispatcher with a session-backed multi-step
wizard on top.

A view type declares its actions ("triggers") once, with the dsl builder:

	var triggers = dsl.New[*Document]().
		Add("save").Title("Save").Order(1).Do(save).Builder().
		Add("publish").When(isDraft).Do(publish).Builder().
		MustBuild()

form.View dispatches a submission to the trigger named by its "form.trigger"
field, after checking the trigger's condition. The wizard package builds a
three-trigger view (previous, next, finish) over an ordered list of steps whose
data lives in the client session.

WizardServer wires it all for HTTP:

	srv := stepform.NewWizardServer(stepform.WithStore(store))
	def, _ := loader.LoadFile("signup.yaml")
	_ = srv.Mount("/signup", def, nil)
	http.ListenAndServe(":8080", srv)
*/
package stepform
