package wizard

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/dsl"
	"github.com/aretw0/stepform/pkg/schema"
)

// Redirector builds the location of a wizard step.
type Redirector func(index int) string

// StepURL returns a Redirector pointing at path with the step index in the
// query parameter param.
func StepURL(path, param string) Redirector {
	return func(index int) string {
		return path + "?" + url.Values{param: {strconv.Itoa(index)}}.Encode()
	}
}

// Form is the view serving one wizard step. Its triggers move between steps
// and conclude the wizard.
type Form struct {
	Wizard      *Wizard
	Step        domain.Step
	Title       string
	Description string

	redirect Redirector
}

// NewForm creates the view for the wizard's current step. A nil redirect
// targets the request path.
func NewForm(w *Wizard, redirect Redirector) *Form {
	if redirect == nil {
		redirect = StepURL(w.Request().Path, w.Definition().ParamName())
	}
	step := w.CurrentStep()
	return &Form{
		Wizard:      w,
		Step:        step,
		Title:       step.Title,
		Description: step.Description,
		redirect:    redirect,
	}
}

// OwnTriggers exposes the wizard table to the registry.
func (f *Form) OwnTriggers() *domain.Triggers[*Form] {
	return triggers
}

// SetupForm builds the current step's form, pre-filled with the saved step
// data and overridden by formdata when it carries a submission.
func (f *Form) SetupForm(formdata url.Values) *schema.Form {
	spec, _ := f.Wizard.Definition().Step(f.Step.Index)
	form := schema.NewForm(spec.Fields)
	form.Process(f.Step.Data, formdata)
	return form
}

// RedirectToStep redirects the client to the given step.
func (f *Form) RedirectToStep(index int) domain.Redirect {
	return domain.RedirectTo(f.redirect(index))
}

// MarshalJSON renders the step with an unsubmitted form.
func (f *Form) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title       string       `json:"title"`
		Description string       `json:"description,omitempty"`
		Step        int          `json:"step"`
		Form        *schema.Form `json:"form"`
	}{f.Title, f.Description, f.Step.Index, f.SetupForm(nil)})
}

// Triggers returns the navigation table shared by every wizard form.
func Triggers() *domain.Triggers[*Form] {
	return triggers
}

var triggers = dsl.New[*Form]().
	Add("previous").Title("Previous").Order(1).CSS("btn btn-secondary").
	When(notFirstStep).Do(previous).Builder().
	Add("next").Title("Next").Order(2).CSS("btn btn-primary").
	When(notLastStep).Do(next).Builder().
	Add("finish").Title("Finish").Order(2).CSS("btn btn-primary").
	When(lastStep).Do(finish).Builder().
	MustBuild()

func notFirstStep(f *Form, _ *domain.Request) bool {
	return !f.Wizard.IsFirst()
}

func notLastStep(f *Form, _ *domain.Request) bool {
	return f.Wizard.Index() < f.Wizard.Len()
}

func lastStep(f *Form, _ *domain.Request) bool {
	return f.Wizard.IsLast()
}

func previous(_ context.Context, f *Form, _ *domain.Request, _ url.Values) (any, error) {
	return f.RedirectToStep(f.Step.Index - 1), nil
}

func next(ctx context.Context, f *Form, _ *domain.Request, data url.Values) (any, error) {
	form, ok := f.validated(data)
	if !ok {
		return f.invalid(form), nil
	}
	if err := f.Wizard.SaveStep(ctx, form.Data()); err != nil {
		return nil, err
	}
	return f.RedirectToStep(f.Step.Index + 1), nil
}

func finish(ctx context.Context, f *Form, _ *domain.Request, data url.Values) (any, error) {
	form, ok := f.validated(data)
	if !ok {
		return f.invalid(form), nil
	}
	return f.Wizard.Save(ctx, form.Data())
}

func (f *Form) validated(data url.Values) (*schema.Form, bool) {
	form := f.SetupForm(data)
	return form, form.Validate()
}

func (f *Form) invalid(form *schema.Form) domain.Namespace {
	return domain.Namespace{
		"form":   form,
		"wizard": f.Wizard,
		"errors": form.Errors(),
	}
}
