package form

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/dsl"
	"github.com/aretw0/stepform/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	locked bool
	saved  url.Values
}

func newRequest(form url.Values) *domain.Request {
	return domain.NewRequest("POST", "/doc", nil, form)
}

func documentTriggers(t *testing.T) *domain.Triggers[*document] {
	t.Helper()
	b := dsl.New[*document]()
	b.Add("do_something").Title("Title").
		Do(func(ctx context.Context, d *document, req *domain.Request, data url.Values) (any, error) {
			return "I did something", nil
		})
	b.Add("save").Title("Save").
		When(func(d *document, req *domain.Request) bool { return !d.locked }).
		Do(func(ctx context.Context, d *document, req *domain.Request, data url.Values) (any, error) {
			d.saved = data
			return domain.RedirectTo("/doc"), nil
		})
	table, err := b.Build()
	require.NoError(t, err)
	return table
}

func TestView_EmptyTable(t *testing.T) {
	view := New[*document](nil)
	doc := &document{}
	req := newRequest(nil)

	assert.Equal(t, 0, view.Triggers().Len())
	assert.Equal(t, domain.Namespace{
		"actions": []domain.Action{},
		"request": req,
		"view":    doc,
	}, view.Namespace(doc, req, nil))

	_, err := view.ProcessAction(context.Background(), doc, req)
	assert.ErrorIs(t, err, domain.ErrNoActionSubmitted)

	_, err = view.ProcessAction(context.Background(), doc, newRequest(url.Values{domain.ActionField: {"test"}}))
	assert.ErrorIs(t, err, domain.ErrActionNotFound)
}

func TestView_ProcessAction_RoundTrip(t *testing.T) {
	view := New(documentTriggers(t))
	doc := &document{}

	res, err := view.ProcessAction(context.Background(), doc,
		newRequest(url.Values{domain.ActionField: {"trigger.do_something"}}))
	require.NoError(t, err)
	assert.Equal(t, "I did something", res)
}

func TestView_ProcessAction_StripsRoutingField(t *testing.T) {
	view := New(documentTriggers(t))
	doc := &document{}
	req := newRequest(url.Values{
		domain.ActionField: {"trigger.save"},
		"title":            {"Hello"},
	})

	res, err := view.ProcessAction(context.Background(), doc, req)
	require.NoError(t, err)
	assert.Equal(t, domain.RedirectTo("/doc"), res)
	assert.Equal(t, url.Values{"title": {"Hello"}}, doc.saved)
	assert.NotContains(t, req.Form, domain.ActionField)
}

func TestView_ProcessAction_Errors(t *testing.T) {
	view := New(documentTriggers(t))

	tests := []struct {
		name string
		doc  *document
		form url.Values
		want error
	}{
		{name: "no action", doc: &document{}, form: url.Values{"title": {"x"}}, want: domain.ErrNoActionSubmitted},
		{name: "empty action", doc: &document{}, form: url.Values{domain.ActionField: {""}}, want: domain.ErrNoActionSubmitted},
		{name: "unknown action", doc: &document{}, form: url.Values{domain.ActionField: {"trigger.nope"}}, want: domain.ErrActionNotFound},
		{name: "condition false", doc: &document{locked: true}, form: url.Values{domain.ActionField: {"trigger.save"}}, want: domain.ErrActionNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := view.ProcessAction(context.Background(), tt.doc, newRequest(tt.form))
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsDispatchError(err))
			assert.Nil(t, tt.doc.saved)
		})
	}
}

func TestView_ProcessAction_HandlerErrorUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	b := dsl.New[*document]()
	b.Add("fail").Do(func(ctx context.Context, d *document, req *domain.Request, data url.Values) (any, error) {
		return nil, boom
	})
	view := New(b.MustBuild())

	_, err := view.ProcessAction(context.Background(), &document{},
		newRequest(url.Values{domain.ActionField: {"trigger.fail"}}))
	assert.Same(t, boom, err)
	assert.False(t, IsDispatchError(err))
}

func TestView_Namespace(t *testing.T) {
	view := New(documentTriggers(t))
	req := newRequest(nil)

	open := view.Namespace(&document{}, req, map[string]any{"title": "Edit", "view": "overridden"})
	assert.Equal(t, []domain.Action{
		{ID: "trigger.do_something", Title: "Title", Order: 10},
		{ID: "trigger.save", Title: "Save", Order: 10},
	}, open["actions"])
	assert.Equal(t, "Edit", open["title"])
	assert.Equal(t, "overridden", open["view"], "extras win on collision")
	assert.Same(t, req, open["request"])

	locked := view.Namespace(&document{locked: true}, req, nil)
	assert.Equal(t, []domain.Action{
		{ID: "trigger.do_something", Title: "Title", Order: 10},
	}, locked["actions"])
}

func TestView_CustomActionField(t *testing.T) {
	view := New(documentTriggers(t), WithActionField("action"))
	assert.Equal(t, "action", view.ActionField())

	res, err := view.ProcessAction(context.Background(), &document{},
		newRequest(url.Values{"action": {"trigger.do_something"}}))
	require.NoError(t, err)
	assert.Equal(t, "I did something", res)
}

func TestView_Hooks(t *testing.T) {
	var outcomes []string
	hooks := domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			outcomes = append(outcomes, e.ActionID+":"+e.Outcome)
		},
	}
	view := New(documentTriggers(t), WithLifecycleHooks(hooks))
	ctx := context.Background()

	_, _ = view.ProcessAction(ctx, &document{}, newRequest(nil))
	_, _ = view.ProcessAction(ctx, &document{}, newRequest(url.Values{domain.ActionField: {"trigger.x"}}))
	_, _ = view.ProcessAction(ctx, &document{locked: true}, newRequest(url.Values{domain.ActionField: {"trigger.save"}}))
	_, _ = view.ProcessAction(ctx, &document{}, newRequest(url.Values{domain.ActionField: {"trigger.save"}}))

	assert.Equal(t, []string{
		":no_action",
		"trigger.x:not_found",
		"trigger.save:not_allowed",
		"trigger.save:ok",
	}, outcomes)
}

type page interface {
	Name() string
}

type plainPage struct{}

func (plainPage) Name() string { return "plain" }

type customPage struct {
	table *domain.Triggers[page]
}

func (customPage) Name() string                          { return "custom" }
func (p customPage) OwnTriggers() *domain.Triggers[page] { return p.table }

func pageTriggers(reply string) *domain.Triggers[page] {
	return dsl.New[page]().
		Add("open").Title("Open").
		Do(func(context.Context, page, *domain.Request, url.Values) (any, error) {
			return reply, nil
		}).Builder().
		MustBuild()
}

func TestFromRegistry_RegisteredTable(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, registry.Define(r, func() (*domain.Triggers[*document], error) {
		return documentTriggers(t), nil
	}))
	view := FromRegistry[*document](r)

	assert.Equal(t, 2, view.Triggers().Len())
	res, err := view.ProcessAction(context.Background(), &document{},
		newRequest(url.Values{domain.ActionField: {"trigger.do_something"}}))
	require.NoError(t, err)
	assert.Equal(t, "I did something", res)
	assert.Len(t, view.Actions(&document{locked: true}, newRequest(nil)), 1)
}

func TestFromRegistry_OwnerWinsPerView(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, registry.Define(r, func() (*domain.Triggers[page], error) {
		return pageTriggers("registered"), nil
	}))
	view := FromRegistry[page](r)

	open := func(p page) any {
		res, err := view.ProcessAction(context.Background(), p,
			newRequest(url.Values{domain.ActionField: {"trigger.open"}}))
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, "registered", open(plainPage{}))
	assert.Equal(t, "own", open(customPage{table: pageTriggers("own")}))
}

func TestFromRegistry_Unregistered(t *testing.T) {
	view := FromRegistry[*document](registry.NewRegistry())

	assert.Empty(t, view.Actions(&document{}, newRequest(nil)))
	_, err := view.ProcessAction(context.Background(), &document{},
		newRequest(url.Values{domain.ActionField: {"trigger.save"}}))
	assert.ErrorIs(t, err, domain.ErrActionNotFound)
}

func TestFromRegistry_BuildError(t *testing.T) {
	broken := errors.New("duplicate trigger")
	r := registry.NewRegistry()
	require.NoError(t, registry.Define(r, func() (*domain.Triggers[*document], error) {
		return nil, broken
	}))
	var outcomes []string
	view := FromRegistry[*document](r, WithLifecycleHooks(domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			outcomes = append(outcomes, e.Outcome)
		},
	}))

	_, err := view.ProcessAction(context.Background(), &document{},
		newRequest(url.Values{domain.ActionField: {"trigger.save"}}))
	assert.ErrorIs(t, err, broken)
	assert.False(t, IsDispatchError(err))
	assert.Equal(t, []string{domain.OutcomeError}, outcomes)
	assert.Empty(t, view.Actions(&document{}, newRequest(nil)))
	assert.Equal(t, 0, view.Triggers().Len())
}
