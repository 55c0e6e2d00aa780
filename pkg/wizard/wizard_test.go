package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/schema"
)

type fakeSession struct {
	values map[string]any
	saves  int
	err    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{values: map[string]any{}}
}

func (s *fakeSession) ID() string                 { return "sess-1" }
func (s *fakeSession) Get(key string) (any, bool) { v, ok := s.values[key]; return v, ok }
func (s *fakeSession) Set(key string, value any)  { s.values[key] = value }
func (s *fakeSession) Delete(key string)          { delete(s.values, key) }
func (s *fakeSession) Save(context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	return nil
}

func signup() *Definition {
	return &Definition{
		Key: "signup",
		Steps: []StepSpec{
			{Title: "Account", Fields: schema.Fields{
				{Name: "email", Type: schema.String(), Required: true},
			}},
			{Title: "Profile", Description: "About you", Fields: schema.Fields{
				{Name: "name", Type: schema.String(), Required: true},
				{Name: "age", Type: schema.Int()},
			}},
			{Title: "Confirm", Fields: schema.Fields{
				{Name: "terms", Type: schema.Bool()},
			}},
		},
	}
}

func request(step string, sess domain.Session, form url.Values) *domain.Request {
	q := url.Values{}
	if step != "" {
		q.Set("step", step)
	}
	req := domain.NewRequest("POST", "/signup", q, form)
	req.Session = sess
	return req
}

func TestResolveStepIndex(t *testing.T) {
	tests := []struct {
		step    string
		want    int
		wantErr bool
	}{
		{step: "", want: 1},
		{step: "1", want: 1},
		{step: "3", want: 3},
		{step: "0", wantErr: true},
		{step: "4", wantErr: true},
		{step: "-1", wantErr: true},
		{step: "two", wantErr: true},
		{step: "+2", wantErr: true},
		{step: "02", wantErr: true},
		{step: " 2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("step="+tt.step, func(t *testing.T) {
			got, err := ResolveStepIndex(request(tt.step, nil, nil), "step", 3)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrStepOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("out of range", func(t *testing.T) {
		_, err := New(ctx, signup(), request("4", newFakeSession(), nil))
		assert.ErrorIs(t, err, domain.ErrStepOutOfRange)
	})

	t.Run("defaults to first step", func(t *testing.T) {
		w, err := New(ctx, signup(), request("", newFakeSession(), nil))
		require.NoError(t, err)
		assert.Equal(t, 1, w.Index())
		assert.True(t, w.IsFirst())
		assert.False(t, w.IsLast())
		assert.Equal(t, "Account", w.CurrentStep().Title)
		assert.Empty(t, w.CurrentStep().Data)
	})

	t.Run("loads saved step data", func(t *testing.T) {
		sess := newFakeSession()
		sess.values["signup"] = domain.WizardData{2: {"name": "Ada"}}

		w, err := New(ctx, signup(), request("2", sess, nil))
		require.NoError(t, err)
		step := w.CurrentStep()
		assert.Equal(t, 2, step.Index)
		assert.Equal(t, "About you", step.Description)
		assert.Equal(t, domain.StepData{"name": "Ada"}, step.Data)
	})

	t.Run("custom param", func(t *testing.T) {
		def := signup()
		def.Param = "page"
		req := domain.NewRequest("GET", "/signup", url.Values{"page": {"3"}}, nil)
		w, err := New(ctx, def, req)
		require.NoError(t, err)
		assert.Equal(t, 3, w.Index())
	})
}

func TestSaveStep_KeepsOtherSteps(t *testing.T) {
	ctx := context.Background()
	sess := newFakeSession()
	sess.values["signup"] = domain.WizardData{1: {"email": "ada@example.com"}}

	w, err := New(ctx, signup(), request("2", sess, nil))
	require.NoError(t, err)
	require.NoError(t, w.SaveStep(ctx, domain.StepData{"name": "Ada"}))

	assert.Equal(t, 1, sess.saves)
	assert.Equal(t, domain.WizardData{
		1: {"email": "ada@example.com"},
		2: {"name": "Ada"},
	}, sess.values["signup"])
}

func TestSaveStep_Errors(t *testing.T) {
	ctx := context.Background()

	w, err := New(ctx, signup(), request("1", nil, nil))
	require.NoError(t, err)
	assert.ErrorIs(t, w.SaveStep(ctx, domain.StepData{}), ErrNoSession)

	boom := errors.New("disk full")
	sess := newFakeSession()
	sess.err = boom
	w, err = New(ctx, signup(), request("1", sess, nil))
	require.NoError(t, err)
	assert.ErrorIs(t, w.SaveStep(ctx, domain.StepData{"email": "x"}), boom)
}

func TestSave_Concludes(t *testing.T) {
	ctx := context.Background()
	sess := newFakeSession()
	var seen domain.WizardData

	var events []domain.EventType
	hooks := domain.LifecycleHooks{
		OnStepSaved: func(_ context.Context, e *domain.StepEvent) { events = append(events, e.Type) },
		OnConclude:  func(_ context.Context, e *domain.StepEvent) { events = append(events, e.Type) },
	}

	w, err := New(ctx, signup(), request("3", sess, nil),
		WithLifecycleHooks(hooks),
		WithConcluder(ConcludeFunc(func(ctx context.Context, w *Wizard) (any, error) {
			seen = w.Data()
			return "done", w.Reset(ctx)
		})))
	require.NoError(t, err)

	result, err := w.Save(ctx, domain.StepData{"terms": true})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, domain.WizardData{3: {"terms": true}}, seen)
	assert.NotContains(t, sess.values, "signup")
	assert.Equal(t, []domain.EventType{domain.EventStepSaved, domain.EventConclude}, events)
}

func TestConclude_WithoutConcluder(t *testing.T) {
	w, err := New(context.Background(), signup(), request("3", newFakeSession(), nil))
	require.NoError(t, err)
	_, err = w.Conclude(context.Background())
	assert.ErrorIs(t, err, ErrNoConcluder)
}

func TestWizard_MarshalJSON(t *testing.T) {
	w, err := New(context.Background(), signup(), request("2", nil, nil))
	require.NoError(t, err)

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"key": "signup", "current": 2, "total": 3,
		"steps": [
			{"index": 1, "title": "Account"},
			{"index": 2, "title": "Profile", "description": "About you"},
			{"index": 3, "title": "Confirm"}
		]
	}`, string(raw))
}
