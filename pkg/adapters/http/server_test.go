package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stephttp "github.com/aretw0/stepform/pkg/adapters/http"
	"github.com/aretw0/stepform/pkg/adapters/memory"
	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/dsl"
	"github.com/aretw0/stepform/pkg/form"
	"github.com/aretw0/stepform/pkg/schema"
	"github.com/aretw0/stepform/pkg/session"
	"github.com/aretw0/stepform/pkg/wizard"
)

type note struct {
	locked bool
}

var noteTriggers = dsl.New[*note]().
	Add("save").Title("Save").Do(func(context.Context, *note, *domain.Request, url.Values) (any, error) {
		return domain.RedirectTo("/saved"), nil
	}).Builder().
	Add("echo").When(func(n *note, _ *domain.Request) bool { return !n.locked }).
	Do(func(_ context.Context, _ *note, _ *domain.Request, data url.Values) (any, error) {
		return map[string]string{"text": data.Get("text")}, nil
	}).Builder().
	Add("clear").Do(func(context.Context, *note, *domain.Request, url.Values) (any, error) {
		return nil, nil
	}).Builder().
	Add("boom").Do(func(context.Context, *note, *domain.Request, url.Values) (any, error) {
		return nil, errors.New("database on fire")
	}).Builder().
	MustBuild()

func noteServer(locked bool) http.Handler {
	srv := stephttp.NewServer(nil)
	r := srv.Router()
	stephttp.Route(r, "/note", srv, form.New(noteTriggers),
		func(context.Context, *domain.Request) (*note, error) { return &note{locked: locked}, nil })
	return r
}

func post(h http.Handler, target string, data url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHandle_Dispatch(t *testing.T) {
	h := noteServer(false)

	tests := []struct {
		name   string
		action string
		status int
	}{
		{name: "redirect", action: "trigger.save", status: http.StatusSeeOther},
		{name: "json result", action: "trigger.echo", status: http.StatusOK},
		{name: "nil result", action: "trigger.clear", status: http.StatusNoContent},
		{name: "no action", action: "", status: http.StatusBadRequest},
		{name: "unknown action", action: "trigger.nope", status: http.StatusNotFound},
		{name: "handler error", action: "trigger.boom", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := url.Values{"text": {"hi"}}
			if tt.action != "" {
				data.Set(domain.ActionField, tt.action)
			}
			w := post(h, "/note", data)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestHandle_ResultBodies(t *testing.T) {
	h := noteServer(false)

	w := post(h, "/note", url.Values{domain.ActionField: {"trigger.save"}})
	assert.Equal(t, "/saved", w.Header().Get("Location"))

	w = post(h, "/note", url.Values{domain.ActionField: {"trigger.echo"}, "text": {"hi"}})
	assert.Equal(t, map[string]any{"text": "hi"}, decode(t, w))

	w = post(h, "/note", url.Values{domain.ActionField: {"trigger.boom"}})
	assert.Equal(t, "Internal Server Error", decode(t, w)["error"], "handler errors are not leaked")
}

func TestHandle_MultipartBody(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(domain.ActionField, "trigger.echo"))
	require.NoError(t, mw.WriteField("text", "hi"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/note", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	noteServer(false).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"text": "hi"}, decode(t, w))
}

func TestHandle_MalformedContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/note", strings.NewReader("text=hi"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary")
	w := httptest.NewRecorder()
	noteServer(false).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandle_NotAllowed(t *testing.T) {
	w := post(noteServer(true), "/note", url.Values{domain.ActionField: {"trigger.echo"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandle_GetRendersActions(t *testing.T) {
	w := get(noteServer(true), "/note")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.NotContains(t, body, "request")
	actions := body["actions"].([]any)
	var ids []string
	for _, a := range actions {
		ids = append(ids, a.(map[string]any)["id"].(string))
	}
	assert.Equal(t, []string{"trigger.save", "trigger.clear", "trigger.boom"}, ids)
}

func TestRouter_Operational(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"})
	reg.MustRegister(counter)
	counter.Inc()

	r := stephttp.NewServer(nil, stephttp.WithGatherer(reg)).Router()

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "probe_total 1")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, stephttp.StatusFor(domain.ErrStepOutOfRange))
	assert.Equal(t, http.StatusForbidden, stephttp.StatusFor(domain.ErrActionNotAllowed))
	assert.Equal(t, http.StatusInternalServerError, stephttp.StatusFor(errors.New("x")))
}

func signupServer(t *testing.T, concluded *domain.WizardData) (http.Handler, *memory.Store) {
	t.Helper()
	def := &wizard.Definition{
		Key: "signup",
		Steps: []wizard.StepSpec{
			{Title: "Account", Fields: schema.Fields{{Name: "email", Required: true}}},
			{Title: "Profile", Fields: schema.Fields{{Name: "age", Type: schema.Int()}}},
		},
	}
	store := memory.NewStore()
	srv := stephttp.NewServer(session.NewManager(store))
	r := srv.Router()
	concluder := wizard.ConcludeFunc(func(_ context.Context, w *wizard.Wizard) (any, error) {
		*concluded = w.Data()
		return domain.RedirectTo("/done"), nil
	})
	stephttp.Route(r, "/signup", srv, form.New(wizard.Triggers()),
		func(ctx context.Context, req *domain.Request) (*wizard.Form, error) {
			w, err := wizard.New(ctx, def, req, wizard.WithConcluder(concluder))
			if err != nil {
				return nil, err
			}
			return wizard.NewForm(w, nil), nil
		})
	return r, store
}

func TestWizardFlow(t *testing.T) {
	var concluded domain.WizardData
	h, store := signupServer(t, &concluded)

	// First visit issues the session cookie.
	w := get(h, "/signup")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stephttp.DefaultCookieName, cookies[0].Name)
	body := decode(t, w)
	assert.Equal(t, "Account", body["view"].(map[string]any)["title"])

	// Invalid submission: 422 with errors, nothing stored.
	w = post(h, "/signup?step=1", url.Values{domain.ActionField: {"trigger.next"}}, cookies...)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, map[string]any{"email": []any{"required"}}, body["errors"])
	assert.Contains(t, body, "actions")
	ids, _ := store.List(context.Background())
	assert.Empty(t, ids)

	w = post(h, "/signup?step=1", url.Values{domain.ActionField: {"trigger.next"}, "email": {"ada@example.com"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/signup?step=2", w.Header().Get("Location"))

	// The saved step survives the JSON-free memory store and pre-fills the form.
	w = get(h, "/signup?step=1", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")

	w = post(h, "/signup?step=2", url.Values{domain.ActionField: {"trigger.finish"}, "age": {"36"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/done", w.Header().Get("Location"))
	assert.Equal(t, domain.WizardData{1: {"email": "ada@example.com"}, 2: {"age": 36}}, concluded)
}

func TestWizardFlow_StepOutOfRange(t *testing.T) {
	var concluded domain.WizardData
	h, _ := signupServer(t, &concluded)

	assert.Equal(t, http.StatusNotFound, get(h, "/signup?step=3").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/signup?step=x").Code)
}

func TestWizardFlow_PreviousHiddenOnFirstStep(t *testing.T) {
	var concluded domain.WizardData
	h, _ := signupServer(t, &concluded)

	w := post(h, "/signup", url.Values{domain.ActionField: {"trigger.previous"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
