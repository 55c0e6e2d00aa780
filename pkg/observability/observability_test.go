package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.EmitDispatch(ctx, &domain.DispatchEvent{ActionID: "trigger.next", Outcome: domain.OutcomeOK, Duration: time.Millisecond})
	hooks.EmitDispatch(ctx, &domain.DispatchEvent{ActionID: "trigger.next", Outcome: domain.OutcomeOK})
	hooks.EmitDispatch(ctx, &domain.DispatchEvent{Outcome: domain.OutcomeNoAction})
	hooks.EmitStepSaved(ctx, &domain.StepEvent{Wizard: "signup", Index: 2})
	hooks.EmitConclude(ctx, &domain.StepEvent{Wizard: "signup", Index: 3})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("trigger.next", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dispatches.WithLabelValues("none", "no_action")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsSaved.WithLabelValues("signup", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conclusions.WithLabelValues("signup")))
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	second.Conclusions.WithLabelValues("w").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Conclusions.WithLabelValues("w")))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hooks := observability.LogHooks(logger)

	hooks.EmitDispatch(context.Background(), &domain.DispatchEvent{ActionID: "trigger.save", Outcome: domain.OutcomeNotAllowed})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "action=trigger.save")

	buf.Reset()
	hooks.EmitStepSaved(context.Background(), &domain.StepEvent{Wizard: "signup", Index: 1, Total: 3})
	assert.Contains(t, buf.String(), "msg=step_saved")
	assert.Contains(t, buf.String(), "wizard=signup")
}

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnDispatch: func(context.Context, *domain.DispatchEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnDispatch: func(context.Context, *domain.DispatchEvent) { calls = append(calls, "b") },
		OnConclude: func(context.Context, *domain.StepEvent) { calls = append(calls, "b-conclude") },
	}

	hooks := observability.Combine(a, b)
	hooks.EmitDispatch(context.Background(), &domain.DispatchEvent{})
	hooks.EmitStepSaved(context.Background(), &domain.StepEvent{})
	hooks.EmitConclude(context.Background(), &domain.StepEvent{})

	assert.Equal(t, []string{"a", "b", "b-conclude"}, calls)
}
