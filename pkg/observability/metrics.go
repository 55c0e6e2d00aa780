package observability

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stepform/pkg/domain"
)

// Metrics holds the collectors fed by lifecycle events.
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	StepsSaved       *prometheus.CounterVec
	Conclusions      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered (e.g. by a previous call on the same registry) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepform_dispatch_total",
				Help: "Submitted actions by trigger and outcome",
			},
			[]string{"action", "outcome"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepform_dispatch_duration_seconds",
				Help:    "Duration of action dispatch, handler included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		StepsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepform_wizard_steps_saved_total",
				Help: "Wizard steps persisted, by wizard and step index",
			},
			[]string{"wizard", "step"},
		),
		Conclusions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepform_wizard_concluded_total",
				Help: "Wizards concluded",
			},
			[]string{"wizard"},
		),
	}

	var err error
	if m.Dispatches, err = register(reg, m.Dispatches); err != nil {
		return nil, err
	}
	if m.DispatchDuration, err = register(reg, m.DispatchDuration); err != nil {
		return nil, err
	}
	if m.StepsSaved, err = register(reg, m.StepsSaved); err != nil {
		return nil, err
	}
	if m.Conclusions, err = register(reg, m.Conclusions); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			action := e.ActionID
			if action == "" {
				action = "none"
			}
			m.Dispatches.WithLabelValues(action, e.Outcome).Inc()
			m.DispatchDuration.WithLabelValues(action).Observe(e.Duration.Seconds())
		},
		OnStepSaved: func(_ context.Context, e *domain.StepEvent) {
			m.StepsSaved.WithLabelValues(e.Wizard, strconv.Itoa(e.Index)).Inc()
		},
		OnConclude: func(_ context.Context, e *domain.StepEvent) {
			m.Conclusions.WithLabelValues(e.Wizard).Inc()
		},
	}
}
