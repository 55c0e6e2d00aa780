package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepform/pkg/domain"
)

// LogHooks returns hooks writing one structured record per event.
// Rejected dispatches are logged at Warn, everything else at Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			level := slog.LevelInfo
			if e.Outcome != domain.OutcomeOK {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "dispatch",
				"action", e.ActionID,
				"outcome", e.Outcome,
				"duration", e.Duration,
				"session_id", e.SessionID,
			)
		},
		OnStepSaved: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_saved",
				"wizard", e.Wizard,
				"step", e.Index,
				"total", e.Total,
				"session_id", e.SessionID,
			)
		},
		OnConclude: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "wizard_concluded",
				"wizard", e.Wizard,
				"session_id", e.SessionID,
			)
		},
	}
}

// Combine returns hooks that invoke every given hook in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			for _, h := range hooks {
				h.EmitDispatch(ctx, e)
			}
		},
		OnStepSaved: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				h.EmitStepSaved(ctx, e)
			}
		},
		OnConclude: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				h.EmitConclude(ctx, e)
			}
		},
	}
}
