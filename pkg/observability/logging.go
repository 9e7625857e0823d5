package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/lantern/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write an audit trail to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "journey transition",
				"from", e.From,
				"to", e.To,
				"trigger", e.Trigger,
			)
		},
		OnRejected: func(ctx context.Context, e *domain.RejectionEvent) {
			logger.InfoContext(ctx, "journey trigger refused",
				"phase", e.Phase,
				"trigger", e.Trigger,
				"reason", Reason(e.Err),
			)
		},
		OnSubmission: func(ctx context.Context, e *domain.SubmissionEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "lantern submission failed", "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "lantern submitted", "lantern_id", e.LanternID, "duration", e.Duration)
		},
	}
}
