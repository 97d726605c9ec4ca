package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// LogHooks logs every result at debug level and every failure at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			logger.DebugContext(ctx, "result",
				"session_id", e.SessionID,
				"op", e.Op,
				"source", e.Source,
				"display", e.Display,
			)
		},
		OnFailure: func(ctx context.Context, e *domain.FailureEvent) {
			logger.InfoContext(ctx, "calculator failure",
				"session_id", e.SessionID,
				"op", e.Op,
				"kind", e.Kind,
			)
		},
	}
}

// Compose fans each event out to all hooks, in order. Nil callbacks are skipped.
func Compose(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			for _, h := range hooks {
				if h.OnResult != nil {
					h.OnResult(ctx, e)
				}
			}
		},
		OnFailure: func(ctx context.Context, e *domain.FailureEvent) {
			for _, h := range hooks {
				if h.OnFailure != nil {
					h.OnFailure(ctx, e)
				}
			}
		},
	}
}
