package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// fail logs the root cause, counts the failure and returns the user-safe kind.
func fail(op string, kind *domain.Error, cause error) error {
	log.Error().Err(cause).Str("op", op).Str("kind", string(kind.Kind)).Msg("operation failed")
	observability.ObserveFailure(op, string(kind.Kind))
	return kind.Because(cause)
}

// reject counts a validation failure; nothing to log beyond debug.
func reject(op string, err error) error {
	kind := domain.KindOf(err)
	log.Debug().Str("op", op).Str("kind", string(kind)).Msg("request rejected")
	observability.ObserveFailure(op, string(kind))
	return err
}

// bounded applies the per-call gateway timeout. d <= 0 means no limit.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
