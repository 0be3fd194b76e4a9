package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/PabloGalante/souschef-agent/internal/domain"
	"github.com/PabloGalante/souschef-agent/internal/observability"
)

// Retrying wraps a CompletionClient with bounded exponential backoff.
// Only transient failures are retried; anything else fails immediately.
type Retrying struct {
	inner    domain.CompletionClient
	maxTries uint
}

func NewRetrying(inner domain.CompletionClient, maxTries int) *Retrying {
	if maxTries <= 0 {
		maxTries = 3
	}
	return &Retrying{
		inner:    inner,
		maxTries: uint(maxTries),
	}
}

func (r *Retrying) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	attempt := 0
	operation := func() (*domain.CompletionResponse, error) {
		attempt++
		resp, err := r.inner.Complete(ctx, req)
		if err != nil {
			if !errors.Is(err, domain.ErrCompletionTransient) {
				return nil, backoff.Permanent(err)
			}
			observability.LoggerFromContext(ctx).Warn("completion attempt failed",
				"attempt", attempt,
				"error", err,
			)
			return nil, err
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.maxTries),
	)
}
