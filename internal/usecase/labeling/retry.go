package labeling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"photolabel/internal/bootstrap/logging"
	domain "photolabel/internal/domain/labeling"
)

const (
	retryInitialInterval = 100 * time.Millisecond
	retryMaxAttempts     = 5
)

// runInTx executes fn inside one store transaction and retries the whole
// transaction on optimistic-concurrency conflicts: exponential backoff with
// jitter, capped attempts. Any other error is permanent. Exhausting the
// budget fails loudly so callers never mistake contention for "no work".
func (s *Service) runInTx(ctx context.Context, op string, fn func(txCtx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.Multiplier = 2
	policy.RandomizationFactor = 1
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := s.uow.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			logging.Warn(ctx, "transaction conflict, retrying",
				slog.String("op", op), slog.Int("attempt", attempt))
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, retryMaxAttempts-1), ctx))

	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%s: %w after %d attempts: %w", op, domain.ErrRetryExhausted, retryMaxAttempts, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
