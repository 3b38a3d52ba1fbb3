package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mtlprog/sitetimeline/internal/domain"
)

// retryingSaver bounds every save attempt with a timeout and retries transient
// failures with exponential backoff.
type retryingSaver struct {
	store    TaskStore
	timeout  time.Duration
	attempts uint64
	backoff  time.Duration
}

func newRetryingSaver(store TaskStore, opts Options) *retryingSaver {
	return &retryingSaver{
		store:    store,
		timeout:  opts.SaveTimeout,
		attempts: uint64(opts.SaveAttempts),
		backoff:  opts.SaveBackoff,
	}
}

// SaveTaskDates implements drag.Saver.
func (s *retryingSaver) SaveTaskDates(ctx context.Context, updates []domain.DateUpdate) error {
	b := retry.WithMaxRetries(s.attempts-1, retry.NewExponential(s.backoff))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		err := s.store.SaveTaskDates(attemptCtx, updates)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}

		slog.Warn("save attempt failed",
			"attempt", attempt,
			"updates", len(updates),
			"error", err,
		)
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("save %d task dates after %d attempts: %w", len(updates), attempt, err)
	}
	return nil
}

// isPermanent reports errors that will fail the same way on every attempt.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrEmptyDateUpdate) ||
		errors.Is(err, domain.ErrInvalidDates) ||
		errors.Is(err, domain.ErrTaskNotFound)
}
