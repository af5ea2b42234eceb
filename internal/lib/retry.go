package lib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second
	maxJitter   = time.Second
)

// Remote error messages that mean retrying cannot help.
var terminalMessages = []string{
	"invalid credentials",
	"invalid api key",
	"permission denied",
	"insufficient permissions",
	"invalid auth token",
	"invalid oauth",
	"oauth token",
	"user not logged in",
	"oauth_problem",
}

// Retrier runs an operation up to MaxAttempts times with exponential backoff.
type Retrier struct {
	MaxAttempts int

	// Replaced in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

func NewRetrier(maxAttempts int) *Retrier {
	return &Retrier{
		MaxAttempts: maxAttempts,
		sleep:       sleepContext,
		jitter:      randomJitter,
	}
}

// BackoffDelay returns the wait before retrying after the given 1-based
// attempt failed, without jitter: 1s, 2s, 4s, ... capped at 30s.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// Past 2^5 seconds the cap applies anyway; avoid overflowing the shift.
	if attempt > 6 {
		return maxBackoff
	}
	return min(baseBackoff*time.Duration(1<<(attempt-1)), maxBackoff)
}

// Run calls op until it succeeds, fails terminally, or runs out of attempts.
func (r *Retrier) Run(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(r.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if terminal, classified := classifyTerminal(err); terminal {
			logger.Debug("Not retrying terminal error",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return classified
		}
		if attempt == attempts {
			break
		}

		delay := BackoffDelay(attempt) + r.jitter()
		logger.Warn("Remote call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		if err := r.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: interrupted while waiting to retry: %w", ErrOperationFailed, err)
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrOperationFailed, attempts, lastErr)
}

// classifyTerminal reports whether err must not be retried, and returns the
// error to surface for it.
func classifyTerminal(err error) (bool, error) {
	if errors.Is(err, ErrTerminalAuth) || errors.Is(err, ErrRateLimitExceeded) || errors.Is(err, ErrValidation) {
		return true, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true, err
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range terminalMessages {
		if strings.Contains(msg, marker) {
			return true, fmt.Errorf("%w: %w", ErrTerminalAuth, err)
		}
	}
	return false, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomJitter() time.Duration {
	return rand.N(maxJitter)
}
