package lib

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

type remoteCall string

const (
	callListAlbums  remoteCall = "list_albums"
	callCreateAlbum remoteCall = "create_album"
	callUploadPhoto remoteCall = "upload_photo"
	callAddToAlbum  remoteCall = "add_to_album"
)

type failurePolicy int

const (
	// propagate returns the final error to the caller.
	propagate failurePolicy = iota
	// absorb logs the final error and reports success; the caller falls back.
	absorb
)

// callPolicies decides what happens once a remote call has used its retries.
// Every remote call is rate limited and retried.
var callPolicies = map[remoteCall]failurePolicy{
	callListAlbums:  absorb,
	callCreateAlbum: propagate,
	callUploadPhoto: propagate,
	callAddToAlbum:  absorb,
}

// remoteCaller issues remote API calls under the hourly budget, the pacing
// limiter and the retrier.
type remoteCaller struct {
	budget  *CallBudget
	pacer   *rate.Limiter
	retrier *Retrier
}

// do runs fn once against the budget and up to MaxAttempts times in total.
// Absorbed failures are logged and reported as nil.
func (c *remoteCaller) do(ctx context.Context, kind remoteCall, fn func(ctx context.Context) error) error {
	err := c.attempt(ctx, kind, fn)
	if err == nil {
		return nil
	}
	if callPolicies[kind] == absorb {
		logger.Warn("Remote call failed, continuing without it",
			slog.String("call", string(kind)),
			slog.String("error", err.Error()))
		return nil
	}
	return err
}

func (c *remoteCaller) attempt(ctx context.Context, kind remoteCall, fn func(ctx context.Context) error) error {
	// One budget slot per call, not per retry.
	if err := c.budget.CheckAndRecord(); err != nil {
		return err
	}
	return c.retrier.Run(ctx, func(ctx context.Context) error {
		if err := c.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error before %s: %w", kind, err)
		}
		return fn(ctx)
	})
}
