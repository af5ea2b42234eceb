package lib

import (
	"fmt"
	"sync"
	"time"
)

// CallBudget is a sliding window of recent remote API calls.
// At most quota calls are recorded within any window.
type CallBudget struct {
	mu     sync.Mutex
	quota  int
	window time.Duration
	calls  []time.Time // Oldest first.
	now    func() time.Time
}

// BudgetStats is a snapshot of a CallBudget.
type BudgetStats struct {
	Used          int     `json:"used"`
	Remaining     int     `json:"remaining"`
	Quota         int     `json:"quota"`
	WindowSeconds float64 `json:"windowSeconds"`
}

func NewCallBudget(quota int, window time.Duration) *CallBudget {
	return &CallBudget{
		quota:  quota,
		window: window,
		now:    time.Now,
	}
}

// CheckAndRecord records a call at the current time, or returns
// ErrRateLimitExceeded without recording it if the window is full.
func (b *CallBudget) CheckAndRecord() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.prune(now)
	if len(b.calls) >= b.quota {
		return fmt.Errorf("%w: %d calls in the last %s", ErrRateLimitExceeded, len(b.calls), b.window)
	}
	b.calls = append(b.calls, now)
	return nil
}

func (b *CallBudget) Stats() BudgetStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prune(b.now())
	return BudgetStats{
		Used:          len(b.calls),
		Remaining:     max(b.quota-len(b.calls), 0),
		Quota:         b.quota,
		WindowSeconds: b.window.Seconds(),
	}
}

// prune drops calls at or before now-window. Callers hold b.mu.
func (b *CallBudget) prune(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for i < len(b.calls) && !b.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.calls = append(b.calls[:0], b.calls[i:]...)
	}
}
