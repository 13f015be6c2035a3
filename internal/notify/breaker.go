package notify

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrSuspended is returned by [Notifier.Notify] while the hook is suspended
// after repeated failures.
var ErrSuspended = errors.New("notify: hook suspended after repeated failures")

// breaker suspends a hook after a run of failed notifications. Once the
// cooldown has passed a single probe notification is let through; its result
// closes or re-opens the breaker.
type breaker struct {
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool
}

func newBreaker(maxFailures int, cooldown time.Duration) *breaker {
	return &breaker{maxFailures: maxFailures, cooldown: cooldown, now: time.Now}
}

// allow reports whether a notification may run.
func (b *breaker) allow() bool {
	if b.maxFailures <= 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.probing || b.now().Sub(b.openedAt) < b.cooldown {
		return false
	}
	b.probing = true
	return true
}

// done records the outcome of an allowed notification.
func (b *breaker) done(err error) {
	if b.maxFailures <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wasProbe := b.probing
	b.probing = false

	if err == nil {
		if b.open {
			slog.Info("notify: hook recovered")
		}
		b.failures, b.open = 0, false
		return
	}
	b.failures++
	if wasProbe || b.failures >= b.maxFailures {
		if !b.open || wasProbe {
			slog.Warn("notify: suspending hook",
				"consecutive_failures", b.failures,
				"cooldown", b.cooldown,
			)
		}
		b.open = true
		b.openedAt = b.now()
	}
}
