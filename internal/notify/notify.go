// Package notify runs the configured hook command after a ring is detected.
//
// The command receives the event through its environment:
//
//	DOORBELL_EVENT=ring
//	DOORBELL_TIME=<RFC 3339 timestamp>
//	DOORBELL_INPUT=<input description>
//
// Failed runs are retried with a fixed delay. After breaker_failures
// notifications in a row have failed, the hook is suspended for
// breaker_cooldown and then probed with the next ring.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/config"
)

// Event describes a detected ring.
type Event struct {
	At    time.Time
	Input string
}

// Notifier runs a hook command for each [Event]. It is safe for concurrent
// use.
type Notifier struct {
	cfg     config.NotifyConfig
	breaker *breaker
}

// New returns a notifier for cfg. A notifier with an empty command does
// nothing.
func New(cfg config.NotifyConfig) *Notifier {
	return &Notifier{
		cfg:     cfg,
		breaker: newBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
	}
}

// Config returns the configuration the notifier was built with.
func (n *Notifier) Config() config.NotifyConfig {
	return n.cfg
}

// Enabled reports whether a command is configured.
func (n *Notifier) Enabled() bool {
	return len(n.cfg.Command) > 0
}

// Notify runs the command until it exits successfully, the configured
// attempts are used up or ctx is done. The error of the last attempt is
// returned. While the hook is suspended Notify returns [ErrSuspended]
// without running it.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if !n.Enabled() {
		return nil
	}
	if !n.breaker.allow() {
		return ErrSuspended
	}
	err := n.notify(ctx, ev)
	n.breaker.done(err)
	return err
}

func (n *Notifier) notify(ctx context.Context, ev Event) error {
	attempts := n.cfg.Attempts
	if attempts == 0 {
		attempts = 1
	}
	err := retry.Do(
		func() error { return n.run(ctx, ev) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(n.cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			slog.Warn("notify: hook failed, retrying",
				"command", n.cfg.Command[0],
				"attempt", attempt+1,
				"err", err,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (n *Notifier) run(ctx context.Context, ev Event) error {
	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, n.cfg.Command[0], n.cfg.Command[1:]...)
	cmd.Env = append(os.Environ(),
		"DOORBELL_EVENT=ring",
		"DOORBELL_TIME="+ev.At.Format(time.RFC3339),
		"DOORBELL_INPUT="+ev.Input,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("run %s: %w: %s", n.cfg.Command[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", n.cfg.Command[0], err)
	}
	slog.Debug("notify: hook ran", "command", n.cfg.Command[0], "output", strings.TrimSpace(out.String()))
	return nil
}
