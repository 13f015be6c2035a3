package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/config"
	"github.com/sam-brownlow/remote-doorbell-intercom/internal/notify"
	"github.com/sam-brownlow/remote-doorbell-intercom/internal/observe"
)

func newListenCmd(a *app) *cobra.Command {
	var (
		in       inputFlags
		maxRings int
		reload   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Detect rings continuously and run the notify hook for each",
		Long: `listen keeps the input open and runs one detection after another, each
resuming where the previous one stopped. After every ring it prints "the
doorbell is ringing" and runs notify.command. It stops when the input ends,
after --max-rings rings, or on SIGINT/SIGTERM.

With --config, the file is watched and detector, notify and log_level
changes apply from the next detection on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tel, err := a.startTelemetry(ctx)
			if err != nil {
				return err
			}
			defer tel.finish(ctx)

			if a.configPath != "" && reload > 0 {
				w, err := config.NewWatcher(a.configPath, a.reloaded, config.WithInterval(reload))
				if err != nil {
					return err
				}
				defer w.Stop()
			}

			input, err := a.openInput(in)
			if err != nil {
				return err
			}
			sess := &session{Input: input}
			defer func() {
				if err := sess.release(); err != nil {
					slog.Warn("closing input", "input", input, "err", err)
				}
			}()

			ctx, span := observe.StartInputSpan(ctx, "listen", input)
			defer span.End()
			log := observe.Logger(ctx)
			log.Info("listening", "input", input, "params", a.config().Detector.Params())

			var notifier *notify.Notifier
			rings := 0
			for ctx.Err() == nil {
				cfg := a.config()
				ringing, err := a.detect(ctx, sess, cfg, tel.metrics)
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					return err
				}
				if !ringing {
					log.Info("input ended", "rings", rings)
					return nil
				}
				rings++
				a.announce()

				if notifier == nil || !notifier.Config().Equal(cfg.Notify) {
					notifier = notify.New(cfg.Notify)
				}
				if notifier.Enabled() {
					err := notifier.Notify(ctx, notify.Event{At: time.Now(), Input: fmt.Sprint(input)})
					tel.metrics.RecordNotification(ctx, err)
					if err != nil {
						log.Error("notify hook failed", "err", err)
					}
				}
				if maxRings > 0 && rings >= maxRings {
					return nil
				}
			}
			log.Info("interrupted", "rings", rings)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().IntVar(&maxRings, "max-rings", 0, "stop after this many rings (0: no limit)")
	cmd.Flags().DurationVar(&reload, "reload-interval", 5*time.Second, "config file polling interval (0: no reload)")
	return cmd
}

// reloaded applies a changed config file to the running listener.
func (a *app) reloaded(old, updated *config.Config) {
	d := config.Diff(old, updated)
	if d.RequiresRestart() {
		slog.Warn("config change needs a restart to take effect", "sections", d.Sections())
		// Keep the values bound to the open input.
		merged := *updated
		merged.Audio, merged.Pitch, merged.Telemetry = old.Audio, old.Pitch, old.Telemetry
		updated = &merged
	}
	if a.logLevel != "" {
		updated.LogLevel = config.LogLevel(a.logLevel)
	}
	a.setConfig(updated)
}
