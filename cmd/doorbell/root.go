package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/config"
	"github.com/sam-brownlow/remote-doorbell-intercom/internal/observe"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/confidence"
	"github.com/sam-brownlow/remote-doorbell-intercom/pkg/ring"
)

// Exit codes.
const (
	exitRinging = 0
	exitError   = 1
	exitNoRing  = 2
)

// errNoRing ends a command that completed without detecting a ring.
var errNoRing = errors.New("no ring detected")

// app is the state shared by all subcommands of one invocation.
type app struct {
	registry *config.Registry
	stdin    io.Reader
	stdout   io.Writer
	level    *slog.LevelVar

	configPath string
	logLevel   string

	cfg atomic.Pointer[config.Config]
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, reg *config.Registry) int {
	a := &app{
		registry: reg,
		stdin:    stdin,
		stdout:   stdout,
		level:    new(slog.LevelVar),
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: a.level})))

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitRinging
	case errors.Is(err, errNoRing):
		return exitNoRing
	default:
		fmt.Fprintf(stderr, "doorbell: %v\n", err)
		return exitError
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "doorbell",
		Short: "Detect an intercom doorbell ring in an audio or confidence stream",
		Long: `doorbell watches per-block pitch confidence values, computed from audio or
read from a trace file, for the intercom's ring-gap-ring pattern.

Inputs:
  --trace FILE   pre-computed confidences, one per line ("-" for stdin)
  --wav FILE     a WAV recording
  --pcm FILE     raw s16le PCM, e.g. "arecord -f S16_LE | doorbell listen --pcm -"

The stock binary registers no pitch engine, so it accepts only --trace.
--wav, --pcm and .wav files in scan need a build that registers an engine
under the name given in pitch.engine; without one they fail with
"pitch engine not registered".

Exit status is 0 when a ring was detected, 2 when the input ended without
one and 1 on error.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log_level: debug, info, warn or error")

	root.AddCommand(
		newDetectCmd(a),
		newListenCmd(a),
		newScanCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the config file, if any, and applies the log level.
func (a *app) loadConfig() error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		lvl := config.LogLevel(a.logLevel)
		if !lvl.IsValid() {
			return fmt.Errorf("--log-level %q is invalid; valid values: debug, info, warn, error", a.logLevel)
		}
		cfg.LogLevel = lvl
	}
	a.setConfig(cfg)
	return nil
}

func (a *app) config() *config.Config {
	return a.cfg.Load()
}

func (a *app) setConfig(cfg *config.Config) {
	a.cfg.Store(cfg)
	a.level.Set(slogLevel(cfg.LogLevel))
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// detect runs one detection over input with the detector section of cfg.
func (a *app) detect(ctx context.Context, input confidence.Input, cfg *config.Config, m *observe.Metrics) (bool, error) {
	d, err := ring.New(input, cfg.Detector.Params(), ring.WithObserver(m))
	if err != nil {
		return false, err
	}
	observe.Logger(ctx).Debug("starting detection", "detector", d)
	defer m.TrackDetection(ctx)()
	return d.IsRinging(ctx)
}

// announce prints the detection message.
func (a *app) announce() {
	fmt.Fprintln(a.stdout, "the doorbell is ringing")
}
