package main

import (
	"github.com/spf13/cobra"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/observe"
)

func newDetectCmd(a *app) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report whether the input contains a ring",
		Long: `detect consumes the input until it contains one full ring-gap-ring cycle or
ends. It prints "the doorbell is ringing" and exits 0 on a ring, exits 2 if the
input ends without one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tel, err := a.startTelemetry(ctx)
			if err != nil {
				return err
			}
			defer tel.finish(ctx)

			input, err := a.openInput(in)
			if err != nil {
				return err
			}
			ctx, span := observe.StartInputSpan(ctx, "detect", input)
			defer span.End()
			cfg := a.config()
			observe.Logger(ctx).Info("detecting", "input", input, "params", cfg.Detector.Params())

			ringing, err := a.detect(ctx, input, cfg, tel.metrics)
			if err != nil {
				return err
			}
			if !ringing {
				return errNoRing
			}
			a.announce()
			return nil
		},
	}
	in.register(cmd)
	return cmd
}
