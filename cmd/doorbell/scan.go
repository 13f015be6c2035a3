package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/observe"
)

type scanResult struct {
	path    string
	ringing bool
	err     error
}

func newScanCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Run an independent detection over each recorded file",
		Long: `scan checks WAV recordings and confidence trace files concurrently, one
detector per file, and prints one line per file in argument order. Files
ending in .wav are decoded as audio; anything else is read as a trace.

Exit status is 1 if any file failed, otherwise 0 if any file rang and 2 if
none did.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tel, err := a.startTelemetry(ctx)
			if err != nil {
				return err
			}
			defer tel.finish(ctx)

			cfg := a.config()
			results := make([]scanResult, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, path := range args {
				g.Go(func() error {
					res := scanResult{path: path}
					input, err := a.fileInput(path)
					if err == nil {
						ctx, span := observe.StartInputSpan(gctx, "scan", input)
						res.ringing, err = a.detect(ctx, input, cfg, tel.metrics)
						span.End()
					}
					res.err = err
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var failed, rang int
			for _, r := range results {
				switch {
				case r.err != nil:
					failed++
					fmt.Fprintf(a.stdout, "%s\terror: %v\n", r.path, r.err)
				case r.ringing:
					rang++
					fmt.Fprintf(a.stdout, "%s\tringing\n", r.path)
				default:
					fmt.Fprintf(a.stdout, "%s\tno ring\n", r.path)
				}
			}
			switch {
			case failed > 0:
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			case rang == 0:
				return errNoRing
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files to scan concurrently")
	return cmd
}
