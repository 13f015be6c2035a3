package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sam-brownlow/remote-doorbell-intercom/internal/observe"
)

type telemetry struct {
	provider *observe.Provider
	metrics  *observe.Metrics
	textfile string
}

func (a *app) startTelemetry(ctx context.Context) (*telemetry, error) {
	p, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return nil, err
	}
	m, err := observe.NewMetrics(p.MeterProvider)
	if err != nil {
		return nil, errors.Join(err, p.Shutdown(ctx))
	}
	return &telemetry{
		provider: p,
		metrics:  m,
		textfile: a.config().Telemetry.MetricsTextfile,
	}, nil
}

// finish writes the metrics textfile, if configured, and shuts the providers
// down. Failures are logged; they never change the exit status.
func (t *telemetry) finish(ctx context.Context) {
	var errs []error
	if t.textfile != "" {
		errs = append(errs, t.provider.WriteTextfile(t.textfile))
	}
	errs = append(errs, t.provider.Shutdown(context.WithoutCancel(ctx)))
	if err := errors.Join(errs...); err != nil {
		slog.Warn("telemetry shutdown", "err", err)
	}
}
