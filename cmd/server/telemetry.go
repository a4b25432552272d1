package main

import (
	"context"
	"fmt"

	"github.com/logidocs/backend/internal/infrastructure/config"
	"github.com/logidocs/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// observability holds the telemetry providers. Each one is a no-op when
// its switch is off.
type observability struct {
	tracer   *telemetry.TracerProvider
	metrics  *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*observability, error) {
	tc := cfg.Telemetry
	exporter := telemetry.Exporter{
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}

	o := &observability{}
	var err error
	o.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.TracerConfig{
		Exporter:      exporter,
		Enabled:       tc.Enabled,
		SamplingRatio: tc.SamplingRatio,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}
	o.metrics, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Exporter:       exporter,
		Enabled:        tc.Enabled && tc.MetricsEnabled,
		ExportInterval: tc.MetricsInterval,
	}, log)
	if err != nil {
		o.shutdown(log)
		return nil, fmt.Errorf("metrics: %w", err)
	}
	o.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Exporter: exporter,
		Enabled:  tc.Enabled && tc.LogsEnabled,
	}, log)
	if err != nil {
		o.shutdown(log)
		return nil, fmt.Errorf("logs: %w", err)
	}
	o.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeAddress,
		ApplicationName: tc.ServiceName,
		Goroutines:      true,
	}, log)
	if err != nil {
		o.shutdown(log)
		return nil, fmt.Errorf("profiler: %w", err)
	}
	if o.profiler.IsEnabled() {
		o.tracer.EnableSpanProfiles()
	}
	return o, nil
}

// shutdown flushes and stops whatever was started, in reverse order
func (o *observability) shutdown(log *zap.Logger) {
	ctx := context.Background()
	if o.profiler != nil {
		if err := o.profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if o.logs != nil {
		if err := o.logs.Shutdown(ctx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}
	if o.metrics != nil {
		if err := o.metrics.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
}
