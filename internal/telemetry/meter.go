package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const (
	// DefaultServiceName is reported as service.name.
	DefaultServiceName = "enrolsync"

	// DefaultMetricsInterval is how often the periodic reader exports.
	DefaultMetricsInterval = 60 * time.Second
)

// MeterConfig selects the exporter. An empty Endpoint disables export.
type MeterConfig struct {
	Endpoint       string
	Insecure       bool
	ServiceVersion string
	Interval       time.Duration
}

// NewMeterProvider returns an OTLP/HTTP meter provider, or a no-op provider when
// no endpoint is configured. The returned shutdown func is never nil.
func NewMeterProvider(ctx context.Context, cfg MeterConfig, logger *zap.Logger) (metric.MeterProvider, func(context.Context) error, error) {
	noShutdown := func(context.Context) error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Endpoint == "" {
		logger.Debug("metrics disabled, using no-op meter provider")
		return noop.NewMeterProvider(), noShutdown, nil
	}

	version := cfg.ServiceVersion
	if version == "" {
		version = "unknown"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(DefaultServiceName),
			semconv.ServiceVersion(version),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, noShutdown, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, noShutdown, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultMetricsInterval
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)

	logger.Info("metrics initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("insecure", cfg.Insecure),
	)
	return mp, mp.Shutdown, nil
}
