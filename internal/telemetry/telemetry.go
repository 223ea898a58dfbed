package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by Config.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

var (
	// ErrNilContext is returned by Init when called without a context.
	ErrNilContext = errors.New("telemetry: nil context")
	// ErrUnknownExporter is returned for exporter names Init does not know.
	ErrUnknownExporter = errors.New("telemetry: unknown exporter")
)

// Config selects the exporters.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// TraceExporter is "stdout" or "none".
	TraceExporter string
	// MetricExporter is "prometheus", "stdout" or "none".
	MetricExporter string
	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
	// MetricInterval is the stdout metric dump period. Defaults to 10s.
	MetricInterval time.Duration
}

// DefaultConfig disables every exporter.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "flowgrid",
		ServiceVersion: "dev",
		TraceExporter:  ExporterNone,
		MetricExporter: ExporterNone,
	}
}

// Stack is an installed telemetry setup.
type Stack struct {
	shutdownFuncs  []func(context.Context) error
	metricsHandler http.Handler
}

// Init installs global tracer and meter providers according to cfg. The
// returned stack must be shut down on exit to flush pending data.
func Init(ctx context.Context, cfg Config) (*Stack, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	s := &Stack{}

	if cfg.TraceExporter != "" && cfg.TraceExporter != ExporterNone {
		tp, err := initTracer(cfg, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		s.shutdownFuncs = append(s.shutdownFuncs, tp.Shutdown)
	}

	if cfg.MetricExporter != "" && cfg.MetricExporter != ExporterNone {
		mp, err := s.initMeter(cfg, res)
		if err != nil {
			_ = s.Shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		otel.SetMeterProvider(mp)
		s.shutdownFuncs = append(s.shutdownFuncs, mp.Shutdown)
	}

	return s, nil
}

// Shutdown flushes and stops every installed provider.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range s.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.shutdownFuncs = nil
	return errors.Join(errs...)
}

// MetricsHandler serves the Prometheus exposition format, or is nil when
// the Prometheus exporter is not in use.
func (s *Stack) MetricsHandler() http.Handler {
	return s.metricsHandler
}

func initTracer(cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	switch cfg.TraceExporter {
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("create exporter: %w", err)
		}
		return trace.NewTracerProvider(
			trace.WithBatcher(exporter),
			trace.WithResource(res),
			trace.WithSampler(trace.AlwaysSample()),
		), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}
}

func (s *Stack) initMeter(cfg Config, res *resource.Resource) (*metric.MeterProvider, error) {
	switch cfg.MetricExporter {
	case ExporterPrometheus:
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		s.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(exporter),
		), nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint(), stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		interval := cfg.MetricInterval
		if interval <= 0 {
			interval = 10 * time.Second
		}
		return metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}
}
