package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/flowgrid/internal/telemetry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Steps > 0 runs that many steps synchronously. Zero runs on the timer
	// until interrupted or until Duration elapses.
	Steps    int
	Interval time.Duration
	Duration time.Duration
	// Unsafe propagates execution faults out of synchronous runs.
	Unsafe bool

	MetricsExporter string
	TraceExporter   string

	RelayURL       string
	RelayNamespace string

	// Dump prints the graph snapshot as JSON after the run.
	Dump bool
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.GraphPath == "" {
		errs = append(errs, errors.New("GraphPath is a required configuration field and cannot be empty"))
	}
	if cfg.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must not be negative, got %d", cfg.Steps))
	}
	if cfg.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative, got %s", cfg.Interval))
	}
	if cfg.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %s", cfg.Duration))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort))
	}

	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}
	if cfg.MetricsExporter == "" {
		cfg.MetricsExporter = telemetry.ExporterNone
	}
	if cfg.TraceExporter == "" {
		cfg.TraceExporter = telemetry.ExporterNone
	}
	switch cfg.MetricsExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterPrometheus:
	default:
		errs = append(errs, fmt.Errorf("unknown metrics exporter %q", cfg.MetricsExporter))
	}
	switch cfg.TraceExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout:
	default:
		errs = append(errs, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
