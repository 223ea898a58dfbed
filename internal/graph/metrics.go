package graph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("flowgrid.graph")

// metrics holds the graph instruments. A nil instrument means creating it
// failed and recording is skipped.
type metrics struct {
	once        sync.Once
	stepLatency metric.Float64Histogram
	steps       metric.Int64Counter
	faults      metric.Int64Counter
	triggers    metric.Int64Counter
	nodes       metric.Int64UpDownCounter
}

func (m *metrics) init(logger *slog.Logger) {
	m.once.Do(func() {
		// Resolved per graph so a provider installed after package init
		// is picked up.
		meter := otel.Meter("flowgrid.graph")
		var initErrors []string
		var err error

		m.stepLatency, err = meter.Float64Histogram("flowgrid_graph_step_duration_seconds",
			metric.WithDescription("Wall time spent in one RunStep call"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "step_latency: "+err.Error())
		}

		m.steps, err = meter.Int64Counter("flowgrid_graph_steps_total",
			metric.WithDescription("Number of executed steps"),
		)
		if err != nil {
			initErrors = append(initErrors, "steps: "+err.Error())
		}

		m.faults, err = meter.Int64Counter("flowgrid_graph_faults_total",
			metric.WithDescription("Number of execution faults"),
		)
		if err != nil {
			initErrors = append(initErrors, "faults: "+err.Error())
		}

		m.triggers, err = meter.Int64Counter("flowgrid_graph_triggers_total",
			metric.WithDescription("Number of trigger deliveries along event links"),
		)
		if err != nil {
			initErrors = append(initErrors, "triggers: "+err.Error())
		}

		m.nodes, err = meter.Int64UpDownCounter("flowgrid_graph_nodes",
			metric.WithDescription("Number of indexed nodes"),
		)
		if err != nil {
			initErrors = append(initErrors, "nodes: "+err.Error())
		}

		if len(initErrors) > 0 {
			logger.Error("failed to initialize some graph metrics (observability degraded)",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}

func (m *metrics) recordStep(d time.Duration, num int, err error) {
	ctx := context.Background()
	if m.stepLatency != nil {
		m.stepLatency.Record(ctx, d.Seconds())
	}
	if m.steps != nil {
		m.steps.Add(ctx, int64(num))
	}
	if err != nil && m.faults != nil {
		m.faults.Add(ctx, 1, metric.WithAttributes(attribute.String("error", faultKind(err))))
	}
}

func (m *metrics) trigger() {
	if m.triggers != nil {
		m.triggers.Add(context.Background(), 1)
	}
}

func (m *metrics) nodeDelta(d int64) {
	if m.nodes != nil && d != 0 {
		m.nodes.Add(context.Background(), d)
	}
}

func faultKind(err error) string {
	if ee, ok := err.(*ExecutionError); ok && ee.Panic != nil {
		return "panic"
	}
	return "error"
}
