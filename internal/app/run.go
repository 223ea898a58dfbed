package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/flowgrid/internal/builder"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/relay"
	"github.com/vk/flowgrid/internal/telemetry"
)

// ErrGraphFaulted is returned by Run when an execution fault stopped the
// graph.
var ErrGraphFaulted = errors.New("graph faulted")

// Run builds the graph and drives it according to the configuration.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tcfg := telemetry.DefaultConfig()
	tcfg.MetricExporter = a.config.MetricsExporter
	tcfg.TraceExporter = a.config.TraceExporter
	tcfg.Writer = a.outW
	stack, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		err = errors.Join(err, stack.Shutdown(context.WithoutCancel(ctx)))
	}()

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort, stack.MetricsHandler())
		defer func() {
			err = errors.Join(err, a.closeHealthcheckServer(context.WithoutCancel(ctx)))
		}()
	}

	g, err := builder.Build(ctx, a.model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	a.graph = g

	if a.config.RelayURL != "" {
		if client := a.connectRelay(ctx); client != nil {
			defer client.Close()
			remove := g.AddListener(client.Listener())
			defer g.Do(remove)
		}
	}

	if g.NodeCount() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
	} else if a.config.Steps > 0 {
		err = a.runSteps(g)
	} else {
		a.runTimer(ctx, g)
	}
	if err != nil {
		return err
	}

	if a.config.Dump {
		if err := a.dump(g); err != nil {
			return err
		}
	}
	if g.Faulted() {
		return fmt.Errorf("%w: %w", ErrGraphFaulted, g.LastFault())
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// connectRelay dials the relay. Failures are logged and yield nil.
func (a *App) connectRelay(ctx context.Context) *relay.Client {
	client, err := relay.Dial(ctx, relay.Config{
		URL:       a.config.RelayURL,
		Namespace: a.config.RelayNamespace,
	})
	if err != nil {
		a.logger.Warn("Relay unavailable, continuing without it.", "url", a.config.RelayURL, "error", err)
		return nil
	}
	return client
}

func (a *App) runSteps(g *graph.Graph) error {
	a.logger.Info("🚀 Running steps...", "steps", a.config.Steps, "unsafe", a.config.Unsafe)
	g.SendEventToAllNodes(graph.NodeEventStart, nil)
	err := g.RunStep(a.config.Steps, a.config.Unsafe)
	g.SendEventToAllNodes(graph.NodeEventStop, nil)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "iteration", g.Iteration(), "fixed_time", g.FixedTime())
	return nil
}

// runTimer ticks until the graph stops on its own, the configured duration
// elapses or the process is interrupted.
func (a *App) runTimer(ctx context.Context, g *graph.Graph) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if a.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Duration)
		defer cancel()
	}

	a.logger.Info("🚀 Starting graph timer...", "interval", a.config.Interval, "duration", a.config.Duration)
	<-g.Start(ctx, a.config.Interval)
	a.logger.Info("🏁 Graph timer stopped.", "iteration", g.Iteration(), "global_time", g.GlobalTime())
}

func (a *App) dump(g *graph.Graph) error {
	data, err := json.MarshalIndent(g.Serialize(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = fmt.Fprintln(a.outW, string(data))
	return err
}
