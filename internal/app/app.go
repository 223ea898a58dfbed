package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model

	graph      *graph.Graph
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads the graph
// definition and registers the node type modules, coreModules when none
// are given. A definition that cannot be loaded is fatal and panics; the
// entrypoint recovers it.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load graph definition: %w", err))
	}
	logger.Debug("Graph definition loaded.", "nodes", len(model.Nodes), "links", len(model.Links))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "types", len(reg.Types()))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the graph of the last Run, nil before the first one.
func (a *App) Graph() *graph.Graph {
	return a.graph
}
