package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("flowgrid.builder")

// Build constructs a graph from model, creating nodes through f. opts are
// applied after the settings declared in the model.
func Build(ctx context.Context, model *config.Model, f graph.Factory, opts ...graph.Option) (*graph.Graph, error) {
	ctx, span := tracer.Start(ctx, "builder.Build", trace.WithAttributes(
		attribute.Int("nodes", len(model.Nodes)),
		attribute.Int("links", len(model.Links)),
	))
	defer span.End()

	g, err := build(ctx, model, f, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return g, nil
}

func build(ctx context.Context, model *config.Model, f graph.Factory, opts []graph.Option) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph definition: %w", err)
	}

	opts = append([]graph.Option{graph.WithConfig(graphConfig(model.Settings))}, opts...)
	g := graph.New(ctx, f, opts...)

	for _, gl := range model.GlobalInputs {
		g.AddGlobalInput(gl.Name, gl.Type, gl.Value)
	}
	for _, gl := range model.GlobalOutputs {
		g.AddGlobalOutput(gl.Name, gl.Type, gl.Value)
	}

	nodes, nodeErr := createNodes(ctx, g, f, model.Nodes)
	logger.Debug("Build: Node creation complete.", "node_count", len(nodes))

	linkErr := linkNodes(ctx, model.Links, nodes)
	logger.Debug("Build: Node linking complete.", "link_count", g.LinkCount())

	if err := errors.Join(nodeErr, linkErr); err != nil {
		return nil, err
	}

	g.UpdateExecutionOrder()
	logger.Info("Build: Graph construction successful.", "nodes", g.NodeCount(), "links", g.LinkCount())
	return g, nil
}

// graphConfig overlays the declared settings on the runtime defaults.
func graphConfig(s *config.Settings) graph.Config {
	c := graph.DefaultConfig()
	if s == nil {
		return c
	}
	if s.MaxNodes != nil {
		c.MaxNodes = *s.MaxNodes
	}
	if s.AlignToGrid != nil {
		c.AlignToGrid = *s.AlignToGrid
	}
	if s.GridSize != nil {
		c.GridSize = *s.GridSize
	}
	if s.MaxTriggerDepth != nil {
		c.MaxTriggerDepth = *s.MaxTriggerDepth
	}
	if s.FixedTimeLapse != nil {
		c.FixedTimeLapse = *s.FixedTimeLapse
	}
	return c
}

func joinBuildErrors(phase string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w", phase, errors.Join(errs...))
}
