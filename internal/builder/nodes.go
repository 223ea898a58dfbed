package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
)

// createNodes creates and adds every declared node, returning them by
// declared name. A node without a title is titled after its name.
func createNodes(ctx context.Context, g *graph.Graph, f graph.Factory, decls []*config.Node) (map[string]*graph.Node, error) {
	logger := ctxlog.FromContext(ctx)
	nodes := make(map[string]*graph.Node, len(decls))
	var errs []error

	for _, decl := range decls {
		opts, err := nodeOptions(decl)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: node %q: %w", decl.Origin, decl.Name, err))
			continue
		}
		title := decl.Title
		if title == "" {
			title = decl.Name
		}
		n, err := f.Create(decl.Type, title, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: node %q: %w", decl.Origin, decl.Name, err))
			continue
		}
		if err := g.Add(n, graph.DeferOrder()); err != nil {
			errs = append(errs, fmt.Errorf("%s: node %q: %w", decl.Origin, decl.Name, err))
			continue
		}

		keys := make([]string, 0, len(decl.Properties))
		for k := range decl.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.SetProperty(k, decl.Properties[k])
		}

		logger.Debug("Build: Node created.", "name", decl.Name, "node", n.String())
		nodes[decl.Name] = n
	}
	return nodes, joinBuildErrors("creating nodes", errs)
}

func nodeOptions(decl *config.Node) ([]graph.NodeOption, error) {
	var opts []graph.NodeOption
	if len(decl.Pos) == 2 {
		opts = append(opts, graph.WithPos(decl.Pos[0], decl.Pos[1]))
	}
	if decl.Mode != "" {
		m, err := graph.ParseMode(decl.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, graph.WithMode(m))
	}
	for name, v := range decl.Flags {
		opts = append(opts, graph.WithFlag(name, v))
	}
	return opts, nil
}
