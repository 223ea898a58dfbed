package builder

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
)

// linkNodes connects every declared link through the regular connection
// protocol.
func linkNodes(ctx context.Context, decls []*config.Link, nodes map[string]*graph.Node) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for _, decl := range decls {
		from, err := config.ParseSlotAddress(decl.From)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", decl.Origin, err))
			continue
		}
		to, err := config.ParseSlotAddress(decl.To)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", decl.Origin, err))
			continue
		}
		origin, target := nodes[from.Node], nodes[to.Node]
		if origin == nil || target == nil {
			// The node failed to build; its error is already reported.
			continue
		}

		link, err := origin.Connect(slotRef(from), target, slotRef(to))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: link %s -> %s: %w", decl.Origin, from, to, err))
			continue
		}
		logger.Debug("Build: Link created.", "from", from.String(), "to", to.String(), "link_id", link.ID)
	}
	return joinBuildErrors("linking nodes", errs)
}

func slotRef(a config.SlotAddress) graph.SlotRef {
	if a.Index >= 0 {
		return graph.At(a.Index)
	}
	return graph.Named(a.Slot)
}
