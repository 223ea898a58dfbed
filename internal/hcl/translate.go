package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
)

func translateSettings(b *graphBlock) *config.Settings {
	return &config.Settings{
		MaxNodes:        b.MaxNodes,
		AlignToGrid:     b.AlignToGrid,
		GridSize:        b.GridSize,
		MaxTriggerDepth: b.MaxTriggerDepth,
		FixedTimeLapse:  b.FixedTimeLapse,
	}
}

// translateNode converts a node block into the agnostic model, evaluating
// its properties expression.
func (l *Loader) translateNode(ctx context.Context, file string, b *nodeBlock, evalCtx *hcl.EvalContext) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node", b.Name, "type", b.Type)
	logger.Debug("Translating HCL node to config model.")

	n := &config.Node{
		Name:   b.Name,
		Type:   b.Type,
		Title:  b.Title,
		Pos:    b.Pos,
		Mode:   b.Mode,
		Flags:  b.Flags,
		Origin: file,
	}
	if !isExprDefined(ctx, b.Properties, "properties") {
		return n, nil
	}

	val, diags := b.Properties.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: node %q: %w", file, b.Name, diags)
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("%s: node %q properties: %w", file, b.Name, err)
	}
	if native == nil {
		return n, nil
	}
	props, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: node %q: properties must be an object, got %s", file, b.Name, val.Type().FriendlyName())
	}
	n.Properties = props
	return n, nil
}

func (l *Loader) translateGlobal(ctx context.Context, file string, b *globalBlock, evalCtx *hcl.EvalContext) (*config.Global, error) {
	g := &config.Global{Name: b.Name, Type: b.Type}
	if !isExprDefined(ctx, b.Value, "value") {
		return g, nil
	}
	val, diags := b.Value.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: global %q: %w", file, b.Name, diags)
	}
	v, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("%s: global %q: %w", file, b.Name, err)
	}
	g.Value = v
	return g, nil
}

// isExprDefined reports whether an optional expression was written in the
// source. gohcl fills omitted optional expressions with zero-width
// placeholders, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}
