package graph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
)

// Config holds the graph-level settings carried in snapshots.
type Config struct {
	MaxNodes        int     `json:"max_nodes,omitempty"`
	AlignToGrid     bool    `json:"align_to_grid,omitempty"`
	GridSize        float64 `json:"grid_size,omitempty"`
	MaxTriggerDepth int     `json:"max_trigger_depth,omitempty"`
	FixedTimeLapse  float64 `json:"fixed_time_lapse,omitempty"`
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxNodes:        DefaultMaxNodes,
		GridSize:        DefaultGridSize,
		MaxTriggerDepth: DefaultMaxTriggerDepth,
		FixedTimeLapse:  DefaultFixedTimeLapse,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxNodes <= 0 {
		c.MaxNodes = d.MaxNodes
	}
	if c.GridSize <= 0 {
		c.GridSize = d.GridSize
	}
	if c.MaxTriggerDepth <= 0 {
		c.MaxTriggerDepth = d.MaxTriggerDepth
	}
	if c.FixedTimeLapse <= 0 {
		c.FixedTimeLapse = d.FixedTimeLapse
	}
	return c
}

// Factory creates detached nodes by type name. The registry implements it.
type Factory interface {
	Create(typeName, title string, opts ...NodeOption) (*Node, error)
}

// Graph owns nodes and links and hosts the scheduler. It is not safe for
// concurrent use: while a timer started by Start is armed, every other
// goroutine must go through Do.
type Graph struct {
	config  Config
	factory Factory
	logger  *slog.Logger
	now     func() time.Time
	metrics *metrics

	nodes      []*Node
	byID       map[NodeID]*Node
	links      map[LinkID]*Link
	lastNodeID NodeID
	lastLinkID LinkID

	order      []*Node
	executable []*Node

	globalInputs  *globals
	globalOutputs *globals
	selected      map[NodeID]struct{}
	listeners     []*listener

	status       Status
	iteration    int64
	frame        int64
	fixedTime    float64
	globalTime   float64
	elapsedTime  float64
	startTime    time.Time
	faulted      bool
	lastFault    error
	triggerDepth int
	executing    *Node

	afterStep    func(*Graph)
	afterExecute func(*Graph)

	loop sync.Mutex
	run  *runState
}

// Option configures a Graph.
type Option func(*Graph)

func WithConfig(c Config) Option {
	return func(g *Graph) { g.config = c.withDefaults() }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.logger = l }
}

// WithClock replaces the wall clock used for diagnostics and link stamps.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) { g.now = now }
}

// WithAfterStep registers a hook run after every step of RunStep.
func WithAfterStep(fn func(*Graph)) Option {
	return func(g *Graph) { g.afterStep = fn }
}

// WithAfterExecute registers a hook run once at the end of RunStep.
func WithAfterExecute(fn func(*Graph)) Option {
	return func(g *Graph) { g.afterExecute = fn }
}

// New creates an empty, stopped graph. factory may be nil when the graph is
// never configured from snapshots. The logger is taken from ctx.
func New(ctx context.Context, factory Factory, opts ...Option) *Graph {
	g := &Graph{
		config:        DefaultConfig(),
		factory:       factory,
		logger:        ctxlog.FromContext(ctx).With("component", "graph"),
		now:           time.Now,
		metrics:       &metrics{},
		byID:          make(map[NodeID]*Node),
		links:         make(map[LinkID]*Link),
		globalInputs:  newGlobals("input"),
		globalOutputs: newGlobals("output"),
		selected:      make(map[NodeID]struct{}),
		status:        StatusStopped,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.metrics.init(g.logger)
	return g
}

func (g *Graph) Config() Config       { return g.config }
func (g *Graph) Factory() Factory     { return g.factory }
func (g *Graph) Logger() *slog.Logger { return g.logger }

// Clear stops the graph and drops every node, link and global.
func (g *Graph) Clear() {
	g.Stop()
	for _, n := range g.nodes {
		if h, ok := n.behavior.(RemovedHook); ok {
			h.OnRemoved(n)
		}
		n.graph = nil
	}
	g.metrics.nodeDelta(-int64(len(g.nodes)))

	g.nodes = nil
	g.byID = make(map[NodeID]*Node)
	g.links = make(map[LinkID]*Link)
	g.lastNodeID = 0
	g.lastLinkID = 0
	g.order = nil
	g.executable = nil
	g.globalInputs = newGlobals("input")
	g.globalOutputs = newGlobals("output")
	g.selected = make(map[NodeID]struct{})
	g.iteration = 0
	g.frame = 0
	g.fixedTime = 0
	g.globalTime = 0
	g.elapsedTime = 0
	g.faulted = false
	g.lastFault = nil

	g.logger.Debug("Graph cleared.")
	g.broadcast(EventClear)
}

// AddOption tunes a single Add call.
type AddOption func(*addOptions)

type addOptions struct {
	deferOrder bool
}

// DeferOrder skips the execution order recompute. Bulk loaders call
// UpdateExecutionOrder once at the end.
func DeferOrder() AddOption {
	return func(o *addOptions) { o.deferOrder = true }
}

// Add indexes a detached node, assigning it an id. Adding a node that is
// already indexed is a no-op. At the node ceiling the add is aborted with
// ErrCapacityExceeded.
func (g *Graph) Add(n *Node, opts ...AddOption) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidOperation)
	}
	if n.graph == g && g.byID[n.id] == n {
		return nil
	}
	if n.graph != nil {
		return ErrForeignNode
	}
	if len(g.nodes) >= g.config.MaxNodes {
		return fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, g.config.MaxNodes)
	}
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case n.id <= 0:
		g.lastNodeID++
		n.id = g.lastNodeID
	case g.byID[n.id] != nil:
		g.logger.Warn("Node id already in use, assigning a new one.", "id", n.id)
		g.lastNodeID++
		n.id = g.lastNodeID
	case n.id > g.lastNodeID:
		g.lastNodeID = n.id
	}

	n.graph = g
	g.nodes = append(g.nodes, n)
	g.byID[n.id] = n
	if g.config.AlignToGrid {
		n.AlignToGrid(g.config.GridSize)
	}
	if !o.deferOrder {
		g.UpdateExecutionOrder()
	}
	if h, ok := n.behavior.(AddedHook); ok {
		h.OnAdded(n)
	}

	g.metrics.nodeDelta(1)
	g.logger.Debug("Node added.", "node", n.String(), "title", n.Title)
	g.broadcast(EventNodeAdded, n)
	return nil
}

// Remove severs every link of n and unindexes it. Unknown nodes and nodes
// flagged ignore_remove are left alone.
func (g *Graph) Remove(n *Node) {
	if n == nil || n.graph != g || g.byID[n.id] != n {
		return
	}
	if n.flags[FlagIgnoreRemove] {
		return
	}

	for i, in := range n.inputs {
		if in.Link != nil {
			_ = n.DisconnectInput(At(i))
		}
	}
	for i, out := range n.outputs {
		if len(out.Links) > 0 {
			_ = n.DisconnectOutput(At(i), nil)
		}
	}
	g.dropLinksOf(n.id)
	delete(g.selected, n.id)

	if h, ok := n.behavior.(RemovedHook); ok {
		h.OnRemoved(n)
	}

	delete(g.byID, n.id)
	g.nodes = slices.DeleteFunc(g.nodes, func(m *Node) bool { return m == n })
	n.graph = nil
	g.UpdateExecutionOrder()

	g.metrics.nodeDelta(-1)
	g.logger.Debug("Node removed.", "node", n.String())
	g.broadcast(EventNodeRemoved, n)
}

// dropLinksOf deletes any link record still referencing id, clearing the
// slot caches on the far side.
func (g *Graph) dropLinksOf(id NodeID) {
	for lid, l := range g.links {
		if l.OriginID != id && l.TargetID != id {
			continue
		}
		delete(g.links, lid)
		if dst := g.byID[l.TargetID]; dst != nil && l.TargetID != id {
			if in := dst.Input(l.TargetSlot); in != nil && in.Link != nil && *in.Link == lid {
				in.Link = nil
			}
		}
		if src := g.byID[l.OriginID]; src != nil && l.OriginID != id {
			if out := src.Output(l.OriginSlot); out != nil {
				out.Links = slices.DeleteFunc(out.Links, func(x LinkID) bool { return x == lid })
			}
		}
	}
}

// resolveLink returns the link only when both endpoints are indexed.
func (g *Graph) resolveLink(id LinkID) *Link {
	l := g.links[id]
	if l == nil {
		return nil
	}
	if g.byID[l.OriginID] == nil || g.byID[l.TargetID] == nil {
		return nil
	}
	return l
}

// connectionChange keeps the cached order in step with the topology.
func (g *Graph) connectionChange(n *Node) {
	g.UpdateExecutionOrder()
	g.broadcast(EventConnectionChange, n)
}

// --- Lookups ---

func (g *Graph) NodeByID(id NodeID) *Node { return g.byID[id] }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

func (g *Graph) NodeCount() int { return len(g.nodes) }

// FindNodesByType matches type names case-insensitively.
func (g *Graph) FindNodesByType(typeName string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if strings.EqualFold(n.typ, typeName) {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) FindNodesByTitle(title string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Title == title {
			out = append(out, n)
		}
	}
	return out
}

// Link returns a live link, nil for unknown or orphaned ids.
func (g *Graph) Link(id LinkID) *Link { return g.resolveLink(id) }

// Links returns the live links sorted by id.
func (g *Graph) Links() []*Link {
	out := make([]*Link, 0, len(g.links))
	for id := range g.links {
		if l := g.resolveLink(id); l != nil {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b *Link) int { return int(a.ID) - int(b.ID) })
	return out
}

func (g *Graph) LinkCount() int { return len(g.Links()) }

// --- Selection ---

func (g *Graph) Select(n *Node) {
	if n != nil && g.byID[n.id] == n {
		g.selected[n.id] = struct{}{}
	}
}

func (g *Graph) Deselect(n *Node) {
	if n != nil {
		delete(g.selected, n.id)
	}
}

func (g *Graph) IsSelected(n *Node) bool {
	if n == nil {
		return false
	}
	_, ok := g.selected[n.id]
	return ok
}

// Selected returns the selected node ids in ascending order.
func (g *Graph) Selected() []NodeID {
	out := make([]NodeID, 0, len(g.selected))
	for id := range g.selected {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// --- Status ---

func (g *Graph) Status() Status       { return g.status }
func (g *Graph) Faulted() bool        { return g.faulted }
func (g *Graph) LastFault() error     { return g.lastFault }
func (g *Graph) Iteration() int64     { return g.iteration }
func (g *Graph) FixedTime() float64   { return g.fixedTime }
func (g *Graph) GlobalTime() float64  { return g.globalTime }
func (g *Graph) ElapsedTime() float64 { return g.elapsedTime }
