package testutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vk/flowgrid/internal/graph"
)

// Source has one number output and publishes its "value" property on
// every tick.
type Source struct{}

func (s *Source) Setup(n *graph.Node) {
	n.AddOutput("out", "number")
	n.AddProperty("value", 0, "number", nil)
}

func (s *Source) OnExecute(n *graph.Node, _ any) error {
	v, _ := n.Property("value")
	n.SetOutputData(0, v)
	return nil
}

// Sink has two number inputs and keeps what it read last.
type Sink struct {
	Last [2]any
}

func (s *Sink) Setup(n *graph.Node) {
	n.AddInput("a", "number")
	n.AddInput("b", "number")
}

func (s *Sink) OnExecute(n *graph.Node, _ any) error {
	for i := range s.Last {
		s.Last[i], _ = n.InputData(i, false)
	}
	return nil
}

// Passthrough copies its number input to its number output.
type Passthrough struct{}

func (p *Passthrough) Setup(n *graph.Node) {
	n.AddInput("in", "number")
	n.AddOutput("out", "number")
}

func (p *Passthrough) OnExecute(n *graph.Node, _ any) error {
	v, _ := n.InputData(0, false)
	n.SetOutputData(0, v)
	return nil
}

// Probe implements every optional hook and records the calls it receives.
// Setting the "veto" property to true refuses incoming connections and
// writing the value "reject" to any property is refused.
type Probe struct {
	Calls []string
	Ticks int
}

func (p *Probe) record(format string, args ...any) {
	p.Calls = append(p.Calls, fmt.Sprintf(format, args...))
}

func (p *Probe) Setup(n *graph.Node) {
	n.AddInput("in", "")
	n.AddOutput("out", "")
	n.AddProperty("veto", false, "boolean", nil)
}

func (p *Probe) OnAdded(n *graph.Node)   { p.record("added") }
func (p *Probe) OnRemoved(n *graph.Node) { p.record("removed") }
func (p *Probe) OnStart(n *graph.Node)   { p.record("start") }
func (p *Probe) OnStop(n *graph.Node)    { p.record("stop") }

func (p *Probe) OnExecute(n *graph.Node, _ any) error {
	p.Ticks++
	return nil
}

func (p *Probe) OnEvent(n *graph.Node, event string, _ any) {
	p.record("event:%s", event)
}

func (p *Probe) OnConnectionsChange(n *graph.Node, dir graph.Direction, slot int, connected bool, _ *graph.Link) {
	p.record("connections:%s:%d:%t", dir, slot, connected)
}

func (p *Probe) OnConnectInput(n *graph.Node, slot int, _ string, _ *graph.Node, _ int) bool {
	veto, _ := n.Property("veto")
	return veto != true
}

func (p *Probe) OnPropertyChanged(n *graph.Node, name string, value, _ any) bool {
	if value == "reject" {
		return false
	}
	p.record("property:%s", name)
	return true
}

func (p *Probe) OnSerialize(n *graph.Node, s *graph.NodeSnapshot) {
	s.Extra = map[string]any{"ticks": p.Ticks}
}

func (p *Probe) OnConfigure(n *graph.Node, s *graph.NodeSnapshot) {
	switch t := s.Extra["ticks"].(type) {
	case int:
		p.Ticks = t
	case float64:
		p.Ticks = int(t)
	}
	p.record("configured")
}

// Emitter fires its "fire" event output on every tick with the tick count.
type Emitter struct {
	count int
}

func (e *Emitter) Setup(n *graph.Node) {
	n.AddOutput("fire", graph.EventType)
}

func (e *Emitter) OnExecute(n *graph.Node, _ any) error {
	e.count++
	return n.Trigger("fire", e.count)
}

// Relay receives an action on "in" and re-triggers "out". Chained in a ring
// it recurses until the depth guard stops it.
type Relay struct {
	Received []any
}

func (r *Relay) Setup(n *graph.Node) {
	n.AddInput("in", graph.EventType)
	n.AddOutput("out", graph.EventType)
}

func (r *Relay) OnAction(n *graph.Node, _ string, param any) error {
	r.Received = append(r.Received, param)
	return n.Trigger("out", param)
}

// ErrBoom is what Failing returns from its tick.
var ErrBoom = errors.New("boom")

// Failing fails its tick: with ErrBoom, or by panicking when the "panic"
// property is true.
type Failing struct{}

func (f *Failing) Setup(n *graph.Node) {
	n.AddProperty("panic", false, "boolean", nil)
}

func (f *Failing) OnExecute(n *graph.Node, _ any) error {
	if p, _ := n.Property("panic"); p == true {
		panic("failing node panicked")
	}
	return ErrBoom
}

// Journal collects tick records from Recorder nodes running on the
// scheduler goroutine.
type Journal struct {
	mu      sync.Mutex
	entries []graph.NodeID
	ticked  chan graph.NodeID
}

// NewJournal creates a journal that also publishes every tick on a channel
// with the given buffer size. Ticks beyond the buffer are only recorded.
func NewJournal(buffer int) *Journal {
	return &Journal{ticked: make(chan graph.NodeID, buffer)}
}

// Ticks returns a channel receiving the id of every ticking node.
func (j *Journal) Ticks() <-chan graph.NodeID { return j.ticked }

// Entries returns the recorded node ids in tick order.
func (j *Journal) Entries() []graph.NodeID {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]graph.NodeID(nil), j.entries...)
}

func (j *Journal) add(id graph.NodeID) {
	j.mu.Lock()
	j.entries = append(j.entries, id)
	j.mu.Unlock()
	select {
	case j.ticked <- id:
	default:
	}
}

// Recorder writes one journal entry per tick.
type Recorder struct {
	Journal *Journal
}

func (r *Recorder) Setup(n *graph.Node) {
	n.AddInput("in", "")
	n.AddOutput("out", "")
}

func (r *Recorder) OnExecute(n *graph.Node, _ any) error {
	r.Journal.add(n.ID())
	return nil
}
