package events

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/modules/internal/value"
)

// Entry is one received action.
type Entry struct {
	Action string
	Param  any
}

// Log records the actions it receives, keeping the newest "limit" entries.
type Log struct {
	entries []Entry
}

func (l *Log) Setup(n *graph.Node) {
	n.AddInput("in", graph.EventType)
	n.AddProperty("limit", 100, "number", nil)
}

func (l *Log) OnAction(n *graph.Node, action string, param any) error {
	l.entries = append(l.entries, Entry{Action: action, Param: param})
	prop, _ := n.Property("limit")
	if limit, ok := value.Int(prop); ok && limit > 0 && len(l.entries) > limit {
		l.entries = append(l.entries[:0:0], l.entries[len(l.entries)-limit:]...)
	}
	if g := n.Graph(); g != nil {
		g.Logger().Debug("Event received.", "node", n.String(), "action", action, "param", param)
	}
	return nil
}

func (l *Log) Entries() []Entry { return append([]Entry(nil), l.entries...) }

func (l *Log) Clear() { l.entries = nil }
