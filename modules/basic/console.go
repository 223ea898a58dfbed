package basic

import (
	"context"
	"log/slog"

	"github.com/vk/flowgrid/internal/graph"
)

// Console writes its input to the graph logger. On ticks it logs the
// "value" input when connected; the "log" action logs the trigger payload,
// or the input when the payload is nil.
type Console struct {
	// Count is the number of lines written.
	Count int
}

func (c *Console) Setup(n *graph.Node) {
	n.AddInput("log", graph.EventType)
	n.AddInput("value", "")
	n.AddProperty("msg", "", "string", nil)
	n.AddProperty("level", "info", "enum", map[string]any{"values": []string{"debug", "info", "warn", "error"}})
}

func (c *Console) OnExecute(n *graph.Node, _ any) error {
	v, ok := n.InputData(1, false)
	if !ok {
		return nil
	}
	c.write(n, "tick", v)
	return nil
}

func (c *Console) OnAction(n *graph.Node, action string, param any) error {
	if param == nil {
		param, _ = n.InputData(1, false)
	}
	c.write(n, action, param)
	return nil
}

func (c *Console) OnPropertyChanged(_ *graph.Node, name string, value, _ any) bool {
	if name != "level" {
		return true
	}
	s, _ := value.(string)
	_, ok := levels[s]
	return ok
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func (c *Console) write(n *graph.Node, source string, v any) {
	g := n.Graph()
	if g == nil {
		return
	}
	level := slog.LevelInfo
	if prop, ok := n.Property("level"); ok {
		name, _ := prop.(string)
		if l, ok := levels[name]; ok {
			level = l
		}
	}
	prop, _ := n.Property("msg")
	msg, _ := prop.(string)
	if msg == "" {
		msg = "Console"
	}
	c.Count++
	g.Logger().Log(context.Background(), level, msg, "node", n.String(), "source", source, "value", v)
}
