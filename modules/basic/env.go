package basic

import (
	"os"
	"strings"

	"github.com/vk/flowgrid/internal/graph"
)

// Env outputs the process environment as a map of strings. A non-empty
// "prefix" property keeps only the matching variables.
type Env struct{}

func (e *Env) Setup(n *graph.Node) {
	n.AddOutput("env", "object")
	n.AddProperty("prefix", "", "string", nil)
}

func (e *Env) OnExecute(n *graph.Node, _ any) error {
	e.UpdateOutputData(n, 0)
	return nil
}

func (e *Env) UpdateOutputData(n *graph.Node, _ int) {
	prop, _ := n.Property("prefix")
	prefix, _ := prop.(string)
	n.SetOutputData(0, environ(prefix))
}

func environ(prefix string) map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}
