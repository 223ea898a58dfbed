package graph

import "fmt"

// Global is a named value exchanged with whoever embeds the graph.
type Global struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

type globals struct {
	kind   string
	values map[string]*Global
}

func newGlobals(kind string) *globals {
	return &globals{kind: kind, values: make(map[string]*Global)}
}

func (s *globals) add(name, typ string, value any) {
	s.values[name] = &Global{Name: name, Type: typ, Value: value}
}

func (s *globals) get(name string) (*Global, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("global %s %q: %w", s.kind, name, ErrNotFound)
	}
	return v, nil
}

func (s *globals) rename(old, name string) error {
	v, err := s.get(old)
	if err != nil {
		return err
	}
	if old == name {
		return nil
	}
	if _, taken := s.values[name]; taken {
		return fmt.Errorf("global %s %q: %w", s.kind, name, ErrNameTaken)
	}
	delete(s.values, old)
	v.Name = name
	s.values[name] = v
	return nil
}

func (s *globals) snapshot() map[string]Global {
	if len(s.values) == 0 {
		return nil
	}
	out := make(map[string]Global, len(s.values))
	for k, v := range s.values {
		out[k] = Global{Name: v.Name, Type: v.Type, Value: cloneValue(v.Value)}
	}
	return out
}

func (s *globals) restore(in map[string]Global) {
	for k, v := range in {
		if v.Name == "" {
			v.Name = k
		}
		s.add(v.Name, v.Type, cloneValue(v.Value))
	}
}

func (g *Graph) globalsChanged(kind, name string) {
	g.broadcast(EventGlobalsChange, kind, name)
}

// AddGlobalInput declares or replaces a global input.
func (g *Graph) AddGlobalInput(name, typ string, value any) {
	g.globalInputs.add(name, typ, value)
	g.globalsChanged("input", name)
}

func (g *Graph) SetGlobalInputData(name string, value any) error {
	v, err := g.globalInputs.get(name)
	if err != nil {
		return err
	}
	v.Value = value
	return nil
}

func (g *Graph) GlobalInputData(name string) (any, bool) {
	v, err := g.globalInputs.get(name)
	if err != nil {
		return nil, false
	}
	return v.Value, true
}

// GlobalInput returns a copy of the named input's descriptor.
func (g *Graph) GlobalInput(name string) (Global, bool) {
	v, err := g.globalInputs.get(name)
	if err != nil {
		return Global{}, false
	}
	return *v, true
}

func (g *Graph) RenameGlobalInput(old, name string) error {
	if err := g.globalInputs.rename(old, name); err != nil {
		return err
	}
	g.globalsChanged("input", name)
	return nil
}

func (g *Graph) ChangeGlobalInputType(name, typ string) error {
	v, err := g.globalInputs.get(name)
	if err != nil {
		return err
	}
	if v.Type == typ {
		return nil
	}
	v.Type = typ
	g.globalsChanged("input", name)
	return nil
}

func (g *Graph) RemoveGlobalInput(name string) error {
	if _, err := g.globalInputs.get(name); err != nil {
		return err
	}
	delete(g.globalInputs.values, name)
	g.globalsChanged("input", name)
	return nil
}

// AddGlobalOutput declares or replaces a global output.
func (g *Graph) AddGlobalOutput(name, typ string, value any) {
	g.globalOutputs.add(name, typ, value)
	g.globalsChanged("output", name)
}

func (g *Graph) SetGlobalOutputData(name string, value any) error {
	v, err := g.globalOutputs.get(name)
	if err != nil {
		return err
	}
	v.Value = value
	return nil
}

func (g *Graph) GlobalOutputData(name string) (any, bool) {
	v, err := g.globalOutputs.get(name)
	if err != nil {
		return nil, false
	}
	return v.Value, true
}

func (g *Graph) GlobalOutput(name string) (Global, bool) {
	v, err := g.globalOutputs.get(name)
	if err != nil {
		return Global{}, false
	}
	return *v, true
}

func (g *Graph) RenameGlobalOutput(old, name string) error {
	if err := g.globalOutputs.rename(old, name); err != nil {
		return err
	}
	g.globalsChanged("output", name)
	return nil
}

func (g *Graph) ChangeGlobalOutputType(name, typ string) error {
	v, err := g.globalOutputs.get(name)
	if err != nil {
		return err
	}
	if v.Type == typ {
		return nil
	}
	v.Type = typ
	g.globalsChanged("output", name)
	return nil
}

func (g *Graph) RemoveGlobalOutput(name string) error {
	if _, err := g.globalOutputs.get(name); err != nil {
		return err
	}
	delete(g.globalOutputs.values, name)
	g.globalsChanged("output", name)
	return nil
}
