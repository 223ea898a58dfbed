package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Model is the unified, format-agnostic representation of a graph
// definition.
type Model struct {
	Settings      *Settings
	Nodes         []*Node
	Links         []*Link
	GlobalInputs  []*Global
	GlobalOutputs []*Global
}

// Settings carries the graph-level limits. Nil fields keep the runtime
// defaults.
type Settings struct {
	MaxNodes        *int
	AlignToGrid     *bool
	GridSize        *float64
	MaxTriggerDepth *int
	FixedTimeLapse  *float64
}

// Node declares one node instance. Name is the handle links refer to.
type Node struct {
	Name       string
	Type       string
	Title      string
	Pos        []float64
	Mode       string
	Properties map[string]any
	Flags      map[string]bool
	// Origin is a human-readable location of the declaration, for errors.
	Origin string
}

// Link declares a connection between two slot addresses.
type Link struct {
	From   string
	To     string
	Origin string
}

// Global declares a graph-level input or output.
type Global struct {
	Name  string
	Type  string
	Value any
}

// Validate checks the model for problems that do not need a registry:
// missing types, duplicate names, malformed or dangling link addresses. All
// problems are reported at once.
func (m *Model) Validate() error {
	var errs []error
	names := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		switch {
		case n.Name == "":
			errs = append(errs, fmt.Errorf("%s: node without a name", n.Origin))
		case names[n.Name]:
			errs = append(errs, fmt.Errorf("%s: duplicate node %q", n.Origin, n.Name))
		}
		names[n.Name] = true
		if n.Type == "" {
			errs = append(errs, fmt.Errorf("%s: node %q has no type", n.Origin, n.Name))
		}
		if n.Pos != nil && len(n.Pos) != 2 {
			errs = append(errs, fmt.Errorf("%s: node %q: pos needs 2 elements, got %d", n.Origin, n.Name, len(n.Pos)))
		}
	}
	for _, l := range m.Links {
		for _, raw := range []string{l.From, l.To} {
			addr, err := ParseSlotAddress(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", l.Origin, err))
				continue
			}
			if !names[addr.Node] {
				errs = append(errs, fmt.Errorf("%s: link refers to unknown node %q", l.Origin, addr.Node))
			}
		}
	}
	globals := make(map[string]bool)
	for _, g := range m.GlobalInputs {
		if globals["in:"+g.Name] {
			errs = append(errs, fmt.Errorf("duplicate global input %q", g.Name))
		}
		globals["in:"+g.Name] = true
	}
	for _, g := range m.GlobalOutputs {
		if globals["out:"+g.Name] {
			errs = append(errs, fmt.Errorf("duplicate global output %q", g.Name))
		}
		globals["out:"+g.Name] = true
	}
	return errors.Join(errs...)
}

// SlotAddress is a parsed "node.slot" reference. Index is -1 when the slot
// is addressed by name.
type SlotAddress struct {
	Node  string
	Slot  string
	Index int
}

func (a SlotAddress) String() string {
	if a.Index >= 0 {
		return fmt.Sprintf("%s.%d", a.Node, a.Index)
	}
	return a.Node + "." + a.Slot
}

// slotAddrRegex matches "node.slot" where slot is a name or an index.
var slotAddrRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)\.([a-zA-Z0-9_ -]+)$`)

// ParseSlotAddress splits "node.slot". A purely numeric slot is an index.
func ParseSlotAddress(addr string) (SlotAddress, error) {
	matches := slotAddrRegex.FindStringSubmatch(addr)
	if matches == nil {
		return SlotAddress{}, fmt.Errorf("invalid slot address %q, want node.slot", addr)
	}
	a := SlotAddress{Node: matches[1], Slot: matches[2], Index: -1}
	if i, err := strconv.Atoi(a.Slot); err == nil {
		if i < 0 {
			return SlotAddress{}, fmt.Errorf("invalid slot index in %q", addr)
		}
		a.Index = i
	}
	return a, nil
}
