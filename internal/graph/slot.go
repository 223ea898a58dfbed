package graph

import (
	"fmt"
	"strings"
)

// Slot is a named, typed connection point. Input slots use Link, output
// slots use Links. Both are caches of the graph's link table.
type Slot struct {
	Name  string
	Type  string
	Label string
	Link  *LinkID
	Links []LinkID
	Extra map[string]any

	// data caches the last value written to an output.
	data any
}

// DisplayName returns the label if set, the name otherwise.
func (s *Slot) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// IsEvent reports whether the slot carries triggers instead of data.
func (s *Slot) IsEvent() bool {
	return strings.EqualFold(s.Type, EventType)
}

// SlotOption customizes a slot while it is added.
type SlotOption func(*Slot)

func WithLabel(label string) SlotOption {
	return func(s *Slot) { s.Label = label }
}

func WithSlotExtra(key string, value any) SlotOption {
	return func(s *Slot) {
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[key] = value
	}
}

// SlotRef addresses a slot either by name or by index.
type SlotRef struct {
	name  string
	index int
}

// At refers to a slot by position.
func At(index int) SlotRef {
	return SlotRef{index: index}
}

// Named refers to a slot by name.
func Named(name string) SlotRef {
	return SlotRef{name: name, index: -1}
}

func (r SlotRef) String() string {
	if r.name != "" {
		return fmt.Sprintf("%q", r.name)
	}
	return fmt.Sprintf("#%d", r.index)
}

func resolveSlot(slots []*Slot, ref SlotRef) (int, error) {
	if ref.name != "" {
		for i, s := range slots {
			if s.Name == ref.name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %s", ErrSlotNotFound, ref)
	}
	if ref.index < 0 || ref.index >= len(slots) {
		return -1, fmt.Errorf("%w: %s of %d", ErrSlotOutOfRange, ref, len(slots))
	}
	return ref.index, nil
}

// IsValidConnection reports whether an output of type a may feed an input of
// type b. Empty types match anything, event types only match event types,
// everything else compares case-insensitively.
func IsValidConnection(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	aEvent := strings.EqualFold(a, EventType)
	bEvent := strings.EqualFold(b, EventType)
	if aEvent != bEvent {
		return false
	}
	return strings.EqualFold(a, b)
}
