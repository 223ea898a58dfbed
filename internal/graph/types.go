package graph

import (
	"fmt"
	"strings"
)

// NodeID identifies a node within one graph.
type NodeID int

// LinkID identifies a link within one graph.
type LinkID int

// Detached is the id of a node that has not been added to a graph yet.
const Detached NodeID = -1

// EventType is the reserved slot type for trigger channels.
const EventType = "event"

// Geometry and scheduling defaults.
const (
	DefaultMaxNodes        = 1000
	DefaultGridSize        = 10
	DefaultMaxTriggerDepth = 64
	DefaultFixedTimeLapse  = 0.01

	NodeWidth      = 140
	NodeSlotHeight = 14
	NodeTextSize   = 14
)

// DefaultPosition is where a freshly created node is placed.
var DefaultPosition = Vec2{100, 100}

// Vec2 is a position or size pair owned by the presentation layer.
type Vec2 [2]float64

// Mode is a node's execution policy.
type Mode int

const (
	ModeAlways Mode = iota
	ModeOnEvent
	ModeNever
	ModeOnTrigger
)

var modeNames = [...]string{"always", "on_event", "never", "on_trigger"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode converts a mode name ("always", "on_event", ...) to a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeAlways, fmt.Errorf("%w: unknown mode %q", ErrInvalidOperation, s)
}

// Status is the scheduler state.
type Status int

const (
	StatusStopped Status = iota + 1
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Direction tells connection-change hooks which side of a node changed.
type Direction int

const (
	Input Direction = iota + 1
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Well-known flag names.
const (
	FlagCollapsed    = "collapsed"
	FlagPinned       = "pinned"
	FlagIgnoreRemove = "ignore_remove"
	FlagClipArea     = "clip_area"
)
