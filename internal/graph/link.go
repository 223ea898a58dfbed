package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// Link is a directed edge from an output slot to an input slot. Its type is
// copied from the input side when the link is created.
type Link struct {
	ID         LinkID
	Type       string
	OriginID   NodeID
	OriginSlot int
	TargetID   NodeID
	TargetSlot int
	LastFired  time.Time

	// Data is the last payload written by the origin output.
	Data any
}

// Tuple packs the link into its serialized positional form.
func (l *Link) Tuple() LinkTuple {
	return LinkTuple{int(l.ID), int(l.OriginID), l.OriginSlot, int(l.TargetID), l.TargetSlot}
}

func (l *Link) String() string {
	return fmt.Sprintf("link#%d %d:%d->%d:%d", l.ID, l.OriginID, l.OriginSlot, l.TargetID, l.TargetSlot)
}

// LinkTuple is the packed link layout: [id, originId, originSlot, targetId, targetSlot].
type LinkTuple [5]int

func (t LinkTuple) link() *Link {
	return &Link{
		ID:         LinkID(t[0]),
		OriginID:   NodeID(t[1]),
		OriginSlot: t[2],
		TargetID:   NodeID(t[3]),
		TargetSlot: t[4],
	}
}

// LinkRef is a slot-held link reference as found in snapshots. Current
// snapshots store a plain id, older ones a full tuple.
type LinkRef struct {
	ID     LinkID
	Legacy *LinkTuple
}

func (r LinkRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r.ID))
}

func (r *LinkRef) UnmarshalJSON(b []byte) error {
	var id int
	if err := json.Unmarshal(b, &id); err == nil {
		r.ID = LinkID(id)
		r.Legacy = nil
		return nil
	}
	// Old tuples may carry a trailing type string.
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("link reference must be an id or a tuple: %w", err)
	}
	if len(raw) < 5 {
		return fmt.Errorf("link tuple has %d fields, want 5", len(raw))
	}
	var t LinkTuple
	for i := range t {
		f, ok := raw[i].(float64)
		if !ok {
			return fmt.Errorf("link tuple field %d is %T, want number", i, raw[i])
		}
		t[i] = int(f)
	}
	r.ID = LinkID(t[0])
	r.Legacy = &t
	return nil
}
