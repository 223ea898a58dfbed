package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotAddress(t *testing.T) {
	testCases := []struct {
		in      string
		want    SlotAddress
		wantErr bool
	}{
		{in: "a.value", want: SlotAddress{Node: "a", Slot: "value", Index: -1}},
		{in: "sum.0", want: SlotAddress{Node: "sum", Slot: "0", Index: 0}},
		{in: "my-node.on tick", want: SlotAddress{Node: "my-node", Slot: "on tick", Index: -1}},
		{in: "noslot", wantErr: true},
		{in: "a.b.c", wantErr: true},
		{in: ".x", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSlotAddress(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModelValidate(t *testing.T) {
	m := &Model{
		Nodes: []*Node{
			{Name: "a", Type: "basic/const", Origin: "g.hcl:1"},
			{Name: "a", Type: "basic/const", Origin: "g.hcl:5"},
			{Name: "b", Origin: "g.hcl:9", Pos: []float64{1}},
		},
		Links: []*Link{
			{From: "a.value", To: "b.0", Origin: "g.hcl:12"},
			{From: "a.value", To: "ghost.in", Origin: "g.hcl:13"},
			{From: "broken", To: "b.in", Origin: "g.hcl:14"},
		},
		GlobalInputs: []*Global{{Name: "gain"}, {Name: "gain"}},
	}

	err := m.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`g.hcl:5: duplicate node "a"`,
		`g.hcl:9: node "b" has no type`,
		`pos needs 2 elements`,
		`g.hcl:13: link refers to unknown node "ghost"`,
		`g.hcl:14: invalid slot address "broken"`,
		`duplicate global input "gain"`,
	} {
		assert.Contains(t, err.Error(), want)
	}

	valid := &Model{
		Nodes: []*Node{{Name: "a", Type: "t"}, {Name: "b", Type: "t"}},
		Links: []*Link{{From: "a.0", To: "b.in"}},
	}
	assert.NoError(t, valid.Validate())
}
