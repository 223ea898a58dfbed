package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a definition file may contain.
type fileRoot struct {
	Graph         *graphBlock    `hcl:"graph,block"`
	Nodes         []*nodeBlock   `hcl:"node,block"`
	Links         []*linkBlock   `hcl:"link,block"`
	GlobalInputs  []*globalBlock `hcl:"global_input,block"`
	GlobalOutputs []*globalBlock `hcl:"global_output,block"`
	Remain        hcl.Body       `hcl:",remain"`
}

type graphBlock struct {
	MaxNodes        *int     `hcl:"max_nodes,optional"`
	AlignToGrid     *bool    `hcl:"align_to_grid,optional"`
	GridSize        *float64 `hcl:"grid_size,optional"`
	MaxTriggerDepth *int     `hcl:"max_trigger_depth,optional"`
	FixedTimeLapse  *float64 `hcl:"fixed_time_lapse,optional"`
}

type nodeBlock struct {
	Name       string          `hcl:"name,label"`
	Type       string          `hcl:"type"`
	Title      string          `hcl:"title,optional"`
	Pos        []float64       `hcl:"pos,optional"`
	Mode       string          `hcl:"mode,optional"`
	Properties hcl.Expression  `hcl:"properties,optional"`
	Flags      map[string]bool `hcl:"flags,optional"`
}

type linkBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type globalBlock struct {
	Name  string         `hcl:"name,label"`
	Type  string         `hcl:"type,optional"`
	Value hcl.Expression `hcl:"value,optional"`
}
