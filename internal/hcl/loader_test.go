package hcl

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/testutil"
)

func TestLoad_FullDefinition(t *testing.T) {
	// --- Arrange ---
	t.Setenv("FLOWGRID_TEST_GREETING", "hello")
	path := testutil.WriteGraph(t, `
		graph {
		  max_nodes     = 50
		  align_to_grid = true
		}

		node "a" {
		  type       = "basic/const"
		  title      = "A"
		  pos        = [10, 20]
		  properties = { value = 5, tags = ["x", "y"], greeting = env.FLOWGRID_TEST_GREETING }
		  flags      = { pinned = true }
		}

		node "sum" {
		  type = "math/operation"
		  mode = "on_trigger"
		}

		link {
		  from = "a.value"
		  to   = "sum.0"
		}

		global_input "gain" {
		  type  = "number"
		  value = 2
		}

		global_output "total" {
		  type = "number"
		}
	`)
	ctx, _ := testutil.Context(t)

	// --- Act ---
	model, err := NewLoader().Load(ctx, path)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, model.Settings)
	assert.Equal(t, 50, *model.Settings.MaxNodes)
	assert.True(t, *model.Settings.AlignToGrid)
	assert.Nil(t, model.Settings.GridSize)

	want := []*config.Node{
		{
			Name:  "a",
			Type:  "basic/const",
			Title: "A",
			Pos:   []float64{10, 20},
			Properties: map[string]any{
				"value":    5.0,
				"tags":     []any{"x", "y"},
				"greeting": "hello",
			},
			Flags:  map[string]bool{"pinned": true},
			Origin: path,
		},
		{Name: "sum", Type: "math/operation", Mode: "on_trigger", Origin: path},
	}
	if diff := cmp.Diff(want, model.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []*config.Link{{From: "a.value", To: "sum.0", Origin: path}}, model.Links)
	assert.Equal(t, []*config.Global{{Name: "gain", Type: "number", Value: 2.0}}, model.GlobalInputs)
	assert.Equal(t, []*config.Global{{Name: "total", Type: "number"}}, model.GlobalOutputs)
	require.NoError(t, model.Validate())
}

func TestLoad_MergesDirectory(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"nodes.hcl":      `node "a" { type = "basic/const" }`,
		"more/links.hcl": "link {\n  from = \"a.value\"\n  to   = \"b.in\"\n}\n",
		"more/b.hcl":     `node "b" { type = "basic/watch" }`,
		"README.md":      `not a graph`,
	})
	ctx, _ := testutil.Context(t)

	model, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "nodes.hcl"), filepath.Join(dir, "missing"))

	require.NoError(t, err)
	assert.Len(t, model.Nodes, 2)
	assert.Len(t, model.Links, 1)
	assert.Nil(t, model.Settings)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"main.hcl": `node "a" {`},
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			files:   map[string]string{"main.hcl": "node \"a\" {\n  type   = \"x\"\n  colour = \"red\"\n}\n"},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "missing type",
			files:   map[string]string{"main.hcl": `node "a" {}`},
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "properties not an object",
			files:   map[string]string{"main.hcl": "node \"a\" {\n  type       = \"x\"\n  properties = [1, 2]\n}\n"},
			wantErr: "properties must be an object",
		},
		{
			name: "two graph blocks",
			files: map[string]string{
				"a.hcl": `graph { max_nodes = 1 }`,
				"b.hcl": `graph { max_nodes = 2 }`,
			},
			wantErr: "graph block already declared",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, tc.files)
			ctx, _ := testutil.Context(t)

			model, err := NewLoader().Load(ctx, dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Nil(t, model)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	ctx, _ := testutil.Context(t)

	_, err := NewLoader().Load(ctx, t.TempDir())

	require.ErrorIs(t, err, ErrNoFiles)
}
