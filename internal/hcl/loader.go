package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("flowgrid.hcl")

// ErrNoFiles is returned when none of the given paths holds an .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their blocks into one
// model. Paths that do not exist are skipped; finding no file at all is an
// error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	ctx, span := tracer.Start(ctx, "hcl.Load", trace.WithAttributes(attribute.Int("paths", len(paths))))
	defer span.End()

	model, err := l.load(ctx, paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("nodes", len(model.Nodes)),
		attribute.Int("links", len(model.Links)),
	)
	span.SetStatus(codes.Ok, "")
	return model, nil
}

func (l *Loader) load(ctx context.Context, paths []string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envObject()},
	}
	model := &config.Model{}
	settingsFrom := ""

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Graph != nil {
			if settingsFrom != "" {
				return nil, fmt.Errorf("%s: graph block already declared in %s", file, settingsFrom)
			}
			settingsFrom = file
			model.Settings = translateSettings(root.Graph)
		}
		for _, b := range root.Nodes {
			n, err := l.translateNode(ctx, file, b, evalCtx)
			if err != nil {
				return nil, err
			}
			model.Nodes = append(model.Nodes, n)
		}
		for _, b := range root.Links {
			model.Links = append(model.Links, &config.Link{From: b.From, To: b.To, Origin: file})
		}
		for _, b := range root.GlobalInputs {
			g, err := l.translateGlobal(ctx, file, b, evalCtx)
			if err != nil {
				return nil, err
			}
			model.GlobalInputs = append(model.GlobalInputs, g)
		}
		for _, b := range root.GlobalOutputs {
			g, err := l.translateGlobal(ctx, file, b, evalCtx)
			if err != nil {
				return nil, err
			}
			model.GlobalOutputs = append(model.GlobalOutputs, g)
		}
	}

	logger.Debug("HCL loading complete.",
		"files", len(files),
		"nodes", len(model.Nodes),
		"links", len(model.Links),
		"global_inputs", len(model.GlobalInputs),
		"global_outputs", len(model.GlobalOutputs),
	)
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of the .hcl files found, in walk order.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			allFiles = append(allFiles, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
