package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/vk/flowgrid/internal/graph"
)

var (
	// ErrInvalidType is returned for registrations the registry refuses.
	ErrInvalidType = errors.New("invalid node type registration")
	// ErrDuplicateType is returned when a type name is already taken.
	ErrDuplicateType = errors.New("node type already registered")
)

// Module is the interface that all built-in node packages implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Constructor returns a fresh behavior for one node.
type Constructor func() graph.Behavior

// NodeType is a registered type and its metadata. It is immutable once
// registered.
type NodeType struct {
	Type        string
	Title       string
	Category    string
	Description string
	Extensions  []string
	Hidden      bool

	ctor Constructor
}

// TypeOption sets optional metadata on a registration.
type TypeOption func(*NodeType)

func WithTitle(title string) TypeOption {
	return func(t *NodeType) { t.Title = title }
}

func WithDescription(desc string) TypeOption {
	return func(t *NodeType) { t.Description = desc }
}

// WithExtensions associates file extensions (without dot) with the type.
func WithExtensions(exts ...string) TypeOption {
	return func(t *NodeType) { t.Extensions = append(t.Extensions, exts...) }
}

// Hidden keeps the type out of category listings.
func Hidden() TypeOption {
	return func(t *NodeType) { t.Hidden = true }
}

var _ graph.Factory = (*Registry)(nil)

// Registry holds the node types of one application instance.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]*NodeType
	extensions map[string]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		types:      make(map[string]*NodeType),
		extensions: make(map[string]string),
	}
}

// RegisterModules lets every module register its types.
func (r *Registry) RegisterModules(mods ...Module) {
	for _, m := range mods {
		m.Register(r)
	}
}

// Register stores ctor under typeName. The category is derived from the
// path and the title defaults to the last path element.
func (r *Registry) Register(typeName string, ctor Constructor, opts ...TypeOption) error {
	typeName = strings.Trim(typeName, "/")
	if typeName == "" {
		return fmt.Errorf("%w: empty type name", ErrInvalidType)
	}
	if ctor == nil {
		return fmt.Errorf("%w: %q has no constructor", ErrInvalidType, typeName)
	}
	if ctor() == nil {
		return fmt.Errorf("%w: constructor of %q returned no behavior", ErrInvalidType, typeName)
	}

	nt := &NodeType{Type: typeName, ctor: ctor}
	if i := strings.LastIndex(typeName, "/"); i >= 0 {
		nt.Category = typeName[:i]
		nt.Title = typeName[i+1:]
	} else {
		nt.Title = typeName
	}
	for _, opt := range opts {
		opt(nt)
	}
	for i, ext := range nt.Extensions {
		nt.Extensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[typeName]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, typeName)
	}
	r.types[typeName] = nt
	for _, ext := range nt.Extensions {
		r.extensions[ext] = typeName
	}
	slog.Debug("Registering node type.", "type", typeName, "category", nt.Category)
	return nil
}

// MustRegister is Register for module init code, where a bad registration
// is a programming error.
func (r *Registry) MustRegister(typeName string, ctor Constructor, opts ...TypeOption) {
	if err := r.Register(typeName, ctor, opts...); err != nil {
		panic(err)
	}
}

// Unregister removes a type and its extension claims.
func (r *Registry) Unregister(typeName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	nt, ok := r.types[typeName]
	if !ok {
		return false
	}
	delete(r.types, typeName)
	for _, ext := range nt.Extensions {
		if r.extensions[ext] == typeName {
			delete(r.extensions, ext)
		}
	}
	return true
}

// Create instantiates a detached node of the given type. An unregistered
// type yields an error matching graph.ErrUnknownNodeType and no node.
func (r *Registry) Create(typeName, title string, opts ...graph.NodeOption) (*graph.Node, error) {
	r.mu.RLock()
	nt, ok := r.types[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", graph.ErrUnknownNodeType, typeName)
	}
	b := nt.ctor()
	if b == nil {
		return nil, fmt.Errorf("%w: constructor of %q returned no behavior", ErrInvalidType, typeName)
	}
	if title == "" {
		title = nt.Title
	}
	return graph.NewNode(typeName, title, b, opts...), nil
}

// NodeType returns the registration for typeName.
func (r *Registry) NodeType(typeName string) (NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nt, ok := r.types[typeName]
	if !ok {
		return NodeType{}, false
	}
	return nt.copy(), true
}

// Types returns every registration sorted by type name.
func (r *Registry) Types() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NodeType, 0, len(r.types))
	for _, nt := range r.types {
		out = append(out, nt.copy())
	}
	slices.SortFunc(out, func(a, b NodeType) int { return strings.Compare(a.Type, b.Type) })
	return out
}

// TypesInCategory lists the visible types of one category.
func (r *Registry) TypesInCategory(category string) []NodeType {
	var out []NodeType
	for _, nt := range r.Types() {
		if nt.Category == category && !nt.Hidden {
			out = append(out, nt)
		}
	}
	return out
}

// Categories returns the distinct categories of visible types.
func (r *Registry) Categories() []string {
	var out []string
	for _, nt := range r.Types() {
		if nt.Hidden || slices.Contains(out, nt.Category) {
			continue
		}
		out = append(out, nt.Category)
	}
	slices.Sort(out)
	return out
}

// TypeForExtension finds the type that claimed a file extension.
func (r *Registry) TypeForExtension(ext string) (NodeType, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	r.mu.RLock()
	name, ok := r.extensions[ext]
	r.mu.RUnlock()
	if !ok {
		return NodeType{}, false
	}
	return r.NodeType(name)
}

func (t *NodeType) copy() NodeType {
	c := *t
	c.Extensions = slices.Clone(t.Extensions)
	return c
}
