// Package registry maps hierarchical node type names to their constructors.
//
// A Registry is an explicitly constructed value: the application creates one,
// lets every compiled-in Module register its node types into it and hands it
// to the graph as its graph.Factory. There is no process-wide registry.
//
// Type names are slash-delimited paths such as "math/operation". Everything
// before the last slash is the type's category, the last element is its
// default title. A type may also claim file extensions so that a
// presentation layer can map dropped files to node types.
//
// Registration validates the constructor by calling it once: a nil
// constructor, or one returning no behavior, is a configuration error and
// the type is not registered.
package registry
