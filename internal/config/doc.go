// Package config defines the format-agnostic description of a graph file
// and the Loader interface that produces it.
//
// A config.Model is what the builder turns into a live graph. Concrete
// loaders, such as the HCL one, live in separate packages and never touch
// the graph runtime themselves.
package config
