/*
Package builder turns a config.Model into a live *graph.Graph. It is the
bridge between the static graph definition (the config package) and the
runtime (the graph package).

Construction is a multi-phase process:

 1. Validation: the model is checked for duplicate names and malformed link
    addresses before anything is created.

 2. Node creation: every declared node is created through the factory
    (normally the registry), added to the graph and has its declared
    properties applied. The execution order is not computed yet.

 3. Linking: every link declaration is resolved to a pair of slots and
    connected through the regular connection protocol, so type checks and
    connection hooks apply exactly as they do at runtime.

 4. Ordering: the execution order is computed once for the whole graph.

Problems in phases 2 and 3 do not stop the build early; all of them are
reported together and no graph is returned.
*/
package builder
