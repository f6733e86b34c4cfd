// Package registry deduplicates the Go types referenced by a layout tree into a
// flat table of type descriptors with small integer handles.
//
// A Ref is either meta (it points at a reflect.Type) or portable (it holds a
// handle). Layout trees are built with meta references, Registry.RegisterRef
// replaces them with handles. Only portable references can be serialized.
//
// Handle assignment is deterministic: first registration wins, handles follow the
// order in which types are first encountered and identical types always resolve to
// the same handle.
//
// The descriptor of a type is one of primitive, composite, sequence, array, map,
// option or opaque. Named types additionally carry their path (import path
// segments followed by the type name).
package registry
