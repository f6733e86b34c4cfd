// Package metadata produces the portable layout document of a storage tree.
//
// A document combines the compacted layout (package layout) with the registry of
// all types the layout references (package registry), so that tools outside of Go
// can locate and decode every stored value:
//
//	{"version": "1", "storage": {...}, "types": [{"id": 0, "type": {...}}, ...]}
package metadata
