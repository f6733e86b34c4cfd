package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// --------------------------------------------------------------------------
// Spread root operations
// --------------------------------------------------------------------------

// Each root operation walks the value with its own cursor starting at root.

// PullSpreadRoot overwrites v with the tree stored at root.
func PullSpreadRoot(env *Env, root key.Key, v SpreadLayout) error {
	return v.PullSpread(env, key.NewPtr(root))
}

// PushSpreadRoot writes v as a tree at root.
func PushSpreadRoot(env *Env, root key.Key, v SpreadLayout) error {
	return v.PushSpread(env, key.NewPtr(root))
}

// ClearSpreadRoot removes the tree of v stored at root.
func ClearSpreadRoot(env *Env, root key.Key, v SpreadLayout) error {
	return v.ClearSpread(env, key.NewPtr(root))
}

// AllocateSpreadRoot sets v to its default value as if it lived at root.
func AllocateSpreadRoot(env *Env, root key.Key, v SpreadAllocate) error {
	return v.AllocateSpread(env, key.NewPtr(root))
}

// LayoutRoot describes v as stored at root.
func LayoutRoot(root key.Key, v StorageLayout) layout.Layout {
	return v.Layout(key.NewPtr(root))
}

// --------------------------------------------------------------------------
// Packed root operations
// --------------------------------------------------------------------------

// PullPackedRoot decodes the value stored at at.
func PullPackedRoot[T any](env *Env, at key.Key) (T, error) {
	var v Value[T]
	err := v.PullPacked(env, at)
	return v.V, err
}

// PushPackedRoot encodes v into the slot at.
func PushPackedRoot[T any](env *Env, at key.Key, v T) error {
	return NewValue(v).PushPacked(env, at)
}

// ClearPackedRoot removes the slot at.
func ClearPackedRoot(env *Env, at key.Key) error {
	return clearSlot(env, at)
}
