package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// --------------------------------------------------------------------------
// Persistence contracts
// --------------------------------------------------------------------------

// SpreadLayout is implemented by values that are stored across Footprint
// consecutive slots.
//
// PullSpread, PushSpread and ClearSpread visit the same slots in the same order and
// each advances the cursor by exactly Footprint slots. PushSpread followed by
// PullSpread from the same key reproduces an equal value.
type SpreadLayout interface {
	// Footprint is the number of slots the value occupies. It depends on the shape of
	// the value only, never on its contents.
	Footprint() uint64
	// RequiresDeepCleanUp reports whether clearing must also remove data the value
	// owns outside of its own slots.
	RequiresDeepCleanUp() bool
	// PullSpread overwrites the value with the state stored at the cursor.
	PullSpread(env *Env, ptr *key.Ptr) error
	// PushSpread writes the value at the cursor.
	PushSpread(env *Env, ptr *key.Ptr) error
	// ClearSpread removes the value stored at the cursor.
	ClearSpread(env *Env, ptr *key.Ptr) error
}

// PackedLayout is implemented by values that are stored as one encoded blob in a
// single slot. Packed operations never move a cursor, the caller chooses the key.
type PackedLayout interface {
	// PullPacked decodes the slot at into the value (full overwrite, not merge).
	PullPacked(env *Env, at key.Key) error
	// PushPacked encodes the value into the slot at.
	PushPacked(env *Env, at key.Key) error
	// ClearPacked removes the slot at.
	ClearPacked(env *Env, at key.Key) error
}

// SpreadAllocate is implemented by values that can be set to their default state
// without reading the store. The cursor advances exactly as with PullSpread.
type SpreadAllocate interface {
	AllocateSpread(env *Env, ptr *key.Ptr) error
}

// StorageLayout is implemented by values that can describe their own layout. The
// cursor advances exactly as with PullSpread.
type StorageLayout interface {
	Layout(ptr *key.Ptr) layout.Layout
}

// Storable is the full contract of a building block.
type Storable interface {
	SpreadLayout
	SpreadAllocate
	StorageLayout
}

// --------------------------------------------------------------------------
// Construction hooks
// --------------------------------------------------------------------------

// Defaulter is implemented (on the pointer) by packed types whose default value is
// not the Go zero value. It is called on a zeroed value.
type Defaulter interface {
	Default() error
}

// OnCallInitializer is implemented (on the pointer) by packed types that can be
// initialized on demand when no stored value exists. See PullOrInit.
type OnCallInitializer interface {
	Initialize() error
}

// newDefault returns the default value of T.
func newDefault[T any](at key.Key) (T, error) {
	var v T
	if d, ok := any(&v).(Defaulter); ok {
		if err := d.Default(); err != nil {
			return v, newError(ErrInitializerFailure, at, err)
		}
	}
	return v, nil
}
