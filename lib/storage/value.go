package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// Value is a leaf of the storage tree: one packed value of type T stored in one slot.
type Value[T any] struct {
	V T
}

// NewValue wraps v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{V: v}
}

// --------------------------------------------------------------------------
// Spread
// --------------------------------------------------------------------------

func (*Value[T]) Footprint() uint64 { return 1 }

func (*Value[T]) RequiresDeepCleanUp() bool { return false }

func (v *Value[T]) PullSpread(env *Env, ptr *key.Ptr) error {
	return v.PullPacked(env, ptr.Next(1))
}

func (v *Value[T]) PushSpread(env *Env, ptr *key.Ptr) error {
	return v.PushPacked(env, ptr.Next(1))
}

func (v *Value[T]) ClearSpread(env *Env, ptr *key.Ptr) error {
	return v.ClearPacked(env, ptr.Next(1))
}

func (v *Value[T]) AllocateSpread(_ *Env, ptr *key.Ptr) error {
	def, err := newDefault[T](ptr.Next(1))
	if err != nil {
		return err
	}
	v.V = def
	return nil
}

func (*Value[T]) Layout(ptr *key.Ptr) layout.Layout {
	return layout.CellOf[T](layout.KeyOf(ptr.Next(1)))
}

// --------------------------------------------------------------------------
// Packed
// --------------------------------------------------------------------------

// PullPacked replaces the value with the one stored at at.
// The value is left unchanged if the slot is empty or malformed.
func (v *Value[T]) PullPacked(env *Env, at key.Key) error {
	raw, ok, err := env.Store.Get(at)
	if err != nil {
		return newError(ErrStore, at, err)
	}
	if !ok {
		return newError(ErrNotFound, at, nil)
	}
	var fresh T
	if err := env.Codec.Decode(raw, &fresh); err != nil {
		return newError(ErrDecodeFailure, at, err)
	}
	v.V = fresh
	return nil
}

func (v *Value[T]) PushPacked(env *Env, at key.Key) error {
	raw, err := env.Codec.Encode(v.V)
	if err != nil {
		return newError(ErrEncodeFailure, at, err)
	}
	if err := env.Store.Set(at, raw); err != nil {
		return newError(ErrStore, at, err)
	}
	return nil
}

func (*Value[T]) ClearPacked(env *Env, at key.Key) error {
	return clearSlot(env, at)
}

func clearSlot(env *Env, at key.Key) error {
	if err := env.Store.Clear(at); err != nil {
		return newError(ErrStore, at, err)
	}
	return nil
}
