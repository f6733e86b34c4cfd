package storage

import (
	"fmt"

	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// Enum is a tagged union. The first slot (the dispatch cell) holds the discriminant
// of the active variant, the body of the active variant follows it.
//
// Variant i has discriminant i. The footprint is one slot plus the largest variant
// footprint, so every variant starts right after the dispatch cell and the cursor
// always ends at the same key.
type Enum struct {
	Variants []*Struct

	disc uint8
}

// NewEnum creates an enum with variant 0 active. Use an empty struct for variants
// without fields.
func NewEnum(variants ...*Struct) *Enum {
	if len(variants) == 0 || len(variants) > 256 {
		panic(fmt.Sprintf("storage: enum needs between 1 and 256 variants, got %d", len(variants)))
	}
	return &Enum{Variants: variants}
}

// Discriminant returns the discriminant of the active variant.
func (e *Enum) Discriminant() uint8 {
	return e.disc
}

// Active returns the body of the active variant.
func (e *Enum) Active() *Struct {
	return e.Variants[e.disc]
}

// Set activates variant d.
func (e *Enum) Set(d uint8) error {
	if int(d) >= len(e.Variants) {
		return fmt.Errorf("enum has no variant %d", d)
	}
	e.disc = d
	return nil
}

func (e *Enum) bodyFootprint() uint64 {
	var largest uint64
	for _, v := range e.Variants {
		if f := v.Footprint(); f > largest {
			largest = f
		}
	}
	return largest
}

func (e *Enum) Footprint() uint64 {
	return 1 + e.bodyFootprint()
}

func (e *Enum) RequiresDeepCleanUp() bool {
	for _, v := range e.Variants {
		if v.RequiresDeepCleanUp() {
			return true
		}
	}
	return false
}

func (e *Enum) PullSpread(env *Env, ptr *key.Ptr) error {
	dispatch := ptr.Next(1)
	var tag Value[uint8]
	if err := tag.PullPacked(env, dispatch); err != nil {
		return err
	}
	if int(tag.V) >= len(e.Variants) {
		return newError(ErrDecodeFailure, dispatch, fmt.Errorf("unknown discriminant %d", tag.V))
	}
	if err := e.Variants[tag.V].PullSpread(env, key.NewPtr(ptr.Key())); err != nil {
		return err
	}
	e.disc = tag.V
	ptr.Advance(e.bodyFootprint())
	return nil
}

func (e *Enum) PushSpread(env *Env, ptr *key.Ptr) error {
	if err := NewValue(e.disc).PushPacked(env, ptr.Next(1)); err != nil {
		return err
	}
	if err := e.Active().PushSpread(env, key.NewPtr(ptr.Key())); err != nil {
		return err
	}
	ptr.Advance(e.bodyFootprint())
	return nil
}

// ClearSpread clears the dispatch cell and the body of the active variant.
func (e *Enum) ClearSpread(env *Env, ptr *key.Ptr) error {
	if err := clearSlot(env, ptr.Next(1)); err != nil {
		return err
	}
	if err := e.Active().ClearSpread(env, key.NewPtr(ptr.Key())); err != nil {
		return err
	}
	ptr.Advance(e.bodyFootprint())
	return nil
}

// AllocateSpread activates variant 0 with its default body.
func (e *Enum) AllocateSpread(env *Env, ptr *key.Ptr) error {
	ptr.Next(1)
	if err := e.Variants[0].AllocateSpread(env, key.NewPtr(ptr.Key())); err != nil {
		return err
	}
	e.disc = 0
	ptr.Advance(e.bodyFootprint())
	return nil
}

func (e *Enum) Layout(ptr *key.Ptr) layout.Layout {
	dispatch := ptr.Next(1)
	variants := make([]layout.Variant, len(e.Variants))
	for i, v := range e.Variants {
		variants[i] = layout.Variant{
			Discriminant: layout.Discriminant(i),
			Body:         v.structLayout(key.NewPtr(ptr.Key())),
		}
	}
	ptr.Advance(e.bodyFootprint())
	return layout.NewEnum(layout.KeyOf(dispatch), variants...)
}
