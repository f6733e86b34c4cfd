package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// Array is a fixed number of elements laid out one after another.
type Array[E Storable] struct {
	elems   []E
	newElem func() E
}

// NewArray creates an array of n elements, each created by newElem.
// All elements must have the same footprint.
func NewArray[E Storable](n int, newElem func() E) *Array[E] {
	elems := make([]E, n)
	for i := range elems {
		elems[i] = newElem()
	}
	return &Array[E]{elems: elems, newElem: newElem}
}

// Len returns the number of elements.
func (a *Array[E]) Len() int {
	return len(a.elems)
}

// At returns element i.
func (a *Array[E]) At(i int) E {
	return a.elems[i]
}

func (a *Array[E]) elemFootprint() uint64 {
	if len(a.elems) > 0 {
		return a.elems[0].Footprint()
	}
	return a.newElem().Footprint()
}

func (a *Array[E]) Footprint() uint64 {
	return uint64(len(a.elems)) * a.elemFootprint()
}

func (a *Array[E]) RequiresDeepCleanUp() bool {
	if len(a.elems) == 0 {
		return false
	}
	return a.elems[0].RequiresDeepCleanUp()
}

func (a *Array[E]) PullSpread(env *Env, ptr *key.Ptr) error {
	for _, e := range a.elems {
		if err := e.PullSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array[E]) PushSpread(env *Env, ptr *key.Ptr) error {
	for _, e := range a.elems {
		if err := e.PushSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array[E]) ClearSpread(env *Env, ptr *key.Ptr) error {
	for _, e := range a.elems {
		if err := e.ClearSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (a *Array[E]) AllocateSpread(env *Env, ptr *key.Ptr) error {
	for _, e := range a.elems {
		if err := e.AllocateSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

// Layout describes the array by the layout of its first element.
func (a *Array[E]) Layout(ptr *key.Ptr) layout.Layout {
	offset := ptr.Key()
	probe := a.newElem()
	if len(a.elems) > 0 {
		probe = a.elems[0]
	}
	elem := probe.Layout(key.NewPtr(offset))
	ptr.Advance(a.Footprint())
	return layout.NewArray(layout.KeyOf(offset), uint32(len(a.elems)), a.elemFootprint(), elem)
}
