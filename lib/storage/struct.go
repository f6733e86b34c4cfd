package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// Field is one member of a Struct. An empty Name marks a tuple field.
type Field struct {
	Name  string
	Value Storable
}

// Named creates a named field.
func Named(name string, v Storable) Field {
	return Field{Name: name, Value: v}
}

// Unnamed creates a tuple field.
func Unnamed(v Storable) Field {
	return Field{Value: v}
}

// Struct lays its fields out one after another in declaration order.
//
// Application types usually implement Storable by building a Struct over pointers
// to their own fields and delegating to it.
type Struct struct {
	Fields []Field
}

// NewStruct creates a struct from its fields in declaration order.
func NewStruct(fields ...Field) *Struct {
	return &Struct{Fields: fields}
}

func (s *Struct) Footprint() uint64 {
	var sum uint64
	for _, f := range s.Fields {
		sum += f.Value.Footprint()
	}
	return sum
}

func (s *Struct) RequiresDeepCleanUp() bool {
	for _, f := range s.Fields {
		if f.Value.RequiresDeepCleanUp() {
			return true
		}
	}
	return false
}

func (s *Struct) PullSpread(env *Env, ptr *key.Ptr) error {
	for _, f := range s.Fields {
		if err := f.Value.PullSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) PushSpread(env *Env, ptr *key.Ptr) error {
	for _, f := range s.Fields {
		if err := f.Value.PushSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) ClearSpread(env *Env, ptr *key.Ptr) error {
	for _, f := range s.Fields {
		if err := f.Value.ClearSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) AllocateSpread(env *Env, ptr *key.Ptr) error {
	for _, f := range s.Fields {
		if err := f.Value.AllocateSpread(env, ptr); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) Layout(ptr *key.Ptr) layout.Layout {
	return s.structLayout(ptr)
}

func (s *Struct) structLayout(ptr *key.Ptr) *layout.StructLayout {
	fields := make([]layout.FieldLayout, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			fields[i] = layout.NewUnnamedField(f.Value.Layout(ptr))
		} else {
			fields[i] = layout.NewField(f.Name, f.Value.Layout(ptr))
		}
	}
	return layout.NewStruct(fields...)
}
