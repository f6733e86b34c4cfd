package registry

import (
	"reflect"
	"strings"
)

// Registry assigns compact handles to Go types.
//
// Handles are assigned in first-encounter order starting at 0. A type is reserved
// before the types it refers to are visited, so a struct always gets a lower handle
// than its fields and recursive types terminate. Registering the same type again
// returns the existing handle, and so does registering a builtin type whose
// descriptor is already present (int and int64 both describe an i64).
//
// A Registry is not safe for concurrent use.
type Registry struct {
	ids   map[reflect.Type]uint32
	prims map[Primitive]uint32
	types []Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ids:   make(map[reflect.Type]uint32),
		prims: make(map[Primitive]uint32),
	}
}

// Register returns the handle of t, registering t and everything it refers to if needed.
func (r *Registry) Register(t reflect.Type) uint32 {
	if id, ok := r.ids[t]; ok {
		return id
	}

	// unnamed primitives are identified by their descriptor alone
	p, builtin := primitives[t.Kind()]
	builtin = builtin && typePath(t) == nil
	if builtin {
		if id, ok := r.prims[p]; ok {
			r.ids[t] = id
			return id
		}
	}

	id := uint32(len(r.types))
	r.ids[t] = id
	if builtin {
		r.prims[p] = id
	}
	r.types = append(r.types, Type{})

	ty := Type{Path: typePath(t), Def: r.define(t)}
	r.types[id] = ty
	return id
}

// RegisterRef turns a meta reference into a portable one. Portable references are
// returned unchanged.
func (r *Registry) RegisterRef(ref Ref) Ref {
	if ref.portable {
		return ref
	}
	return Portable(r.Register(ref.meta))
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Types returns all registered types in handle order.
func (r *Registry) Types() []PortableType {
	out := make([]PortableType, len(r.types))
	for i, ty := range r.types {
		out[i] = PortableType{ID: uint32(i), Type: ty}
	}
	return out
}

// Portable returns the serializable form of the registry.
func (r *Registry) Portable() PortableRegistry {
	return PortableRegistry{Types: r.Types()}
}

// --------------------------------------------------------------------------
// Type definitions
// --------------------------------------------------------------------------

var primitives = map[reflect.Kind]Primitive{
	reflect.Bool:    PrimBool,
	reflect.String:  PrimStr,
	reflect.Uint8:   PrimU8,
	reflect.Uint16:  PrimU16,
	reflect.Uint32:  PrimU32,
	reflect.Uint64:  PrimU64,
	reflect.Uint:    PrimU64,
	reflect.Int8:    PrimI8,
	reflect.Int16:   PrimI16,
	reflect.Int32:   PrimI32,
	reflect.Int64:   PrimI64,
	reflect.Int:     PrimI64,
	reflect.Float32: PrimF32,
	reflect.Float64: PrimF64,
}

func (r *Registry) define(t reflect.Type) TypeDef {
	if p, ok := primitives[t.Kind()]; ok {
		return TypeDef{Primitive: &p}
	}

	switch t.Kind() {
	case reflect.Struct:
		fields := make([]Field, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, ok := fieldName(f)
			if !ok {
				continue
			}
			fields = append(fields, Field{
				Name:     name,
				Type:     Portable(r.Register(f.Type)),
				TypeName: f.Type.String(),
			})
		}
		return TypeDef{Composite: &Composite{Fields: fields}}
	case reflect.Slice:
		return TypeDef{Sequence: &Sequence{Type: Portable(r.Register(t.Elem()))}}
	case reflect.Array:
		return TypeDef{Array: &Array{Len: uint64(t.Len()), Type: Portable(r.Register(t.Elem()))}}
	case reflect.Map:
		k := Portable(r.Register(t.Key()))
		v := Portable(r.Register(t.Elem()))
		return TypeDef{Map: &Map{Key: k, Value: v}}
	case reflect.Pointer:
		return TypeDef{Option: &Option{Type: Portable(r.Register(t.Elem()))}}
	default:
		return TypeDef{Opaque: &Opaque{Name: t.String()}}
	}
}

// fieldName returns the name a field is encoded under. Fields that are never
// encoded (unexported or tagged "-") report false.
func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	for _, tag := range []string{"cbor", "json"} {
		v, ok := f.Tag.Lookup(tag)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(v, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return f.Name, true
}

// typePath splits the import path of a named type into segments followed by the type name.
func typePath(t reflect.Type) []string {
	if t.Name() == "" || t.PkgPath() == "" {
		return nil
	}
	return append(strings.Split(t.PkgPath(), "/"), t.Name())
}
