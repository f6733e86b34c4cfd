package registry

import (
	"fmt"
	"reflect"
	"strconv"
)

// Ref references a type either by its Go type (meta form) or by a registry handle
// (portable form). Layout trees are built with meta references and turned into
// portable ones by registering them.
type Ref struct {
	meta     reflect.Type
	id       uint32
	portable bool
}

// Meta returns a meta reference to t.
func Meta(t reflect.Type) Ref {
	return Ref{meta: t}
}

// MetaOf returns a meta reference to T.
func MetaOf[T any]() Ref {
	return Meta(reflect.TypeOf((*T)(nil)).Elem())
}

// Portable returns a reference to the registry handle id.
func Portable(id uint32) Ref {
	return Ref{id: id, portable: true}
}

// IsPortable reports whether r is a registry handle.
func (r Ref) IsPortable() bool {
	return r.portable
}

// ID returns the registry handle. It is only meaningful for portable references.
func (r Ref) ID() uint32 {
	return r.id
}

// Type returns the referenced Go type. It is nil for portable references.
func (r Ref) Type() reflect.Type {
	return r.meta
}

func (r Ref) String() string {
	if r.portable {
		return "#" + strconv.FormatUint(uint64(r.id), 10)
	}
	if r.meta == nil {
		return "<nil>"
	}
	return r.meta.String()
}

// MarshalJSON renders the handle as a plain number.
// Meta references cannot be serialized, they have to be registered first.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.portable {
		return nil, fmt.Errorf("type reference %s is not registered", r)
	}
	return []byte(strconv.FormatUint(uint64(r.id), 10)), nil
}

// UnmarshalJSON reads a handle written by MarshalJSON.
func (r *Ref) UnmarshalJSON(b []byte) error {
	id, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid type handle %s: %w", b, err)
	}
	*r = Portable(uint32(id))
	return nil
}
