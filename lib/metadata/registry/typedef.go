package registry

// --------------------------------------------------------------------------
// Type descriptors
// --------------------------------------------------------------------------

// Primitive names the built-in scalar types.
type Primitive string

const (
	PrimBool Primitive = "bool"
	PrimStr  Primitive = "str"
	PrimU8   Primitive = "u8"
	PrimU16  Primitive = "u16"
	PrimU32  Primitive = "u32"
	PrimU64  Primitive = "u64"
	PrimI8   Primitive = "i8"
	PrimI16  Primitive = "i16"
	PrimI32  Primitive = "i32"
	PrimI64  Primitive = "i64"
	PrimF32  Primitive = "f32"
	PrimF64  Primitive = "f64"
)

// Field is one field of a composite type.
type Field struct {
	Name     string `json:"name"`
	Type     Ref    `json:"type"`
	TypeName string `json:"typeName"`
}

// Composite describes a struct.
type Composite struct {
	Fields []Field `json:"fields"`
}

// Sequence describes a variable length list.
type Sequence struct {
	Type Ref `json:"type"`
}

// Array describes a fixed length list.
type Array struct {
	Len  uint64 `json:"len"`
	Type Ref    `json:"type"`
}

// Map describes a dictionary.
type Map struct {
	Key   Ref `json:"key"`
	Value Ref `json:"value"`
}

// Option describes a value that may be absent.
type Option struct {
	Type Ref `json:"type"`
}

// Opaque describes a type that has no portable representation.
type Opaque struct {
	Name string `json:"name"`
}

// TypeDef is a tagged union, exactly one field is set.
type TypeDef struct {
	Primitive *Primitive `json:"primitive,omitempty"`
	Composite *Composite `json:"composite,omitempty"`
	Sequence  *Sequence  `json:"sequence,omitempty"`
	Array     *Array     `json:"array,omitempty"`
	Map       *Map       `json:"map,omitempty"`
	Option    *Option    `json:"option,omitempty"`
	Opaque    *Opaque    `json:"opaque,omitempty"`
}

// Kind returns the name of the set variant.
func (d TypeDef) Kind() string {
	switch {
	case d.Primitive != nil:
		return "primitive"
	case d.Composite != nil:
		return "composite"
	case d.Sequence != nil:
		return "sequence"
	case d.Array != nil:
		return "array"
	case d.Map != nil:
		return "map"
	case d.Option != nil:
		return "option"
	case d.Opaque != nil:
		return "opaque"
	default:
		return "unknown"
	}
}

// Type is a described type: its path (package segments followed by the type name,
// empty for anonymous types) and its definition.
type Type struct {
	Path []string `json:"path,omitempty"`
	Def  TypeDef  `json:"def"`
}

// PortableType pairs a registry handle with its type.
type PortableType struct {
	ID   uint32 `json:"id"`
	Type Type   `json:"type"`
}

// PortableRegistry is the serializable form of a registry.
type PortableRegistry struct {
	Types []PortableType `json:"types"`
}
