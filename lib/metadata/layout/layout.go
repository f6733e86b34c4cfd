package layout

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/ValentinKolb/kvlayout/lib/metadata/registry"
)

// Layout describes where and how the data of a type lives in storage.
// It is one of *CellLayout, *StructLayout, *ArrayLayout, *EnumLayout or *HashLayout.
type Layout interface {
	// IntoPortable returns a copy of the layout with all type references registered in r.
	IntoPortable(r *registry.Registry) Layout
	json.Marshaler
	layout()
}

// --------------------------------------------------------------------------
// Cell
// --------------------------------------------------------------------------

// CellLayout is a single slot holding one packed value.
type CellLayout struct {
	Key LayoutKey
	Ty  registry.Ref
}

// NewCell creates a cell at k holding a value of the referenced type.
func NewCell(k LayoutKey, ty registry.Ref) *CellLayout {
	return &CellLayout{Key: k, Ty: ty}
}

// CellOf creates a cell at k holding a value of type T.
func CellOf[T any](k LayoutKey) *CellLayout {
	return NewCell(k, registry.MetaOf[T]())
}

func (c *CellLayout) IntoPortable(r *registry.Registry) Layout {
	return &CellLayout{Key: c.Key, Ty: r.RegisterRef(c.Ty)}
}

func (c *CellLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"cell": struct {
			Key LayoutKey    `json:"key"`
			Ty  registry.Ref `json:"ty"`
		}{c.Key, c.Ty},
	})
}

func (*CellLayout) layout() {}

// --------------------------------------------------------------------------
// Struct
// --------------------------------------------------------------------------

// FieldLayout is one field of a struct. Name is nil for unnamed (tuple) fields.
type FieldLayout struct {
	Name   *string
	Layout Layout
}

// NewField creates a named field.
func NewField(name string, l Layout) FieldLayout {
	return FieldLayout{Name: &name, Layout: l}
}

// NewUnnamedField creates a field without a name.
func NewUnnamedField(l Layout) FieldLayout {
	return FieldLayout{Layout: l}
}

func (f FieldLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   *string `json:"name"`
		Layout Layout  `json:"layout"`
	}{f.Name, f.Layout})
}

// StructLayout is an ordered list of fields.
type StructLayout struct {
	Fields []FieldLayout
}

// NewStruct creates a struct layout.
func NewStruct(fields ...FieldLayout) *StructLayout {
	if fields == nil {
		fields = []FieldLayout{}
	}
	return &StructLayout{Fields: fields}
}

func (s *StructLayout) IntoPortable(r *registry.Registry) Layout {
	return s.portable(r)
}

func (s *StructLayout) portable(r *registry.Registry) *StructLayout {
	fields := make([]FieldLayout, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = FieldLayout{Name: f.Name, Layout: f.Layout.IntoPortable(r)}
	}
	return &StructLayout{Fields: fields}
}

// body is the JSON form without the variant tag, it is shared with enum variants.
func (s *StructLayout) body() any {
	fields := s.Fields
	if fields == nil {
		fields = []FieldLayout{}
	}
	return struct {
		Fields []FieldLayout `json:"fields"`
	}{fields}
}

func (s *StructLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"struct": s.body()})
}

func (*StructLayout) layout() {}

// --------------------------------------------------------------------------
// Array
// --------------------------------------------------------------------------

// ArrayLayout is a fixed number of elements laid out one after another starting at
// Offset, each element occupying CellsPerElem slots.
type ArrayLayout struct {
	Offset       LayoutKey
	Len          uint32
	CellsPerElem uint64
	Layout       Layout
}

// NewArray creates an array layout. elem is the layout of the first element.
func NewArray(offset LayoutKey, length uint32, cellsPerElem uint64, elem Layout) *ArrayLayout {
	return &ArrayLayout{Offset: offset, Len: length, CellsPerElem: cellsPerElem, Layout: elem}
}

func (a *ArrayLayout) IntoPortable(r *registry.Registry) Layout {
	return &ArrayLayout{Offset: a.Offset, Len: a.Len, CellsPerElem: a.CellsPerElem, Layout: a.Layout.IntoPortable(r)}
}

func (a *ArrayLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"array": struct {
			Offset       LayoutKey `json:"offset"`
			Len          uint32    `json:"len"`
			CellsPerElem uint64    `json:"cellsPerElem"`
			Layout       Layout    `json:"layout"`
		}{a.Offset, a.Len, a.CellsPerElem, a.Layout},
	})
}

func (*ArrayLayout) layout() {}

// --------------------------------------------------------------------------
// Enum
// --------------------------------------------------------------------------

// Discriminant selects an enum variant.
type Discriminant uint8

// Variant pairs a discriminant with the layout of the variant body.
type Variant struct {
	Discriminant Discriminant
	Body         *StructLayout
}

// EnumLayout is a dispatch slot holding the active discriminant plus the layouts of
// all variant bodies.
type EnumLayout struct {
	DispatchKey LayoutKey
	Variants    []Variant
}

// NewEnum creates an enum layout. Variants are kept in discriminant order.
func NewEnum(dispatchKey LayoutKey, variants ...Variant) *EnumLayout {
	sorted := append([]Variant(nil), variants...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Discriminant < sorted[j].Discriminant })
	return &EnumLayout{DispatchKey: dispatchKey, Variants: sorted}
}

func (e *EnumLayout) IntoPortable(r *registry.Registry) Layout {
	variants := make([]Variant, len(e.Variants))
	for i, v := range e.Variants {
		variants[i] = Variant{Discriminant: v.Discriminant, Body: v.Body.portable(r)}
	}
	return &EnumLayout{DispatchKey: e.DispatchKey, Variants: variants}
}

func (e *EnumLayout) MarshalJSON() ([]byte, error) {
	variants := make(map[string]any, len(e.Variants))
	for _, v := range e.Variants {
		variants[strconv.Itoa(int(v.Discriminant))] = v.Body.body()
	}
	return json.Marshal(map[string]any{
		"enum": struct {
			DispatchKey LayoutKey      `json:"dispatchKey"`
			Variants    map[string]any `json:"variants"`
		}{e.DispatchKey, variants},
	})
}

func (*EnumLayout) layout() {}

// --------------------------------------------------------------------------
// Hash
// --------------------------------------------------------------------------

// HashLayout is an unbounded collection whose element keys are derived from Offset
// with Strategy. Layout describes one stored element.
type HashLayout struct {
	Offset   LayoutKey
	Strategy HashingStrategy
	Layout   Layout
}

// NewHash creates a hash layout.
func NewHash(offset LayoutKey, strategy HashingStrategy, elem Layout) *HashLayout {
	return &HashLayout{Offset: offset, Strategy: strategy, Layout: elem}
}

func (h *HashLayout) IntoPortable(r *registry.Registry) Layout {
	return &HashLayout{Offset: h.Offset, Strategy: h.Strategy, Layout: h.Layout.IntoPortable(r)}
}

func (h *HashLayout) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"hash": struct {
			Offset   LayoutKey       `json:"offset"`
			Layout   Layout          `json:"layout"`
			Strategy HashingStrategy `json:"strategy"`
		}{h.Offset, h.Layout, h.Strategy},
	})
}

func (*HashLayout) layout() {}
