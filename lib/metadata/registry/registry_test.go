package registry

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A int32
	B bool
}

type account struct {
	Owner   string            `json:"owner"`
	Balance uint64            `cbor:"bal"`
	Labels  map[string]string `json:"labels,omitempty"`
	Parent  *account
	Hidden  []byte `json:"-"`
	secret  int
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TestRegisterFirstEncounterOrder(t *testing.T) {
	r := New()

	assert.Equal(t, uint32(0), r.Register(typeOf[int32]()))
	assert.Equal(t, uint32(1), r.Register(typeOf[int64]()))
	assert.Equal(t, uint32(0), r.Register(typeOf[int32]()), "same type must reuse its handle")
	assert.Equal(t, 2, r.Len())
}

func TestRegisterOuterBeforeInner(t *testing.T) {
	r := New()

	require.Equal(t, uint32(0), r.Register(typeOf[pair]()))
	assert.Equal(t, uint32(1), r.Register(typeOf[int32]()))
	assert.Equal(t, uint32(2), r.Register(typeOf[bool]()))

	def := r.Types()[0].Type.Def
	require.NotNil(t, def.Composite)
	require.Len(t, def.Composite.Fields, 2)
	assert.Equal(t, "A", def.Composite.Fields[0].Name)
	assert.Equal(t, Portable(1), def.Composite.Fields[0].Type)
	assert.Equal(t, "int32", def.Composite.Fields[0].TypeName)
	assert.Equal(t, []string{"github.com", "ValentinKolb", "kvlayout", "lib", "metadata", "registry", "pair"}, r.Types()[0].Type.Path)
}

func TestDistinctTypesGetDistinctHandles(t *testing.T) {
	r := New()
	types := []reflect.Type{
		typeOf[uint8](), typeOf[uint16](), typeOf[uint32](), typeOf[uint64](),
		typeOf[int8](), typeOf[int16](), typeOf[int32](), typeOf[int64](),
		typeOf[string](), typeOf[bool](), typeOf[float32](), typeOf[float64](),
		typeOf[[]uint32](), typeOf[[4]uint32](), typeOf[map[string]uint32](), typeOf[*uint32](),
	}

	seen := map[uint32]reflect.Type{}
	for _, ty := range types {
		id := r.Register(ty)
		if other, ok := seen[id]; ok {
			t.Fatalf("%s and %s share handle %d", ty, other, id)
		}
		seen[id] = ty
	}
}

func TestIdenticalPrimitivesShareHandle(t *testing.T) {
	type wide int64

	r := New()
	i64 := r.Register(typeOf[int64]())
	u64 := r.Register(typeOf[uint64]())

	assert.Equal(t, i64, r.Register(typeOf[int]()))
	assert.Equal(t, u64, r.Register(typeOf[uint]()))
	assert.NotEqual(t, i64, r.Register(typeOf[wide]()), "named types keep their own handle")
	assert.Equal(t, 3, r.Len())

	first := New()
	id := first.Register(typeOf[int]())
	assert.Equal(t, id, first.Register(typeOf[int64]()))
	assert.Equal(t, 1, first.Len())
}

func TestTypeDefs(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		kind string
	}{
		{"primitive", typeOf[uint32](), "primitive"},
		{"composite", typeOf[pair](), "composite"},
		{"sequence", typeOf[[]string](), "sequence"},
		{"array", typeOf[[32]byte](), "array"},
		{"map", typeOf[map[string]uint64](), "map"},
		{"option", typeOf[*pair](), "option"},
		{"opaque", typeOf[chan int](), "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			id := r.Register(tt.typ)
			assert.Equal(t, tt.kind, r.Types()[id].Type.Def.Kind())
		})
	}
}

func TestCompositeFieldNames(t *testing.T) {
	r := New()
	id := r.Register(typeOf[account]())

	fields := r.Types()[id].Type.Def.Composite.Fields
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"owner", "bal", "labels", "Parent"}, names)

	// recursive pointer resolves to the reserved handle of account
	parent := fields[3].Type.ID()
	assert.Equal(t, id, r.Types()[parent].Type.Def.Option.Type.ID())
}

func TestRefJSON(t *testing.T) {
	_, err := json.Marshal(MetaOf[int32]())
	assert.Error(t, err, "meta references must not serialize")

	r := New()
	ref := r.RegisterRef(MetaOf[int32]())
	require.True(t, ref.IsPortable())

	b, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))

	var back Ref
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ref, back)
	assert.Equal(t, ref, r.RegisterRef(ref), "portable references pass through")
}

func TestPortableRegistryJSON(t *testing.T) {
	r := New()
	r.Register(typeOf[pair]())

	b, err := json.Marshal(r.Portable())
	require.NoError(t, err)

	expected := `{"types":[
		{"id":0,"type":{"path":["github.com","ValentinKolb","kvlayout","lib","metadata","registry","pair"],
			"def":{"composite":{"fields":[
				{"name":"A","type":1,"typeName":"int32"},
				{"name":"B","type":2,"typeName":"bool"}]}}}},
		{"id":1,"type":{"def":{"primitive":"i32"}}},
		{"id":2,"type":{"def":{"primitive":"bool"}}}
	]}`
	assert.JSONEq(t, expected, string(b))
}
