package storage

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/maple"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"github.com/ValentinKolb/kvlayout/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type access struct {
	op string
	at key.Key
}

// recordingStore records every slot access in order
type recordingStore struct {
	store.Store
	log []access
}

func (r *recordingStore) Get(k key.Key) ([]byte, bool, error) {
	r.log = append(r.log, access{"get", k})
	return r.Store.Get(k)
}

func (r *recordingStore) Set(k key.Key, value []byte) error {
	r.log = append(r.log, access{"set", k})
	return r.Store.Set(k, value)
}

func (r *recordingStore) Clear(k key.Key) error {
	r.log = append(r.log, access{"clear", k})
	return r.Store.Clear(k)
}

func (r *recordingStore) Has(k key.Key) (bool, error) {
	r.log = append(r.log, access{"has", k})
	return r.Store.Has(k)
}

func (r *recordingStore) reset() {
	r.log = nil
}

func (r *recordingStore) keys(op string) []key.Key {
	var keys []key.Key
	for _, a := range r.log {
		if a.op == op {
			keys = append(keys, a.at)
		}
	}
	return keys
}

func newTestEnv(t *testing.T) (*Env, *recordingStore) {
	t.Helper()
	s := &recordingStore{Store: lstore.NewLocalStore(func() db.SlotDB { return maple.NewMapleDB(nil) })}
	t.Cleanup(func() { _ = s.Close() })
	return NewEnv(s, nil), s
}

func keyRange(root key.Key, n uint64) []key.Key {
	keys := make([]key.Key, n)
	for i := range keys {
		keys[i] = root.Add(uint64(i))
	}
	return keys
}

// point is a packed value with several fields
type point struct {
	X int32  `cbor:"x"`
	Y int32  `cbor:"y"`
	L string `cbor:"label"`
}

// account is an application type stored spread by delegating to a Struct
type account struct {
	Owner   Value[string]
	Balance Value[uint64]
	Flags   *Array[*Value[bool]]
}

func newAccount() *account {
	return &account{Flags: NewArray(3, func() *Value[bool] { return &Value[bool]{} })}
}

func (a *account) fields() *Struct {
	return NewStruct(
		Named("owner", &a.Owner),
		Named("balance", &a.Balance),
		Named("flags", a.Flags),
	)
}

func (a *account) Footprint() uint64         { return a.fields().Footprint() }
func (a *account) RequiresDeepCleanUp() bool { return a.fields().RequiresDeepCleanUp() }

func (a *account) PullSpread(env *Env, p *key.Ptr) error {
	return a.fields().PullSpread(env, p)
}

func (a *account) PushSpread(env *Env, p *key.Ptr) error {
	return a.fields().PushSpread(env, p)
}

func (a *account) ClearSpread(env *Env, p *key.Ptr) error {
	return a.fields().ClearSpread(env, p)
}

func (a *account) AllocateSpread(env *Env, p *key.Ptr) error {
	return a.fields().AllocateSpread(env, p)
}

func (a *account) Layout(p *key.Ptr) layout.Layout {
	return a.fields().Layout(p)
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

func TestValueRoundTrip(t *testing.T) {
	env, _ := newTestEnv(t)
	root := key.FromUint64(345)

	t.Run("uint32", func(t *testing.T) {
		require.NoError(t, PushSpreadRoot(env, root, NewValue(uint32(456))))
		var got Value[uint32]
		require.NoError(t, PullSpreadRoot(env, root, &got))
		assert.Equal(t, uint32(456), got.V)
	})

	t.Run("struct", func(t *testing.T) {
		want := point{X: -1, Y: 7, L: "origin"}
		require.NoError(t, PushPackedRoot(env, root, want))
		got, err := PullPackedRoot[point](env, root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("full overwrite", func(t *testing.T) {
		require.NoError(t, PushPackedRoot(env, root, map[string]int{"a": 1}))
		v := NewValue(map[string]int{"b": 2})
		require.NoError(t, v.PullPacked(env, root))
		assert.Equal(t, map[string]int{"a": 1}, v.V)
	})
}

func TestValueErrors(t *testing.T) {
	env, _ := newTestEnv(t)
	at := key.FromUint64(1)

	t.Run("not found", func(t *testing.T) {
		v := NewValue(uint32(9))
		err := v.PullPacked(env, at)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "storage entry was empty")
		assert.Equal(t, uint32(9), v.V, "value must be unchanged")

		var storageErr *Error
		require.True(t, errors.As(err, &storageErr))
		assert.Equal(t, at, storageErr.Key)
	})

	t.Run("decode failure", func(t *testing.T) {
		require.NoError(t, env.Store.Set(at, []byte{0xff}))
		v := NewValue(uint32(9))
		err := v.PullPacked(env, at)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecodeFailure))
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, uint32(9), v.V)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, PushPackedRoot(env, at, "x"))
		require.NoError(t, ClearPackedRoot(env, at))
		ok, err := env.Store.Has(at)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// --------------------------------------------------------------------------
// Struct & Array
// --------------------------------------------------------------------------

func TestStructFootprintAndOrder(t *testing.T) {
	env, rec := newTestEnv(t)
	root := key.FromUint64(100)

	acc := newAccount()
	acc.Owner.V = "alice"
	acc.Balance.V = 42
	acc.Flags.At(1).V = true

	assert.Equal(t, uint64(5), acc.Footprint())
	assert.False(t, acc.RequiresDeepCleanUp())

	tests := []struct {
		name string
		op   string
		run  func(ptr *key.Ptr) error
	}{
		{"push", "set", func(ptr *key.Ptr) error { return acc.PushSpread(env, ptr) }},
		{"pull", "get", func(ptr *key.Ptr) error { return newAccount().PullSpread(env, ptr) }},
		{"clear", "clear", func(ptr *key.Ptr) error { return acc.ClearSpread(env, ptr) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.reset()
			ptr := key.NewPtr(root)
			require.NoError(t, tt.run(ptr))
			assert.Equal(t, keyRange(root, 5), rec.keys(tt.op), "slots must be visited in declaration order")
			assert.Equal(t, root.Add(5), ptr.Key(), "cursor must advance by the footprint")
		})
	}
}

func TestStructRoundTrip(t *testing.T) {
	env, _ := newTestEnv(t)
	root := key.FromUint64(100)

	acc := newAccount()
	acc.Owner.V = "alice"
	acc.Balance.V = 42
	acc.Flags.At(2).V = true
	require.NoError(t, PushSpreadRoot(env, root, acc))

	got := newAccount()
	require.NoError(t, PullSpreadRoot(env, root, got))
	assert.Equal(t, "alice", got.Owner.V)
	assert.Equal(t, uint64(42), got.Balance.V)
	assert.Equal(t, []bool{false, false, true}, []bool{got.Flags.At(0).V, got.Flags.At(1).V, got.Flags.At(2).V})

	// a value placed right behind the struct must survive clearing it
	require.NoError(t, PushPackedRoot(env, root.Add(acc.Footprint()), "next"))

	require.NoError(t, ClearSpreadRoot(env, root, acc))
	err := PullSpreadRoot(env, root, newAccount())
	assert.True(t, IsNotFound(err))
	next, err := PullPackedRoot[string](env, root.Add(acc.Footprint()))
	require.NoError(t, err)
	assert.Equal(t, "next", next)
}

func TestArray(t *testing.T) {
	arr := NewArray(4, newAccount)
	assert.Equal(t, 4, arr.Len())
	assert.Equal(t, uint64(20), arr.Footprint())

	empty := NewArray(0, newAccount)
	assert.Equal(t, uint64(0), empty.Footprint())

	root := key.FromUint64(10)
	l, ok := LayoutRoot(root, arr).(*layout.ArrayLayout)
	require.True(t, ok)
	assert.Equal(t, layout.KeyOf(root), l.Offset)
	assert.Equal(t, uint32(4), l.Len)
	assert.Equal(t, uint64(5), l.CellsPerElem)

	ptr := key.NewPtr(root)
	empty.Layout(ptr)
	assert.Equal(t, root, ptr.Key())
}

// --------------------------------------------------------------------------
// Enum
// --------------------------------------------------------------------------

type shape struct {
	enum   *Enum
	radius Value[uint64]
	w, h   Value[uint32]
}

func newShape() *shape {
	s := &shape{}
	s.enum = NewEnum(
		NewStruct(),
		NewStruct(Unnamed(&s.radius)),
		NewStruct(Named("w", &s.w), Named("h", &s.h)),
	)
	return s
}

func TestEnum(t *testing.T) {
	root := key.FromUint64(456)

	t.Run("footprint", func(t *testing.T) {
		s := newShape()
		assert.Equal(t, uint64(3), s.enum.Footprint())
		assert.False(t, s.enum.RequiresDeepCleanUp())
	})

	variants := []struct {
		name  string
		disc  uint8
		slots uint64
	}{
		{"unit", 0, 1},
		{"tuple", 1, 2},
		{"named", 2, 3},
	}

	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			env, rec := newTestEnv(t)
			s := newShape()
			require.NoError(t, s.enum.Set(tt.disc))
			s.radius.V = 9
			s.w.V, s.h.V = 3, 4

			ptr := key.NewPtr(root)
			require.NoError(t, s.enum.PushSpread(env, ptr))
			assert.Equal(t, root.Add(3), ptr.Key(), "cursor must advance by the full footprint")
			assert.Equal(t, keyRange(root, tt.slots), rec.keys("set"))

			got := newShape()
			ptr = key.NewPtr(root)
			require.NoError(t, got.enum.PullSpread(env, ptr))
			assert.Equal(t, root.Add(3), ptr.Key())
			assert.Equal(t, tt.disc, got.enum.Discriminant())
			switch tt.disc {
			case 1:
				assert.Equal(t, uint64(9), got.radius.V)
			case 2:
				assert.Equal(t, uint32(3), got.w.V)
				assert.Equal(t, uint32(4), got.h.V)
			}

			rec.reset()
			require.NoError(t, s.enum.ClearSpread(env, key.NewPtr(root)))
			assert.Equal(t, keyRange(root, tt.slots), rec.keys("clear"))
		})
	}

	t.Run("unknown discriminant", func(t *testing.T) {
		env, _ := newTestEnv(t)
		require.NoError(t, PushPackedRoot(env, root, uint8(7)))
		s := newShape()
		require.NoError(t, s.enum.Set(2))
		err := PullSpreadRoot(env, root, s.enum)
		assert.True(t, errors.Is(err, ErrDecodeFailure))
		assert.Equal(t, uint8(2), s.enum.Discriminant(), "a failed pull keeps the active variant")
		assert.Same(t, s.enum.Variants[2], s.enum.Active())
	})

	t.Run("set out of range", func(t *testing.T) {
		env, _ := newTestEnv(t)
		s := newShape()
		require.NoError(t, s.enum.Set(1))
		assert.Error(t, s.enum.Set(3))
		assert.Equal(t, uint8(1), s.enum.Discriminant())
		assert.NotPanics(t, func() {
			require.NoError(t, PushSpreadRoot(env, root, s.enum))
			require.NoError(t, ClearSpreadRoot(env, root, s.enum))
		})
	})

	t.Run("layout", func(t *testing.T) {
		l, ok := LayoutRoot(root, newShape().enum).(*layout.EnumLayout)
		require.True(t, ok)
		assert.Equal(t, layout.KeyOf(root), l.DispatchKey)
		require.Len(t, l.Variants, 3)
		named := l.Variants[2].Body
		require.Len(t, named.Fields, 2)
		assert.Equal(t, layout.CellOf[uint32](layout.KeyOf(root.Add(1))), named.Fields[0].Layout)
		assert.Equal(t, layout.CellOf[uint32](layout.KeyOf(root.Add(2))), named.Fields[1].Layout)
		assert.Equal(t, layout.CellOf[uint64](layout.KeyOf(root.Add(1))), l.Variants[1].Body.Fields[0].Layout)
	})

	t.Run("new enum without variants", func(t *testing.T) {
		assert.Panics(t, func() { NewEnum() })
	})
}

// --------------------------------------------------------------------------
// Allocation
// --------------------------------------------------------------------------

type answer uint32

func (a *answer) Default() error {
	*a = 42
	return nil
}

type broken struct{}

func (*broken) Default() error {
	return errors.New("no default")
}

func TestAllocate(t *testing.T) {
	root := key.FromUint64(7)

	t.Run("no store access", func(t *testing.T) {
		env, rec := newTestEnv(t)
		acc := newAccount()
		acc.Owner.V = "stale"
		ptr := key.NewPtr(root)
		require.NoError(t, acc.AllocateSpread(env, ptr))
		assert.Empty(t, rec.log)
		assert.Equal(t, root.Add(acc.Footprint()), ptr.Key())
		assert.Equal(t, "", acc.Owner.V)
	})

	t.Run("defaulter", func(t *testing.T) {
		env, _ := newTestEnv(t)
		var v Value[answer]
		require.NoError(t, AllocateSpreadRoot(env, root, &v))
		assert.Equal(t, answer(42), v.V)
	})

	t.Run("failing defaulter", func(t *testing.T) {
		env, _ := newTestEnv(t)
		var v Value[broken]
		err := AllocateSpreadRoot(env, root, &v)
		assert.True(t, errors.Is(err, ErrInitializerFailure))
	})

	t.Run("enum", func(t *testing.T) {
		env, rec := newTestEnv(t)
		s := newShape()
		require.NoError(t, s.enum.Set(2))
		ptr := key.NewPtr(root)
		require.NoError(t, s.enum.AllocateSpread(env, ptr))
		assert.Equal(t, uint8(0), s.enum.Discriminant())
		assert.Equal(t, root.Add(3), ptr.Key())
		assert.Empty(t, rec.log)
	})
}

// --------------------------------------------------------------------------
// Layout
// --------------------------------------------------------------------------

func TestStructLayout(t *testing.T) {
	root := key.FromUint64(345)
	want := layout.NewStruct(
		layout.NewField("owner", layout.CellOf[string](layout.KeyOf(root))),
		layout.NewField("balance", layout.CellOf[uint64](layout.KeyOf(root.Add(1)))),
		layout.NewField("flags", layout.NewArray(layout.KeyOf(root.Add(2)), 3, 1,
			layout.CellOf[bool](layout.KeyOf(root.Add(2))))),
	)

	ptr := key.NewPtr(root)
	assert.Equal(t, layout.Layout(want), newAccount().Layout(ptr))
	assert.Equal(t, root.Add(5), ptr.Key(), "layout must advance like pull")
}
