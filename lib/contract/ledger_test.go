package contract

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/maple"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
	"github.com/ValentinKolb/kvlayout/lib/storage"
	"github.com/ValentinKolb/kvlayout/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(t *testing.T) *storage.Env {
	t.Helper()
	s := lstore.NewLocalStore(func() db.SlotDB { return maple.NewMapleDB(nil) })
	t.Cleanup(func() { _ = s.Close() })
	return storage.NewEnv(s, nil)
}

func TestLedgerShape(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, uint64(10), l.Footprint())
	assert.True(t, l.RequiresDeepCleanUp(), "balances need a deep clean up")

	root := DefaultRoot.Key()
	s, ok := storage.LayoutRoot(root, l).(*layout.StructLayout)
	require.True(t, ok)
	require.Len(t, s.Fields, 6)

	status, ok := s.Fields[2].Layout.(*layout.EnumLayout)
	require.True(t, ok)
	assert.Equal(t, layout.KeyOf(root.Add(statusOffset)), status.DispatchKey)

	reserves, ok := s.Fields[3].Layout.(*layout.ArrayLayout)
	require.True(t, ok)
	assert.Equal(t, layout.KeyOf(root.Add(reservesOffset)), reserves.Offset)
	assert.Equal(t, uint32(NumReserves), reserves.Len)

	assert.Equal(t, layout.Layout(layout.CellOf[Config](layout.KeyOf(ConfigKey(root)))), s.Fields[4].Layout)

	doc, err := metadata.Generate(l, root)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Types)
}

func TestLedgerLifecycle(t *testing.T) {
	env := newEnv(t)
	root := DefaultRoot.Key()

	l, err := Create(env, root, "alice")
	require.NoError(t, err)
	assert.Equal(t, "active", l.StatusName())
	assert.Equal(t, uint32(30), l.Config.Inner.V.FeeBasisPoints)

	balance, err := l.Credit("bob", 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
	balance, err = l.Credit("bob", 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), balance)
	_, err = l.Credit("carol", 1)
	require.NoError(t, err)
	require.NoError(t, l.SetReserve(1, 99))
	require.NoError(t, l.Pause("audit"))
	require.NoError(t, l.Save(env, root))

	got, err := Load(env, root)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner.V)
	assert.Equal(t, uint64(16), got.TotalSupply.V)
	assert.Equal(t, "paused", got.StatusName())
	assert.Equal(t, "audit", got.PauseReason())
	assert.Equal(t, []uint64{0, 99, 0}, got.ReserveValues())
	assert.Equal(t, []string{"bob", "carol"}, got.Balances.Keys())

	_, err = got.Credit("bob", 1)
	assert.True(t, errors.Is(err, ErrNotActive))

	require.NoError(t, got.Flip(""))
	assert.Equal(t, "active", got.StatusName())
	require.NoError(t, got.Close(1700000000, "alice"))
	require.NoError(t, got.Save(env, root))

	closed, err := Load(env, root)
	require.NoError(t, err)
	at, by := closed.ClosedBy()
	assert.Equal(t, "closed", closed.StatusName())
	assert.Equal(t, uint64(1700000000), at)
	assert.Equal(t, "alice", by)
	assert.Error(t, closed.Close(1, "x"))

	require.NoError(t, closed.Delete(env, root))
	_, err = Load(env, root)
	assert.True(t, storage.IsNotFound(err))
}

func TestLedgerLimits(t *testing.T) {
	env := newEnv(t)
	l, err := Create(env, DefaultRoot.Key(), "alice")
	require.NoError(t, err)

	_, err = l.Credit("bob", l.Config.Inner.V.MaxBalance+1)
	assert.True(t, errors.Is(err, ErrLimitExceeded))
	assert.Error(t, l.SetReserve(NumReserves, 1))
	assert.Error(t, l.Resume())
}

func TestLedgerConfigUpgrade(t *testing.T) {
	env := newEnv(t)
	root := key.FromUint64(1000)

	l, err := Create(env, root, "alice")
	require.NoError(t, err)
	l.Config.Inner.V.FeeBasisPoints = 5
	require.NoError(t, l.Save(env, root))

	cfg, err := LoadConfig(env, root)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), cfg.FeeBasisPoints)

	// a ledger written before the config existed
	require.NoError(t, storage.ClearPackedRoot(env, ConfigKey(root)))

	cfg, err = LoadConfig(env, root)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), cfg.FeeBasisPoints)

	got, err := Load(env, root)
	require.NoError(t, err)
	assert.Equal(t, storage.NotInitialized, got.Config.Status())
	assert.Equal(t, uint32(30), got.Config.Inner.V.FeeBasisPoints)
	require.NoError(t, got.Save(env, root))
	assert.Equal(t, storage.Initialized, got.Config.Status())
}
