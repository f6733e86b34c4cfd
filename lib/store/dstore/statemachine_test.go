package dstore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/maple"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"github.com/ValentinKolb/kvlayout/lib/store/dstore/internal"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

func newTestMachine() *SlotStateMachine {
	factory := CreateStateMachineFactory(func() db.SlotDB { return maple.NewMapleDB(nil) })
	return factory(1, 1).(*SlotStateMachine)
}

func entry(index uint64, cmd internal.Command) sm.Entry {
	return sm.Entry{Index: index, Cmd: cmd.Serialize()}
}

func TestUpdateAndLookup(t *testing.T) {
	fsm := newTestMachine()
	defer fsm.Close()

	k := key.FromUint64(345)
	entries, err := fsm.Update([]sm.Entry{
		entry(1, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte("first")}),
		entry(2, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte("second")}),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	for i, e := range entries {
		if e.Result.Value != uint64(store.RetCSuccess) {
			t.Errorf("entry %d: expected success, got %d (%s)", i, e.Result.Value, e.Result.Data)
		}
	}

	res, err := fsm.Lookup(internal.Query{Type: internal.QueryTGet, Key: k})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	qr := res.(internal.QueryResult)
	if !qr.Ok || !bytes.Equal(qr.Value, []byte("second")) {
		t.Errorf("expected second write, got %q ok=%v", qr.Value, qr.Ok)
	}

	_, _ = fsm.Update([]sm.Entry{entry(3, internal.Command{Type: internal.CommandTClear, Key: k})})

	has, err := fsm.Lookup(internal.Query{Type: internal.QueryTHas, Key: k})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if has.(bool) {
		t.Errorf("expected slot to be cleared")
	}

	info, err := fsm.Lookup(internal.Query{Type: internal.QueryTGetDBInfo})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if info.(db.DatabaseInfo).DbType != db.ImplMaple {
		t.Errorf("unexpected db type %v", info.(db.DatabaseInfo).DbType)
	}
}

func TestReplayedEntriesAreIgnored(t *testing.T) {
	fsm := newTestMachine()
	defer fsm.Close()

	k := key.FromUint64(1)
	_, _ = fsm.Update([]sm.Entry{entry(10, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte("new")})})
	_, _ = fsm.Update([]sm.Entry{entry(5, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte("old")})})

	res, _ := fsm.Lookup(internal.Query{Type: internal.QueryTGet, Key: k})
	if v := res.(internal.QueryResult).Value; string(v) != "new" {
		t.Errorf("replayed entry overwrote newer value: %q", v)
	}
}

func TestInvalidEntries(t *testing.T) {
	fsm := newTestMachine()
	defer fsm.Close()

	tests := []struct {
		name string
		cmd  []byte
		code store.RetCode
	}{
		{"empty", nil, store.RetCInvalidOperation},
		{"truncated", []byte{byte(internal.CommandTSet), 1, 2}, store.RetCInternalError},
		{"unknown type", append([]byte{42}, make([]byte, key.Size)...), store.RetCInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := fsm.Update([]sm.Entry{{Index: 1, Cmd: tt.cmd}})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if got := store.RetCode(entries[0].Result.Value); got != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got)
			}
		})
	}

	_, err := fsm.Lookup("not a query")
	if !errors.Is(err, store.NewError(store.RetCInternalError, "")) {
		t.Errorf("expected internal error for invalid query type, got %v", err)
	}
	_, err = fsm.Lookup(internal.Query{Type: internal.QueryType(99)})
	if !errors.Is(err, store.NewError(store.RetCInvalidOperation, "")) {
		t.Errorf("expected invalid operation error, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fsm := newTestMachine()
	defer fsm.Close()

	k := key.FromUint64(567)
	_, _ = fsm.Update([]sm.Entry{entry(1, internal.Command{Type: internal.CommandTSet, Key: k, Value: []byte("snap")})})

	var buf bytes.Buffer
	if err := fsm.SaveSnapshot(nil, &buf, nil, nil); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	recovered := newTestMachine()
	defer recovered.Close()
	if err := recovered.RecoverFromSnapshot(&buf, nil, nil); err != nil {
		t.Fatalf("RecoverFromSnapshot failed: %v", err)
	}

	res, _ := recovered.Lookup(internal.Query{Type: internal.QueryTGet, Key: k})
	if v := res.(internal.QueryResult).Value; string(v) != "snap" {
		t.Errorf("expected recovered slot, got %q", v)
	}
}
