package leveldb

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	dbtesting "github.com/ValentinKolb/kvlayout/lib/db/testing"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

func Test(t *testing.T) {
	dbtesting.RunSlotDBTests(t, "LevelDB", func() db.SlotDB {
		return MustNewLevelDB(&DBOptions{InMemory: true})
	})
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots")

	database, err := NewLevelDB(&DBOptions{Path: path})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	database.Set(key.FromUint64(345), []byte("persisted"), 7)
	if err := database.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewLevelDB(&DBOptions{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok := reopened.Get(key.FromUint64(345))
	if !ok || string(value) != "persisted" {
		t.Errorf("expected persisted slot, got %q (ok=%v)", value, ok)
	}
	if reopened.WriteIdx() != 7 {
		t.Errorf("expected write index 7 after reopen, got %d", reopened.WriteIdx())
	}
}

func TestLoadPersists(t *testing.T) {
	source := MustNewLevelDB(&DBOptions{InMemory: true})
	defer source.Close()
	source.Set(key.FromUint64(1), []byte("one"), 3)
	source.Set(key.FromUint64(2), []byte("two"), 4)

	var snapshot bytes.Buffer
	if err := source.Save(&snapshot); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "slots")
	target, err := NewLevelDB(&DBOptions{Path: path})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	target.Set(key.FromUint64(1), []byte("old"), 1)
	target.Set(key.FromUint64(5), []byte("gone"), 2)
	if err := target.Load(bytes.NewReader(snapshot.Bytes())); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := target.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewLevelDB(&DBOptions{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	tests := []struct {
		slot   uint64
		want   string
		exists bool
	}{
		{1, "one", true},
		{2, "two", true},
		{5, "", false},
	}
	for _, tt := range tests {
		value, ok := reopened.Get(key.FromUint64(tt.slot))
		if ok != tt.exists || string(value) != tt.want {
			t.Errorf("slot %d: expected %q (exists=%v), got %q (exists=%v)", tt.slot, tt.want, tt.exists, value, ok)
		}
	}
	if reopened.WriteIdx() != 4 {
		t.Errorf("expected write index 4 after load, got %d", reopened.WriteIdx())
	}
}

func TestMissingPath(t *testing.T) {
	if _, err := NewLevelDB(&DBOptions{}); err == nil {
		t.Errorf("expected error for empty path")
	}
}

func Benchmark(b *testing.B) {
	dbtesting.RunSlotDBBenchmarks(b, "LevelDB", func() db.SlotDB {
		return MustNewLevelDB(&DBOptions{InMemory: true})
	})
}
