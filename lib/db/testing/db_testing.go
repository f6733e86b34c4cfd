package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

// DBFactory is a function that creates a new instance of a SlotDB implementation
type DBFactory func() db.SlotDB

// RunSlotDBTests runs a comprehensive test suite for a SlotDB implementation.
func RunSlotDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("AdjacentKeys", func(t *testing.T) {
			testAdjacentKeys(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentWrites", func(t *testing.T) {
			testConcurrentWrites(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.SlotDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := key.FromUint64(42)
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected slot %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected slot %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get(key.FromUint64(43)); exists {
		t.Errorf("Expected nonexistent slot to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	input := []byte("mutable")
	database.Set(testKey, input, 3)
	input[0] = 'X'
	result, _ = database.Get(testKey)
	if !bytes.Equal(result, []byte("mutable")) {
		t.Errorf("Set should store a copy of the value, got %s", result)
	}
}

func testDelete(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	testKey := key.FromUint64(7)
	database.Set(testKey, []byte("delete-test-value"), 1)

	if _, exists := database.Get(testKey); !exists {
		t.Errorf("Expected slot %s to exist after Set", testKey)
	}

	database.Delete(testKey, 2)

	if _, exists := database.Get(testKey); exists {
		t.Errorf("Expected slot %s to not exist after Delete", testKey)
	}

	// deleting a missing slot must not fail
	database.Delete(key.FromUint64(8), 3)
}

func testHas(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureDelete)

	testKey := key.FromUint64(9)
	if database.Has(testKey) {
		t.Errorf("Expected slot %s to not exist before Set", testKey)
	}

	database.Set(testKey, []byte("has-value"), 1)
	if !database.Has(testKey) {
		t.Errorf("Expected slot %s to exist after Set", testKey)
	}

	database.Delete(testKey, 2)
	if database.Has(testKey) {
		t.Errorf("Expected slot %s to not exist after Delete", testKey)
	}
}

func testStaleWrites(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	testKey := key.FromUint64(11)
	database.Set(testKey, []byte("new"), 10)
	database.Set(testKey, []byte("old"), 5)

	result, _ := database.Get(testKey)
	if !bytes.Equal(result, []byte("new")) {
		t.Errorf("Stale write should be ignored, got %s", result)
	}

	database.Delete(testKey, 4)
	if !database.Has(testKey) {
		t.Errorf("Stale delete should be ignored")
	}

	if database.WriteIdx() != 10 {
		t.Errorf("Expected write index 10, got %d", database.WriteIdx())
	}
	database.SetWriteIdx(3)
	if database.WriteIdx() != 10 {
		t.Errorf("Write index must only increase, got %d", database.WriteIdx())
	}
}

func testAdjacentKeys(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	root := key.FromUint64(1000)
	numSlots := 500

	for i := 0; i < numSlots; i++ {
		database.Set(root.Add(uint64(i)), []byte(fmt.Sprintf("slot-%d", i)), uint64(i+1))
	}

	for i := 0; i < numSlots; i++ {
		result, exists := database.Get(root.Add(uint64(i)))
		if !exists {
			t.Fatalf("Slot %d not found", i)
		}
		if expected := fmt.Sprintf("slot-%d", i); string(result) != expected {
			t.Errorf("Slot %d: expected %s, got %s", i, expected, result)
		}
	}

	if info := database.GetInfo(); info.Slots != numSlots {
		t.Errorf("Expected %d slots in info, got %d", numSlots, info.Slots)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	slots := map[key.Key][]byte{
		key.FromUint64(1):          []byte("one"),
		key.FromUint64(2):          []byte("two"),
		key.FromUint64(1).Add(1e9): []byte("far"),
		key.FromUint64(3):          {},
	}
	idx := uint64(1)
	for k, v := range slots {
		database.Set(k, v, idx)
		idx++
	}

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := factory()
	defer loaded.Close()

	// pre-existing content is replaced by the snapshot
	loaded.Set(key.FromUint64(99), []byte("stale"), 1)
	loaded.Set(key.FromUint64(1), []byte("overwritten"), 2)

	if err := loaded.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for k, v := range slots {
		result, exists := loaded.Get(k)
		if !exists {
			t.Errorf("Slot %s missing after Load", k)
			continue
		}
		if !bytes.Equal(result, v) {
			t.Errorf("Slot %s: expected %q, got %q", k, v, result)
		}
	}

	if loaded.Has(key.FromUint64(99)) {
		t.Errorf("Load should discard slots that are not part of the snapshot")
	}
	if loaded.WriteIdx() < idx-1 {
		t.Errorf("Expected write index >= %d after Load, got %d", idx-1, loaded.WriteIdx())
	}

	if err := loaded.Load(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Errorf("Expected error when loading invalid data")
	}
}

func testEdgeCases(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	var zero key.Key
	database.Set(zero, []byte("zero"), 1)
	if result, exists := database.Get(zero); !exists || string(result) != "zero" {
		t.Errorf("Zero key should be a valid slot, got %q (exists=%v)", result, exists)
	}

	emptyKey := key.FromUint64(5)
	database.Set(emptyKey, []byte{}, 2)
	result, exists := database.Get(emptyKey)
	if !exists {
		t.Errorf("Slot with empty value should exist")
	}
	if len(result) != 0 {
		t.Errorf("Expected empty value, got %q", result)
	}

	large := bytes.Repeat([]byte("x"), 1<<20)
	largeKey := key.FromUint64(6)
	database.Set(largeKey, large, 3)
	if result, _ := database.Get(largeKey); !bytes.Equal(result, large) {
		t.Errorf("Large value not stored correctly")
	}
}

func testConcurrentWrites(t *testing.T, database db.SlotDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := key.FromUint64(uint64(w*perWorker + i))
				database.Set(k, []byte(fmt.Sprintf("%d-%d", w, i)), uint64(w*perWorker+i+1))
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			result, exists := database.Get(key.FromUint64(uint64(w*perWorker + i)))
			if !exists || string(result) != fmt.Sprintf("%d-%d", w, i) {
				t.Errorf("Unexpected value for worker %d slot %d: %q", w, i, result)
			}
		}
	}
}
