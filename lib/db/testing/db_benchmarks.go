package testing

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

// RunSlotDBBenchmarks runs all benchmarks for a slot database implementation
func RunSlotDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory())
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

var benchValue = []byte("benchmark-value-0123456789")

func benchmarkSet(b *testing.B, database db.SlotDB) {
	defer database.Close()
	root := key.FromUint64(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Set(root.Add(uint64(i)), benchValue, uint64(i+1))
	}
}

func benchmarkGet(b *testing.B, database db.SlotDB) {
	defer database.Close()
	root := key.FromUint64(1)
	const numSlots = 10000
	for i := 0; i < numSlots; i++ {
		database.Set(root.Add(uint64(i)), benchValue, uint64(i+1))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Get(root.Add(uint64(i % numSlots)))
	}
}

func benchmarkDelete(b *testing.B, database db.SlotDB) {
	defer database.Close()
	root := key.FromUint64(1)
	for i := 0; i < b.N; i++ {
		database.Set(root.Add(uint64(i)), benchValue, uint64(i+1))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Delete(root.Add(uint64(i)), uint64(b.N+i+1))
	}
}

func benchmarkHasNot(b *testing.B, database db.SlotDB) {
	defer database.Close()
	root := key.FromUint64(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.Has(root.Add(uint64(i)))
	}
}

func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	database := factory()
	defer database.Close()
	root := key.FromUint64(1)
	for i := 0; i < 10000; i++ {
		database.Set(root.Add(uint64(i)), benchValue, uint64(i+1))
	}

	var buf bytes.Buffer
	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := database.Save(&buf); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Load", func(b *testing.B) {
		target := factory()
		defer target.Close()
		for i := 0; i < b.N; i++ {
			if err := target.Load(bytes.NewReader(buf.Bytes())); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func benchmarkMixedUsage(b *testing.B, database db.SlotDB) {
	defer database.Close()
	root := key.FromUint64(1)
	rng := rand.New(rand.NewSource(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := root.Add(uint64(rng.Intn(1000)))
		switch rng.Intn(10) {
		case 0:
			database.Delete(k, uint64(i+1))
		case 1, 2, 3:
			database.Set(k, benchValue, uint64(i+1))
		default:
			database.Get(k)
		}
	}
}
