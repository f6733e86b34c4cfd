package maple

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/kvlayout/lib/db/util"
	"github.com/ValentinKolb/kvlayout/lib/key"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum     = "MAPLEDB\x00" // File format identifier
	mapleVersion = 4             // Snapshot format version (32-byte slot keys)
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory slot database with sharded data
type mapleImpl struct {
	mu        sync.RWMutex      // guards shards and seed against Load
	numShards int               // Number of shards
	seed      uint64            // Seed for shard selection
	shards    []*internal.Shard // Array of shards
	currIndex atomic.Uint64     // Current logical timestamp
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.SlotDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = runtime.NumCPU()
	}

	return &mapleImpl{
		numShards: opts.NumShards,
		seed:      util.GenerateSeed(),
		shards:    newShards(opts.NumShards),
	}
}

func newShards(n int) []*internal.Shard {
	shards := make([]*internal.Shard, n)
	for i := range shards {
		shards[i] = internal.NewShard()
	}
	return shards
}

// shard returns the shard responsible for k
func (maple *mapleImpl) shard(k key.Key) *internal.Shard {
	maple.mu.RLock()
	defer maple.mu.RUnlock()
	return internal.GetShard(k, maple.seed, maple.shards)
}

// --------------------------------------------------------------------------
// SlotDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set stores a copy of value in the slot k.
// Writes older than the stored entry are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(k key.Key, value []byte, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	maple.shard(k).Data.Compute(k, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && writeIndex < old.Index {
			return old, false
		}
		return internal.Entry{Value: valueCopy, Index: writeIndex}, false
	})
}

// Delete removes the slot k.
// Deletes older than the stored entry are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(k key.Key, writeIndex uint64) {
	maple.SetWriteIdx(writeIndex)

	maple.shard(k).Data.Compute(k, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true
		}
		return old, writeIndex >= old.Index
	})
}

// --------------------------------------------------------------------------
// SlotDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns a copy of the value stored at k.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(k key.Key) ([]byte, bool) {
	entry, ok := maple.shard(k).Data.Load(k)
	if !ok {
		return nil, false
	}
	valueCopy := make([]byte, len(entry.Value))
	copy(valueCopy, entry.Value)
	return valueCopy, true
}

// Has reports whether the slot k exists.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(k key.Key) bool {
	_, ok := maple.shard(k).Data.Load(k)
	return ok
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists the database to the writer.
// The snapshot is fuzzy: concurrent writes may or may not be included.
//
// Format: magic, version (u8), seed (u64), count (u64), then per slot
// key (32 bytes), index (u64), value length (u32) and value bytes.
// All integers are little endian.
func (maple *mapleImpl) Save(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	type slotToSave struct {
		key   key.Key
		entry internal.Entry
	}

	maple.mu.RLock()
	var slots []slotToSave
	for _, shard := range maple.shards {
		shard.Data.Range(func(k key.Key, entry internal.Entry) bool {
			valueCopy := make([]byte, len(entry.Value))
			copy(valueCopy, entry.Value)
			slots = append(slots, slotToSave{k, internal.Entry{Value: valueCopy, Index: entry.Index}})
			return true
		})
	}
	seed := maple.seed
	maple.mu.RUnlock()

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(mapleVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, seed); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(slots))); err != nil {
		return err
	}

	for _, item := range slots {
		if _, err := bw.Write(item.key[:]); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, item.entry.Index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(item.entry.Value))); err != nil {
			return err
		}
		if _, err := bw.Write(item.entry.Value); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load restores a database from the reader
//
// Thread-safety: Load blocks all other operations until it has finished.
func (maple *mapleImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != mapleVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, mapleVersion)
	}

	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return err
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return err
	}

	shards := newShards(maple.numShards)
	var maxIndex uint64

	for i := uint64(0); i < count; i++ {
		var k key.Key
		if _, err := io.ReadFull(br, k[:]); err != nil {
			return err
		}

		var index uint64
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return err
		}
		if index > maxIndex {
			maxIndex = index
		}

		var valueLen uint32
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return err
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}

		internal.GetShard(k, seed, shards).Data.Store(k, internal.Entry{Value: value, Index: index})
	}

	maple.mu.Lock()
	maple.shards = shards
	maple.seed = seed
	maple.currIndex.Store(0)
	maple.mu.Unlock()

	maple.SetWriteIdx(maxIndex)
	return nil
}

// --------------------------------------------------------------------------
// SlotDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	maple.mu.RLock()
	defer maple.mu.RUnlock()

	histogram := util.NewSizeHistogram()
	shardSizes := make([]float64, len(maple.shards))
	slots := 0

	for i, shard := range maple.shards {
		sampled := 0
		shard.Data.Range(func(_ key.Key, entry internal.Entry) bool {
			histogram.AddSample(len(entry.Value))
			sampled++
			return sampled < 100 // only sample a few entries per shard
		})
		size := shard.Data.Size()
		shardSizes[i] = float64(size)
		slots += size
	}

	entryOverhead := key.Size + 8 // key + index
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead

	// weighted estimate (60% median, 40% average)
	sizeBytes := slots * ((medianSize*60 + avgSize*40) / 100)

	meta := &struct {
		CurrentWriteIndex uint64                 `json:"current_write_index"`
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		Info              string                 `json:"info"`
	}{
		CurrentWriteIndex: maple.currIndex.Load(),
		ShardCount:        len(maple.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		Info:              "SizeBytes is an estimate based on sampled slots.",
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		Slots:     slots,
		DbType:    db.ImplMaple,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
			db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific SlotDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close is a no-op for the in-memory engine
func (maple *mapleImpl) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Index Management
// --------------------------------------------------------------------------

// SetWriteIdx updates the current index only if the new index is greater than the current one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetWriteIdx(newIdx uint64) {
	for {
		currIdx := maple.currIndex.Load()
		if newIdx <= currIdx {
			return
		}
		if maple.currIndex.CompareAndSwap(currIdx, newIdx) {
			return
		}
	}
}

// WriteIdx returns the current index of the database
func (maple *mapleImpl) WriteIdx() uint64 {
	return maple.currIndex.Load()
}
