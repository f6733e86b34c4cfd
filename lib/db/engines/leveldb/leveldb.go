package leveldb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/kvlayout/lib/db"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

var log = logger.GetLogger("db")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum       = "LVLSLOT\x00" // Snapshot format identifier
	snapshotFormat = 1             // Snapshot format version

	slotPrefix = 'S' // prefix of all slot records
)

// writeIndexKey holds the persisted write index, it sorts before all slot records
var writeIndexKey = []byte{0x00, 'W', 'I', 'D', 'X'}

// slotRange covers all slot records
var slotRange = ldb_util.Range{
	Start: []byte{slotPrefix},
	Limit: []byte{slotPrefix + 1},
}

// --------------------------------------------------------------------------
// Core structure
// --------------------------------------------------------------------------

// levelImpl implements an on-disk slot database on top of goleveldb.
// Every record is stored as 'S' ‖ key -> index (u64, big endian) ‖ value.
type levelImpl struct {
	mu        sync.Mutex // serializes read-modify-write of slot records
	database  *leveldb.DB
	currIndex atomic.Uint64
}

// DBOptions configures the leveldb engine
type DBOptions struct {
	Path     string // directory of the database files
	InMemory bool   // keep all files in memory (Path is ignored)
	ReadOnly bool   // open an existing database read only
}

// NewLevelDB opens (or creates) a leveldb backed slot database
func NewLevelDB(opts *DBOptions) (db.SlotDB, error) {
	if opts == nil {
		opts = &DBOptions{InMemory: true}
	}

	ldbOpts := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: opts.ReadOnly,
		ReadOnly:       opts.ReadOnly,
	}

	var (
		database *leveldb.DB
		err      error
	)
	if opts.InMemory {
		database, err = leveldb.Open(ldb_storage.NewMemStorage(), ldbOpts)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("leveldb: no path given")
		}
		database, err = leveldb.OpenFile(opts.Path, ldbOpts)
	}
	if err != nil {
		return nil, err
	}

	impl := &levelImpl{database: database}

	idx, err := database.Get(writeIndexKey, nil)
	if err == nil && len(idx) == 8 {
		impl.currIndex.Store(binary.BigEndian.Uint64(idx))
	} else if err != nil && err != leveldb.ErrNotFound {
		database.Close()
		return nil, err
	}

	return impl, nil
}

// MustNewLevelDB is like NewLevelDB but panics on error
func MustNewLevelDB(opts *DBOptions) db.SlotDB {
	database, err := NewLevelDB(opts)
	if err != nil {
		panic(err)
	}
	return database
}

// --------------------------------------------------------------------------
// Record helpers
// --------------------------------------------------------------------------

func recordKey(k key.Key) []byte {
	b := make([]byte, 1, 1+key.Size)
	b[0] = slotPrefix
	return append(b, k[:]...)
}

func encodeRecord(index uint64, value []byte) []byte {
	b := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(b, index)
	copy(b[8:], value)
	return b
}

func decodeRecord(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("truncated slot record: %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b[:8]), b[8:], nil
}

func encodeIndex(index uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, index)
	return b
}

// storedIndex returns the index of the record at rk. It must be called with mu held.
func (l *levelImpl) storedIndex(rk []byte) (uint64, bool) {
	raw, err := l.database.Get(rk, nil)
	if err != nil {
		if err != leveldb.ErrNotFound {
			log.Errorf("leveldb: reading %x failed: %v", rk, err)
		}
		return 0, false
	}
	index, _, err := decodeRecord(raw)
	if err != nil {
		log.Errorf("leveldb: %v", err)
		return 0, false
	}
	return index, true
}

// --------------------------------------------------------------------------
// SlotDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set stores value in the slot k. Writes older than the stored record are ignored.
func (l *levelImpl) Set(k key.Key, value []byte, writeIndex uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rk := recordKey(k)
	if old, ok := l.storedIndex(rk); ok && writeIndex < old {
		return
	}

	batch := new(leveldb.Batch)
	batch.Put(rk, encodeRecord(writeIndex, value))
	l.bumpIndex(batch, writeIndex)

	if err := l.database.Write(batch, nil); err != nil {
		log.Errorf("leveldb: set %s failed: %v", k, err)
	}
}

// Delete removes the slot k. Deletes older than the stored record are ignored.
func (l *levelImpl) Delete(k key.Key, writeIndex uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rk := recordKey(k)
	batch := new(leveldb.Batch)
	if old, ok := l.storedIndex(rk); ok {
		if writeIndex < old {
			return
		}
		batch.Delete(rk)
	}
	l.bumpIndex(batch, writeIndex)

	if batch.Len() == 0 {
		return
	}
	if err := l.database.Write(batch, nil); err != nil {
		log.Errorf("leveldb: delete %s failed: %v", k, err)
	}
}

// bumpIndex raises the write index and records the new value in batch.
// It must be called with mu held.
func (l *levelImpl) bumpIndex(batch *leveldb.Batch, writeIndex uint64) {
	if writeIndex > l.currIndex.Load() {
		l.currIndex.Store(writeIndex)
		batch.Put(writeIndexKey, encodeIndex(writeIndex))
	}
}

// --------------------------------------------------------------------------
// SlotDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns a copy of the value stored at k
func (l *levelImpl) Get(k key.Key) ([]byte, bool) {
	raw, err := l.database.Get(recordKey(k), nil)
	if err != nil {
		if err != leveldb.ErrNotFound {
			log.Errorf("leveldb: get %s failed: %v", k, err)
		}
		return nil, false
	}
	_, value, err := decodeRecord(raw)
	if err != nil {
		log.Errorf("leveldb: %v", err)
		return nil, false
	}
	// goleveldb returns a fresh slice, the sub slice is not shared
	return value, true
}

// Has reports whether the slot k exists
func (l *levelImpl) Has(k key.Key) bool {
	ok, err := l.database.Has(recordKey(k), nil)
	if err != nil {
		log.Errorf("leveldb: has %s failed: %v", k, err)
		return false
	}
	return ok
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes a consistent snapshot of all slots to w.
//
// Format: magic, version (u8), then per slot a marker byte 1, key (32 bytes),
// index (u64), value length (u32) and value bytes, terminated by a marker byte 0.
// All integers are little endian.
func (l *levelImpl) Save(w io.Writer) error {
	snap, err := l.database.GetSnapshot()
	if err != nil {
		return err
	}
	defer snap.Release()

	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := bw.WriteByte(snapshotFormat); err != nil {
		return err
	}

	iter := snap.NewIterator(&slotRange, nil)
	defer iter.Release()

	for iter.Next() {
		index, value, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if err := bw.WriteByte(1); err != nil {
			return err
		}
		if _, err := bw.Write(iter.Key()[1:]); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, index); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(value))); err != nil {
			return err
		}
		if _, err := bw.Write(value); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}

	if err := bw.WriteByte(0); err != nil {
		return err
	}
	return bw.Flush()
}

// Load replaces all slots with the content of a snapshot written by Save.
// The snapshot is read completely before the database is modified.
func (l *levelImpl) Load(r io.Reader) error {
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	version, err := br.ReadByte()
	if err != nil {
		return err
	}
	if version != snapshotFormat {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, snapshotFormat)
	}

	loaded := new(leveldb.Batch)
	var maxIndex uint64

	for {
		marker, err := br.ReadByte()
		if err != nil {
			return err
		}
		if marker == 0 {
			break
		}
		if marker != 1 {
			return fmt.Errorf("invalid record marker: %d", marker)
		}

		var k key.Key
		if _, err := io.ReadFull(br, k[:]); err != nil {
			return err
		}
		var index uint64
		if err := binary.Read(br, binary.LittleEndian, &index); err != nil {
			return err
		}
		var valueLen uint32
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return err
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return err
		}

		if index > maxIndex {
			maxIndex = index
		}
		loaded.Put(recordKey(k), encodeRecord(index, value))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	batch := new(leveldb.Batch)
	iter := l.database.NewIterator(&slotRange, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	// loaded records go after the deletes so they win for keys present in both
	if err := loaded.Replay(&batchAppender{batch}); err != nil {
		return err
	}
	batch.Put(writeIndexKey, encodeIndex(maxIndex))

	if err := l.database.Write(batch, nil); err != nil {
		return err
	}
	l.currIndex.Store(maxIndex)
	return nil
}

// batchAppender appends the records of a replayed batch to target
type batchAppender struct {
	target *leveldb.Batch
}

func (b *batchAppender) Put(k, v []byte) {
	b.target.Put(k, v)
}

func (b *batchAppender) Delete(k []byte) {
	b.target.Delete(k)
}

// --------------------------------------------------------------------------
// SlotDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (l *levelImpl) GetInfo() db.DatabaseInfo {
	slots, sizeBytes := 0, 0

	iter := l.database.NewIterator(&slotRange, nil)
	for iter.Next() {
		slots++
		sizeBytes += len(iter.Key()) + len(iter.Value())
	}
	iter.Release()

	var onDisk int64
	if sizes, err := l.database.SizeOf([]ldb_util.Range{slotRange}); err == nil {
		onDisk = sizes.Sum()
	} else {
		log.Warningf("leveldb: reading table sizes failed: %v", err)
	}

	meta := &struct {
		CurrentWriteIndex uint64 `json:"current_write_index"`
		TableBytes        int64  `json:"table_bytes"`
		Info              string `json:"info"`
	}{
		CurrentWriteIndex: l.currIndex.Load(),
		TableBytes:        onDisk,
		Info:              "SizeBytes counts raw record bytes, TableBytes the compacted table files.",
	}

	return db.DatabaseInfo{
		SizeBytes: sizeBytes,
		Slots:     slots,
		DbType:    db.ImplLevelDB,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
			db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific SlotDB feature
func (l *levelImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close closes the underlying leveldb files
func (l *levelImpl) Close() error {
	return l.database.Close()
}

// --------------------------------------------------------------------------
// Index Management
// --------------------------------------------------------------------------

// SetWriteIdx updates the current index only if the new index is greater than the current one
func (l *levelImpl) SetWriteIdx(newIdx uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := new(leveldb.Batch)
	l.bumpIndex(batch, newIdx)
	if batch.Len() == 0 {
		return
	}
	if err := l.database.Write(batch, nil); err != nil {
		log.Errorf("leveldb: persisting write index failed: %v", err)
	}
}

// WriteIdx returns the current index of the database
func (l *levelImpl) WriteIdx() uint64 {
	return l.currIndex.Load()
}
