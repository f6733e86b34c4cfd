package internal

import (
	"github.com/ValentinKolb/kvlayout/lib/db/util"
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (slot value with metadata)
// --------------------------------------------------------------------------

// Entry stores the value of one slot together with the write index of the last update
type Entry struct {
	Value []byte // Slot content
	Index uint64 // Write index when this entry was created/updated
}

// --------------------------------------------------------------------------
// Shard Type (partition of the database)
// --------------------------------------------------------------------------

// Shard represents a partition of the database
type Shard struct {
	Data *xsync.MapOf[key.Key, Entry]
}

// NewShard creates a new empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[key.Key, Entry](),
	}
}

// GetShard returns the appropriate shard for a given key.
// Slot keys that are laid out by a cursor differ only in their last bytes,
// so the whole key is hashed with the database seed before picking a shard.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard[T any](k key.Key, seed uint64, shards []*T) *T {
	h := util.HashBytes(k[:], seed)
	return shards[(h>>7)%uint64(len(shards))]
}
