// Package maple implements an in-memory slot database (db.SlotDB) with a focus on
// concurrent access.
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.SlotDB. It manages
//     the shards and the monotonically increasing write index. The caller decides
//     how write indices are generated (a counter for local stores, the raft log
//     index for replicated stores).
//
//   - Shard: A partition of the key space backed by a concurrent xsync map.
//     Slot keys are hashed with a per-database seed before the shard is chosen,
//     because keys handed out by a cursor only differ in their trailing bytes.
//
//   - Entry: The slot value plus the write index of its last update. The index
//     is used to reject stale writes and deletes.
//
// Persistence:
//
//	Save writes a fuzzy snapshot in a compact binary format (magic number,
//	version, seed, then one record per slot). Load replaces the whole database
//	content with a snapshot.
package maple
