// Package db provides a standardized interface for slot database implementations.
// A slot database is the byte-addressed backing store of the storage layer: it maps
// fixed-width storage keys (see package key) to opaque byte blobs.
//
// Key Components:
//
//   - SlotDB Interface: The core interface that all database engines must satisfy.
//     It provides basic operations (Set, Get, Has, Delete), persistence
//     operations (Save, Load) and metadata retrieval (GetInfo).
//
//   - Feature Flags: The Feature type defines capability flags that engines
//     advertise through SupportsFeature, so callers can discover supported
//     operations at runtime.
//
//   - Implementation Identifiers: "maple" (in-memory, sharded) and "leveldb"
//     (on-disk, goleveldb).
//
// Write Index:
//   - Every write carries a write-index that serves as a logical timestamp. An
//     engine ignores writes that are older than the entry they would replace,
//     which keeps replicated state machines deterministic when entries are
//     re-applied.
//   - The write-index only increases monotonically. Attempts to set a lower
//     write-index are ignored.
package db
