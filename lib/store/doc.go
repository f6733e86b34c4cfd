// Package store provides the slot store interface the storage layer persists into,
// together with a unified error type. It serves as an abstraction layer over the
// lower-level db.SlotDB engines and adds write index management and standardized
// error reporting.
//
// Key Components:
//
//   - Store Interface: get, set, clear and has on 32-byte slot keys. All
//     implementations share this interface, so the storage layer works the same on
//     an in-memory map, a leveldb directory or a RAFT replicated cluster.
//
//   - Error System: a structured error type with typed return codes (RetCode).
//     errors.Is compares codes, so callers can test for a specific condition.
//
//   - DBFactory: a function type that abstracts the creation of the underlying
//     db.SlotDB instance.
//
// Implementations:
//
//	- Local Store (lstore): a single node store that directly uses one db.SlotDB
//	  and manages the write index with atomic operations.
//	  Available in the "github.com/ValentinKolb/kvlayout/lib/store/lstore" package.
//
//	- Distributed Store (dstore): a store built on the Dragonboat RAFT library. Every
//	  write is proposed to the shard and applied to a db.SlotDB on all replicas.
//	  Available in the "github.com/ValentinKolb/kvlayout/lib/store/dstore" package.
package store
