// Package lstore implements a local, single-node slot store based on the
// store.Store interface. It is a thin wrapper around any db.SlotDB implementation
// with automatic write index management.
//
// Whether data survives a restart depends on the engine: the maple engine keeps
// everything in memory, the leveldb engine persists to disk.
//
// Implementation Details:
//
//   - Write Index Management: the store maintains an atomic counter that increments
//     with each write operation. It starts at the index the engine already holds.
//
//   - Feature Detection: before executing an operation the store checks whether the
//     underlying engine supports it. Unsupported operations return
//     store.RetCUnsupportedOperation.
//
// Usage Example:
//
//	factory := func() db.SlotDB { return maple.NewMapleDB(nil) }
//	s := lstore.NewLocalStore(factory)
//
//	err := s.Set(key.FromUint64(345), encoded)
//	value, exists, err := s.Get(key.FromUint64(345))
package lstore
