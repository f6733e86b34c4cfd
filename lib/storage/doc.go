// Package storage maps values onto the slots of a key/value store.
//
// Values are persisted in one of two ways:
//
//   - Spread: a value occupies Footprint consecutive slots, starting at the key of a
//     cursor (key.Ptr). Composite values lay their parts out one after another and
//     advance the cursor as they go, so the slots of a tree are fully determined by
//     its root key and its shape.
//
//   - Packed: a value is encoded into a single slot at a key chosen by the caller.
//
// The building blocks are Value (a packed leaf), Struct, Enum, Array, HashMap and
// Upgradable. Every building block can also allocate its default value without
// touching the store (SpreadAllocate) and describe where it is stored
// (StorageLayout, see package layout).
//
// All operations receive an Env which carries the slot store and the codec used for
// packed values. Errors are returned as *Error and can be matched with errors.Is
// against ErrNotFound, ErrDecodeFailure, ErrEncodeFailure, ErrInitializerFailure
// and ErrStore.
package storage
