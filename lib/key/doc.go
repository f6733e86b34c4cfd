// Package key provides the fixed-width storage key and the cursor used to lay
// out values over consecutive keys.
//
// Key Components:
//
//   - Key: a 32-byte slot identifier. Keys support big-endian integer addition
//     (Add) and render as 0x-prefixed lowercase hex, which is the form used by
//     the layout metadata.
//
//   - StorageKey: a compact 4-byte key for manually keyed roots.
//
//   - Ptr: a cursor that hands out the current key and advances by the
//     footprint of the value placed at that key. Every root persistence call
//     creates its own Ptr; it is never shared.
package key
