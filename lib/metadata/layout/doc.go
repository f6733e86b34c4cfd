// Package layout models how the state of a program is laid out in storage, as a
// tree of five node kinds:
//
//   - cell: one slot holding a packed value, described by its key and type
//   - struct: ordered, named or unnamed fields
//   - array: a fixed number of equally sized elements from an offset
//   - enum: a dispatch slot plus one struct per variant, keyed by discriminant
//   - hash: an unbounded collection whose element keys are derived with a
//     hashing strategy (hasher, prefix, postfix)
//
// Layout trees are built from static information only, building one never touches
// the store. IntoPortable registers every type reference of the tree in a
// registry.Registry. The JSON form of a portable tree is the published storage
// schema, for example:
//
//	{"cell":{"key":"0x00000159","ty":0}}
//	{"enum":{"dispatchKey":"0x0000007b","variants":{"0":{"fields":[]}}}}
//
// Keys are rendered as lowercase hex with a 0x prefix at the width of the key they
// were made from.
package layout
