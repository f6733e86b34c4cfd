// Package codec provides the packed encodings used to turn a single Go value into
// the bytes of one storage slot. It defines a common interface and several
// implementations with different characteristics.
//
// Key Components:
//
//   - Codec: core interface that all implementations satisfy.
//
//   - cborCodecImpl: deterministic CBOR (core deterministic encoding of RFC 8949)
//     based on fxamacker/cbor. Equal values always encode to equal bytes, which
//     matters for everything derived from encoded bytes, such as hashed map entry
//     keys. This is the default codec.
//
//   - jsonCodecImpl: JSON encoding, useful for debugging since slot contents stay
//     human-readable. Unknown fields are rejected on decode.
//
//   - gobCodecImpl: Go's gob encoding. Every value carries its type description, so
//     payloads are considerably larger than with the other codecs.
//
// Thread Safety:
//
//	All codec implementations are safe for concurrent use across multiple
//	goroutines without additional synchronization.
//
// Usage:
//
//	c, err := codec.ByName("cbor")
//	data, err := c.Encode(uint32(456))
//	var v uint32
//	err = c.Decode(data, &v)
package codec
