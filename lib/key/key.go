package key

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Key Type
// --------------------------------------------------------------------------

// Size is the width of a storage key in bytes.
const Size = 32

// Key identifies a single storage slot. Keys are plain values: once derived they
// never change, they can be compared with == and used as map keys.
//
// Arithmetic on keys (see Add) treats the 32 bytes as one big-endian unsigned
// 256-bit integer, so FromUint64(345).Add(1) == FromUint64(346).
type Key [Size]byte

// FromUint64 returns the key whose big-endian integer value is v.
func FromUint64(v uint64) Key {
	var k Key
	binary.BigEndian.PutUint64(k[Size-8:], v)
	return k
}

// FromBytes left-pads b to the key width.
// An error is returned if b is longer than Size bytes.
func FromBytes(b []byte) (Key, error) {
	var k Key
	if len(b) > Size {
		return k, fmt.Errorf("key too long: %d bytes (max %d)", len(b), Size)
	}
	copy(k[Size-len(b):], b)
	return k, nil
}

// Parse reads a hexadecimal key with or without the 0x prefix.
// Short inputs are left-padded with zeros.
func Parse(s string) (Key, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	return FromBytes(b)
}

// Add returns k + n. The addition wraps around modulo 2^256.
func (k Key) Add(n uint64) Key {
	carry := n
	for i := Size - 8; i >= 0 && carry != 0; i -= 8 {
		limb := binary.BigEndian.Uint64(k[i : i+8])
		sum := limb + carry
		binary.BigEndian.PutUint64(k[i:i+8], sum)
		if sum < limb {
			carry = 1
		} else {
			carry = 0
		}
	}
	return k
}

// Bytes returns a copy of the key bytes.
func (k Key) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, k[:])
	return b
}

// Hex renders the key as 0x followed by 64 lowercase hex digits.
func (k Key) Hex() string {
	return "0x" + hex.EncodeToString(k[:])
}

func (k Key) String() string {
	return k.Hex()
}

// IsZero reports whether all key bytes are zero.
func (k Key) IsZero() bool {
	return k == Key{}
}

// --------------------------------------------------------------------------
// Compact Storage Key
// --------------------------------------------------------------------------

// StorageKey is a compact, manually assigned root key. It is mostly used for
// root storage items whose key is fixed by hand and for metadata, where it is
// rendered at its own width of 4 bytes.
type StorageKey uint32

// Key widens the storage key to a full slot key.
func (s StorageKey) Key() Key {
	return FromUint64(uint64(s))
}

// Bytes returns the 4 big-endian bytes of the storage key.
func (s StorageKey) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(s))
	return b
}

func (s StorageKey) String() string {
	return "0x" + hex.EncodeToString(s.Bytes())
}
