package layout

import (
	"crypto/sha256"
	"fmt"

	"github.com/ValentinKolb/kvlayout/lib/key"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashKey derives the storage key of one collection element:
// hasher(prefix ‖ root ‖ encodedKey ‖ postfix).
//
// It panics if the strategy names an unknown hasher.
func (s HashingStrategy) HashKey(root key.Key, encodedKey []byte) key.Key {
	input := make([]byte, 0, len(s.Prefix)+key.Size+len(encodedKey)+len(s.Postfix))
	input = append(input, s.Prefix...)
	input = append(input, root[:]...)
	input = append(input, encodedKey...)
	input = append(input, s.Postfix...)

	switch s.Hasher {
	case Blake2x256:
		return blake2b.Sum256(input)
	case Sha2x256:
		return sha256.Sum256(input)
	case Keccak256:
		var out key.Key
		h := sha3.NewLegacyKeccak256()
		h.Write(input)
		h.Sum(out[:0])
		return out
	default:
		panic(fmt.Sprintf("layout: unknown hasher %d", uint8(s.Hasher)))
	}
}
