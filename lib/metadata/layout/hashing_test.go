package layout

import (
	"encoding/hex"
	"testing"

	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/stretchr/testify/assert"
)

func TestHashKey(t *testing.T) {
	// empty prefix, postfix and element key: the hashed input is the 32 zero bytes of the root

	tests := []struct {
		name   string
		hasher CryptoHasher
		want   string
	}{
		// blake2b-256(32 zero bytes)
		{"blake2", Blake2x256, "89eb0d6a8a691dae2cd15ed0369931ce0a949ecafa5c3f93f8121833646e15c3"},
		// sha256(32 zero bytes)
		{"sha2", Sha2x256, "66687aadf862bd776c8fc18b8e9f8e20089714856ee233b3902a591d0d5f2925"},
		// keccak256(32 zero bytes)
		{"keccak", Keccak256, "290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewHashingStrategy(tt.hasher, nil, nil)
			got := s.HashKey(key.Key{}, nil)
			assert.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestHashKeyInputs(t *testing.T) {
	root := key.FromUint64(567)
	base := NewHashingStrategy(Blake2x256, []byte("p"), []byte("q"))

	a := base.HashKey(root, []byte{1})
	assert.Equal(t, a, base.HashKey(root, []byte{1}), "derivation must be deterministic")
	assert.NotEqual(t, a, base.HashKey(root, []byte{2}), "element key must matter")
	assert.NotEqual(t, a, base.HashKey(root.Add(1), []byte{1}), "root key must matter")
	assert.NotEqual(t, a, NewHashingStrategy(Blake2x256, []byte("x"), []byte("q")).HashKey(root, []byte{1}), "prefix must matter")
	assert.NotEqual(t, a, NewHashingStrategy(Blake2x256, []byte("p"), []byte("x")).HashKey(root, []byte{1}), "postfix must matter")
	assert.NotEqual(t, a, NewHashingStrategy(Sha2x256, []byte("p"), []byte("q")).HashKey(root, []byte{1}), "hasher must matter")
}

func TestHashKeyUnknownHasher(t *testing.T) {
	assert.Panics(t, func() {
		NewHashingStrategy(CryptoHasher(42), nil, nil).HashKey(key.Key{}, nil)
	})
}
