package layout

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/kvlayout/lib/key"
)

// LayoutKey is a slot key as it appears in metadata. It keeps the width of the key
// it was made from, so a key.Key renders as 32 bytes and a key.StorageKey as 4.
type LayoutKey struct {
	b string
}

// KeyOf converts a slot key.
func KeyOf(k key.Key) LayoutKey {
	return LayoutKey{b: string(k[:])}
}

// StorageKeyOf converts a compact storage key.
func StorageKeyOf(k key.StorageKey) LayoutKey {
	return LayoutKey{b: string(k.Bytes())}
}

// Bytes returns a copy of the key bytes.
func (k LayoutKey) Bytes() []byte {
	return []byte(k.b)
}

// Key widens the layout key to a slot key.
func (k LayoutKey) Key() (key.Key, error) {
	return key.FromBytes([]byte(k.b))
}

// String renders the key as 0x followed by lowercase hex digits.
func (k LayoutKey) String() string {
	return "0x" + hex.EncodeToString([]byte(k.b))
}

func (k LayoutKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LayoutKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("layout key %q has no 0x prefix", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return fmt.Errorf("invalid layout key %q: %w", s, err)
	}
	k.b = string(b)
	return nil
}
