package layout

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CryptoHasher identifies the hash function of a hashing strategy.
type CryptoHasher uint8

const (
	Blake2x256 CryptoHasher = iota
	Sha2x256
	Keccak256
)

var hasherNames = map[CryptoHasher]string{
	Blake2x256: "Blake2x256",
	Sha2x256:   "Sha2x256",
	Keccak256:  "Keccak256",
}

func (h CryptoHasher) String() string {
	if name, ok := hasherNames[h]; ok {
		return name
	}
	return fmt.Sprintf("CryptoHasher(%d)", uint8(h))
}

// ParseCryptoHasher is the inverse of CryptoHasher.String.
func ParseCryptoHasher(s string) (CryptoHasher, error) {
	for h, name := range hasherNames {
		if name == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown hasher %q", s)
}

func (h CryptoHasher) MarshalJSON() ([]byte, error) {
	name, ok := hasherNames[h]
	if !ok {
		return nil, fmt.Errorf("unknown hasher %d", uint8(h))
	}
	return json.Marshal(name)
}

func (h *CryptoHasher) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCryptoHasher(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashingStrategy describes how the keys of a hashed collection are derived:
// key = hasher(prefix ‖ root key ‖ encoded element key ‖ postfix).
type HashingStrategy struct {
	Hasher  CryptoHasher
	Prefix  []byte
	Postfix []byte
}

// NewHashingStrategy creates a strategy. The byte slices are copied.
func NewHashingStrategy(hasher CryptoHasher, prefix, postfix []byte) HashingStrategy {
	return HashingStrategy{
		Hasher:  hasher,
		Prefix:  append([]byte(nil), prefix...),
		Postfix: append([]byte(nil), postfix...),
	}
}

// hexBytes renders as 0x-hex, the empty byte string as "".
type hexBytes []byte

func (b hexBytes) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal("0x" + hex.EncodeToString(b))
}

func (b *hexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*b = nil
		return nil
	}
	if len(s) < 2 || s[:2] != "0x" {
		return fmt.Errorf("hex string %q has no 0x prefix", s)
	}
	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// strategyJSON fixes the field order: hasher, prefix, postfix.
type strategyJSON struct {
	Hasher  CryptoHasher `json:"hasher"`
	Prefix  hexBytes     `json:"prefix"`
	Postfix hexBytes     `json:"postfix"`
}

func (s HashingStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(strategyJSON{Hasher: s.Hasher, Prefix: s.Prefix, Postfix: s.Postfix})
}

func (s *HashingStrategy) UnmarshalJSON(data []byte) error {
	var raw strategyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = HashingStrategy{Hasher: raw.Hasher, Prefix: raw.Prefix, Postfix: raw.Postfix}
	return nil
}
