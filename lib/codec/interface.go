package codec

import (
	"fmt"
	"sort"
	"strings"
)

// Codec is the interface for all packed value encodings.
// Encode turns a Go value into the bytes stored in one slot, Decode does the reverse.
// Decode must fail on input that is not a valid encoding for the target type.
type Codec interface {
	// Name returns the identifier of the encoding (e.g. "cbor")
	Name() string
	// Encode serializes v into a byte array
	Encode(v any) ([]byte, error)
	// Decode deserializes b into the value pointed to by v
	Decode(b []byte, v any) error
}

// Default is the name of the codec used when none is configured
const Default = "cbor"

// registry maps codec names to constructors
var registry = map[string]func() Codec{
	"cbor": NewCBORCodec,
	"json": NewJSONCodec,
	"gob":  NewGOBCodec,
}

// ByName returns a new codec for the given name (case insensitive)
func ByName(name string) (Codec, error) {
	if name == "" {
		name = Default
	}
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("invalid codec %s (expected one of: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns the names of all available codecs in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
