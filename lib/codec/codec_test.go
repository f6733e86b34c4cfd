package codec

import (
	"bytes"
	"reflect"
	"testing"
)

// testCodecs is a map of codec name to factory function
var testCodecs = map[string]func() Codec{
	"CBOR": NewCBORCodec,
	"JSON": NewJSONCodec,
	"GOB":  NewGOBCodec,
}

type account struct {
	Owner   string
	Balance uint64
	Frozen  bool
	Tags    []string
}

// testValues returns pairs of (value, pointer to a fresh zero value of the same type)
func testValues() []struct {
	name  string
	value any
	zero  func() any
} {
	return []struct {
		name  string
		value any
		zero  func() any
	}{
		{"uint32", uint32(456), func() any { return new(uint32) }},
		{"int32", int32(-7), func() any { return new(int32) }},
		{"bool", true, func() any { return new(bool) }},
		{"string", "ink storage", func() any { return new(string) }},
		{"bytes", []byte{1, 2, 3}, func() any { return new([]byte) }},
		{"struct", account{Owner: "alice", Balance: 100, Tags: []string{"a", "b"}}, func() any { return new(account) }},
		{"map", map[string]uint64{"alice": 1, "bob": 2}, func() any { return new(map[string]uint64) }},
	}
}

// TestCodecRoundTrip tests that values can be encoded and decoded correctly
func TestCodecRoundTrip(t *testing.T) {
	for codecName, factory := range testCodecs {
		c := factory()
		for _, tt := range testValues() {
			t.Run(codecName+"/"+tt.name, func(t *testing.T) {
				data, err := c.Encode(tt.value)
				if err != nil {
					t.Fatalf("Encode() error = %v", err)
				}

				target := tt.zero()
				if err := c.Decode(data, target); err != nil {
					t.Fatalf("Decode() error = %v", err)
				}

				got := reflect.ValueOf(target).Elem().Interface()
				if !reflect.DeepEqual(got, tt.value) {
					t.Errorf("round trip mismatch: got %#v, want %#v", got, tt.value)
				}
			})
		}
	}
}

// TestCodecRejectsGarbage tests that malformed input is reported as an error
func TestCodecRejectsGarbage(t *testing.T) {
	garbage := map[string][]byte{
		"CBOR": {0xff, 0xff, 0xff},
		"JSON": []byte("{not json"),
		"GOB":  []byte("\x03garbage"),
	}

	for codecName, factory := range testCodecs {
		t.Run(codecName, func(t *testing.T) {
			var v uint32
			if err := factory().Decode(garbage[codecName], &v); err == nil {
				t.Errorf("expected decode error for malformed input")
			}
		})
	}
}

// TestCBORDeterministic tests that equal maps always encode to the same bytes
func TestCBORDeterministic(t *testing.T) {
	c := NewCBORCodec()

	first, err := c.Encode(map[string]uint64{"a": 1, "b": 2, "c": 3, "d": 4})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		again, _ := c.Encode(map[string]uint64{"d": 4, "c": 3, "b": 2, "a": 1})
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding is not deterministic: %x != %x", first, again)
		}
	}
}

// TestCBORTypeMismatch tests that a value of the wrong type is not silently accepted
func TestCBORTypeMismatch(t *testing.T) {
	c := NewCBORCodec()
	data, _ := c.Encode("text")

	var v uint32
	if err := c.Decode(data, &v); err == nil {
		t.Errorf("expected error decoding a string into uint32")
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "cbor", false},
		{"cbor", "cbor", false},
		{"JSON", "json", false},
		{"gob", "gob", false},
		{"binary", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && c.Name() != tt.want {
				t.Errorf("ByName(%q).Name() = %q, want %q", tt.name, c.Name(), tt.want)
			}
		})
	}

	if names := Names(); !reflect.DeepEqual(names, []string{"cbor", "gob", "json"}) {
		t.Errorf("Names() = %v", names)
	}
}

func BenchmarkCodecs(b *testing.B) {
	value := account{Owner: "alice", Balance: 1 << 40, Tags: []string{"x", "y", "z"}}

	for codecName, factory := range testCodecs {
		c := factory()
		b.Run(codecName+"/Encode", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := c.Encode(value); err != nil {
					b.Fatal(err)
				}
			}
		})
		b.Run(codecName+"/Decode", func(b *testing.B) {
			data, _ := c.Encode(value)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var v account
				if err := c.Decode(data, &v); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
