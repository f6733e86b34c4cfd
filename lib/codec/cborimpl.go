package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// NewCBORCodec creates a new codec using deterministic CBOR encoding (RFC 8949 core
// deterministic encoding). Equal values always produce equal bytes, map keys included.
func NewCBORCodec() Codec {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err) // static options, can only fail on a programming error
	}
	decMode, err := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return &cborCodecImpl{enc: encMode, dec: decMode}
}

// cborCodecImpl implements the Codec interface using cbor encoding
type cborCodecImpl struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.Codec)
// --------------------------------------------------------------------------

func (c *cborCodecImpl) Name() string {
	return "cbor"
}

func (c *cborCodecImpl) Encode(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *cborCodecImpl) Decode(b []byte, v any) error {
	return c.dec.Unmarshal(b, v)
}
