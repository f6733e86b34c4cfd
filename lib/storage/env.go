package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/codec"
	"github.com/ValentinKolb/kvlayout/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("storage")

// Env bundles the collaborators of one persistence call: the slot store that holds
// the bytes and the codec that turns packed values into bytes.
//
// The codec must be canonical (equal values encode to equal bytes), otherwise keys
// derived from encoded values are not stable.
type Env struct {
	Store store.Store
	Codec codec.Codec
}

// NewEnv creates an environment. A nil codec selects the default codec.
func NewEnv(s store.Store, c codec.Codec) *Env {
	if c == nil {
		c, _ = codec.ByName(codec.Default)
	}
	return &Env{Store: s, Codec: c}
}
