package storage

import (
	"fmt"

	"github.com/ValentinKolb/kvlayout/lib/key"
)

// PullOrInit returns the value stored at at.
//
// If *T implements OnCallInitializer and the slot is empty or cannot be decoded, the
// value is initialized instead: the default value of T (see Defaulter) is passed to
// Initialize and returned. Without the capability an empty slot yields ErrNotFound and a malformed
// one ErrDecodeFailure.
func PullOrInit[T any](env *Env, at key.Key) (T, error) {
	var v T
	_, canInit := any(&v).(OnCallInitializer)

	raw, found, err := env.Store.Get(at)
	if err != nil {
		return v, newError(ErrStore, at, err)
	}

	var decodeErr error
	if found {
		var decoded T
		if decodeErr = env.Codec.Decode(raw, &decoded); decodeErr == nil {
			return decoded, nil
		}
	}

	if !canInit {
		if !found {
			return v, newError(ErrNotFound, at, nil)
		}
		return v, newError(ErrDecodeFailure, at, decodeErr)
	}

	if decodeErr != nil {
		log.Warningf("could not decode entry at %s, initializing: %v", at, decodeErr)
	} else {
		log.Debugf("entry at %s is empty, initializing", at)
	}
	v, err = newDefault[T](at)
	if err != nil {
		return v, err
	}
	if err := any(&v).(OnCallInitializer).Initialize(); err != nil {
		return v, newError(ErrInitializerFailure, at, err)
	}
	return v, nil
}

// MustPullOrInit is like PullOrInit but panics on error. It is meant for entry points
// where a missing entry means the whole call has to be aborted.
func MustPullOrInit[T any](env *Env, at key.Key) T {
	v, err := PullOrInit[T](env, at)
	if err != nil {
		panic(fmt.Sprintf("pull or init: %v", err))
	}
	return v
}
