package storage

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/kvlayout/lib/key"
)

// Error kinds. Use errors.Is to test for them.
var (
	// ErrNotFound reports that a slot that had to be read holds no value.
	ErrNotFound = errors.New("storage entry was empty")
	// ErrDecodeFailure reports that the bytes of a slot are malformed for the requested type.
	ErrDecodeFailure = errors.New("could not decode stored entry")
	// ErrEncodeFailure reports that a value could not be encoded by the codec.
	ErrEncodeFailure = errors.New("could not encode entry")
	// ErrInitializerFailure reports that default construction or an on-call initializer failed.
	ErrInitializerFailure = errors.New("initializer failed")
	// ErrStore reports that the slot store itself failed.
	ErrStore = errors.New("store failure")
)

// Error is the error returned by all persistence operations.
type Error struct {
	Kind error   // one of the Err* kinds
	Key  key.Key // the slot the operation failed on
	Err  error   // the cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v at %s", e.Kind, e.Key)
	}
	return fmt.Sprintf("%v at %s: %v", e.Kind, e.Key, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, at key.Key, cause error) *Error {
	return &Error{Kind: kind, Key: at, Err: cause}
}

// IsNotFound reports whether err is an ErrNotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
