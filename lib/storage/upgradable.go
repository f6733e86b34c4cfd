package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// InitStatus tells an Upgradable whether its value is known to exist in storage.
type InitStatus uint8

const (
	// NotInitialized values are allocated instead of pulled when their first slot is empty.
	NotInitialized InitStatus = iota
	// Initialized values must exist in storage.
	Initialized
)

func (s InitStatus) String() string {
	if s == Initialized {
		return "Initialized"
	}
	return "NotInitialized"
}

// Upgradable wraps a value that may be added to an existing storage tree later.
// The status lives in memory only: it is never stored, never counted in the
// footprint and never part of the layout.
type Upgradable[T Storable] struct {
	Inner  T
	status InitStatus
}

// NewUpgradable wraps inner with the given status.
func NewUpgradable[T Storable](inner T, status InitStatus) *Upgradable[T] {
	return &Upgradable[T]{Inner: inner, status: status}
}

// Status returns the init status.
func (u *Upgradable[T]) Status() InitStatus {
	return u.status
}

func (u *Upgradable[T]) Footprint() uint64 { return u.Inner.Footprint() }

func (u *Upgradable[T]) RequiresDeepCleanUp() bool { return u.Inner.RequiresDeepCleanUp() }

// PullSpread pulls the inner value. A NotInitialized value whose first slot is empty
// is allocated instead and becomes Initialized on the next push.
func (u *Upgradable[T]) PullSpread(env *Env, ptr *key.Ptr) error {
	if u.status == NotInitialized {
		exists, err := env.Store.Has(ptr.Key())
		if err != nil {
			return newError(ErrStore, ptr.Key(), err)
		}
		if !exists {
			log.Debugf("upgradable value at %s not initialized, allocating", ptr.Key())
			return u.Inner.AllocateSpread(env, ptr)
		}
	}
	return u.Inner.PullSpread(env, ptr)
}

func (u *Upgradable[T]) PushSpread(env *Env, ptr *key.Ptr) error {
	if err := u.Inner.PushSpread(env, ptr); err != nil {
		return err
	}
	u.status = Initialized
	return nil
}

func (u *Upgradable[T]) ClearSpread(env *Env, ptr *key.Ptr) error {
	return u.Inner.ClearSpread(env, ptr)
}

func (u *Upgradable[T]) AllocateSpread(env *Env, ptr *key.Ptr) error {
	return u.Inner.AllocateSpread(env, ptr)
}

func (u *Upgradable[T]) Layout(ptr *key.Ptr) layout.Layout {
	return u.Inner.Layout(ptr)
}
