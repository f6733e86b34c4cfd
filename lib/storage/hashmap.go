package storage

import (
	"github.com/ValentinKolb/kvlayout/lib/key"
	"github.com/ValentinKolb/kvlayout/lib/metadata/layout"
)

// HashMap is an unbounded collection. It occupies a single slot (the root), every
// entry lives at a key derived from the root and the encoded entry key through the
// hashing strategy. The root slot holds the packed list of known keys, which is what
// allows ClearSpread to remove all entries.
//
// A map is bound to a store once it was pulled, pushed or allocated. Operations on a
// bound map are written through to the store immediately, operations on an unbound
// map are buffered until the first push.
type HashMap[K comparable, V any] struct {
	strategy layout.HashingStrategy

	env   *Env
	root  key.Key
	bound bool

	keys    []K
	index   map[K]int
	pending map[K]V
}

// NewHashMap creates an empty, unbound map.
func NewHashMap[K comparable, V any](strategy layout.HashingStrategy) *HashMap[K, V] {
	return &HashMap[K, V]{
		strategy: strategy,
		index:    make(map[K]int),
		pending:  make(map[K]V),
	}
}

// Strategy returns the hashing strategy used to derive entry keys.
func (m *HashMap[K, V]) Strategy() layout.HashingStrategy {
	return m.strategy
}

// --------------------------------------------------------------------------
// Map operations
// --------------------------------------------------------------------------

// Len returns the number of entries.
func (m *HashMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the entry keys in insertion order.
func (m *HashMap[K, V]) Keys() []K {
	return append([]K(nil), m.keys...)
}

// Contains reports whether k has an entry.
func (m *HashMap[K, V]) Contains(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Get returns the entry for k.
func (m *HashMap[K, V]) Get(k K) (V, bool, error) {
	var zero V
	if !m.Contains(k) {
		return zero, false, nil
	}
	if !m.bound {
		return m.pending[k], true, nil
	}
	at, err := m.entryKey(m.env, m.root, k)
	if err != nil {
		return zero, false, err
	}
	var entry Value[V]
	if err := entry.PullPacked(m.env, at); err != nil {
		return zero, false, err
	}
	return entry.V, true, nil
}

// Insert sets the entry for k to v.
func (m *HashMap[K, V]) Insert(k K, v V) error {
	if !m.bound {
		m.pending[k] = v
		m.addKey(k)
		return nil
	}
	at, err := m.entryKey(m.env, m.root, k)
	if err != nil {
		return err
	}
	if err := NewValue(v).PushPacked(m.env, at); err != nil {
		return err
	}
	if m.Contains(k) {
		return nil
	}
	m.addKey(k)
	return m.writeKeys()
}

// Remove deletes the entry for k and reports whether it existed.
func (m *HashMap[K, V]) Remove(k K) (bool, error) {
	if !m.Contains(k) {
		return false, nil
	}
	if !m.bound {
		delete(m.pending, k)
		m.removeKey(k)
		return true, nil
	}
	at, err := m.entryKey(m.env, m.root, k)
	if err != nil {
		return false, err
	}
	if err := clearSlot(m.env, at); err != nil {
		return false, err
	}
	m.removeKey(k)
	return true, m.writeKeys()
}

// --------------------------------------------------------------------------
// Spread
// --------------------------------------------------------------------------

func (*HashMap[K, V]) Footprint() uint64 { return 1 }

func (*HashMap[K, V]) RequiresDeepCleanUp() bool { return true }

func (m *HashMap[K, V]) PullSpread(env *Env, ptr *key.Ptr) error {
	root := ptr.Next(1)
	var stored Value[[]K]
	if err := stored.PullPacked(env, root); err != nil {
		return err
	}
	m.bind(env, root)
	m.setKeys(stored.V)
	return nil
}

// PushSpread writes all buffered entries and the key list. A map that is bound to
// another root is copied.
func (m *HashMap[K, V]) PushSpread(env *Env, ptr *key.Ptr) error {
	root := ptr.Next(1)
	if m.bound && (m.env != env || m.root != root) {
		log.Debugf("moving hash map from %s to %s", m.root, root)
		if err := m.detach(); err != nil {
			return err
		}
	}
	for _, k := range m.keys {
		v, ok := m.pending[k]
		if !ok {
			continue
		}
		at, err := m.entryKey(env, root, k)
		if err != nil {
			return err
		}
		if err := NewValue(v).PushPacked(env, at); err != nil {
			return err
		}
	}
	m.bind(env, root)
	return m.writeKeys()
}

// ClearSpread removes every entry listed in the stored key list and the root slot.
// The map is empty and unbound afterwards.
func (m *HashMap[K, V]) ClearSpread(env *Env, ptr *key.Ptr) error {
	root := ptr.Next(1)
	var stored Value[[]K]
	if err := stored.PullPacked(env, root); err != nil && !IsNotFound(err) {
		return err
	}
	for _, k := range stored.V {
		at, err := m.entryKey(env, root, k)
		if err != nil {
			return err
		}
		if err := clearSlot(env, at); err != nil {
			return err
		}
	}
	if err := clearSlot(env, root); err != nil {
		return err
	}
	m.bound = false
	m.env = nil
	m.pending = make(map[K]V)
	m.setKeys(nil)
	return nil
}

func (m *HashMap[K, V]) AllocateSpread(env *Env, ptr *key.Ptr) error {
	m.bind(env, ptr.Next(1))
	m.setKeys(nil)
	return nil
}

func (m *HashMap[K, V]) Layout(ptr *key.Ptr) layout.Layout {
	root := layout.KeyOf(ptr.Next(1))
	return layout.NewHash(root, m.strategy, layout.CellOf[V](root))
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (m *HashMap[K, V]) entryKey(env *Env, root key.Key, k K) (key.Key, error) {
	encoded, err := env.Codec.Encode(k)
	if err != nil {
		return key.Key{}, newError(ErrEncodeFailure, root, err)
	}
	return m.strategy.HashKey(root, encoded), nil
}

func (m *HashMap[K, V]) bind(env *Env, root key.Key) {
	m.env = env
	m.root = root
	m.bound = true
	m.pending = make(map[K]V)
}

// detach loads all entries into the buffer and unbinds the map.
func (m *HashMap[K, V]) detach() error {
	pending := make(map[K]V, len(m.keys))
	for _, k := range m.keys {
		v, _, err := m.Get(k)
		if err != nil {
			return err
		}
		pending[k] = v
	}
	m.bound = false
	m.env = nil
	m.pending = pending
	return nil
}

func (m *HashMap[K, V]) writeKeys() error {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return NewValue(keys).PushPacked(m.env, m.root)
}

func (m *HashMap[K, V]) setKeys(keys []K) {
	m.keys = nil
	m.index = make(map[K]int, len(keys))
	for _, k := range keys {
		m.addKey(k)
	}
}

func (m *HashMap[K, V]) addKey(k K) {
	if _, ok := m.index[k]; ok {
		return
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
}

func (m *HashMap[K, V]) removeKey(k K) {
	i, ok := m.index[k]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}
