package key

// Ptr is a cursor over a contiguous run of keys. Values are laid out by
// repeatedly taking the current key and advancing by the footprint of the
// value that was placed there.
//
// A Ptr belongs to exactly one root operation (pull, push, clear, allocate or
// layout) and must not be shared between goroutines.
type Ptr struct {
	key Key
}

// NewPtr creates a cursor positioned at root.
func NewPtr(root Key) *Ptr {
	return &Ptr{key: root}
}

// Key returns the current key without advancing.
func (p *Ptr) Key() Key {
	return p.key
}

// Next returns the current key and advances the cursor by footprint slots.
func (p *Ptr) Next(footprint uint64) Key {
	current := p.key
	p.key = p.key.Add(footprint)
	return current
}

// Advance moves the cursor forward by n slots.
func (p *Ptr) Advance(n uint64) {
	p.key = p.key.Add(n)
}
