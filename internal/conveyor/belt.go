package conveyor

import (
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

// Belt is a fixed-capacity shift register of slots. Only its own Advance
// mutates it.
type Belt[T any] struct {
	name  string
	slots []Slot[T] // len(slots) is the capacity and never changes

	// serial is non-nil when the owning system serializes advances per belt.
	serial *sync.Mutex

	fed atomic.Uint64
}

// NewBelt returns an empty belt. capacity must be non-negative.
func NewBelt[T any](name string, capacity int) (*Belt[T], error) {
	if capacity < 0 {
		return nil, errors.NewValidationError("belt capacity must be non-negative").
			WithField("belts." + name + ".capacity").
			WithValue(capacity)
	}
	return &Belt[T]{
		name:  name,
		slots: make([]Slot[T], capacity),
	}, nil
}

// Name returns the belt's registered name.
func (b *Belt[T]) Name() string { return b.name }

// Capacity returns the number of slots.
func (b *Belt[T]) Capacity() int { return len(b.slots) }

// Fed returns how many advances have completed on this belt.
func (b *Belt[T]) Fed() uint64 { return b.fed.Load() }

// Slots returns a copy of the belt, index 0 being the input end. Unless the
// belt is serialized, the copy can tear against a concurrent Advance.
func (b *Belt[T]) Slots() []Slot[T] {
	if b.serial != nil {
		b.serial.Lock()
		defer b.serial.Unlock()
	}
	out := make([]Slot[T], len(b.slots))
	copy(out, b.slots)
	return out
}

// Advance feeds value into the belt and returns the item pushed off the output
// end, if any. crossings must be the full intersection set of the system; every
// position in it has to index into this belt, otherwise Advance fails with a
// BoundsError before taking any lock or touching any slot.
func (b *Belt[T]) Advance(value T, crossings *Crossings[T]) (T, bool, error) {
	evicted, err := b.advance(value, crossings, nil)
	return evicted.Value, evicted.Present, err
}

// advance is Advance with an optional observer called, under each guard, with
// the value published at that position.
func (b *Belt[T]) advance(value T, crossings *Crossings[T], published func(position int, s Slot[T])) (Slot[T], error) {
	if highest := crossings.MaxPosition(); highest >= len(b.slots) {
		return Slot[T]{}, errors.NewBoundsError(b.name, highest, len(b.slots))
	}

	if b.serial != nil {
		b.serial.Lock()
		defer b.serial.Unlock()
	}

	crossings.acquire(func(x *Intersection[T]) {
		b.slots[x.position] = x.published
	})

	evicted := b.shift(value)

	crossings.release(func(x *Intersection[T]) {
		x.published = b.slots[x.position]
		if published != nil {
			published(x.position, x.published)
		}
	})

	b.fed.Add(1)
	return evicted, nil
}

// shift inserts value at index 0 and returns what fell off the end. A
// zero-capacity belt passes value straight through.
func (b *Belt[T]) shift(value T) Slot[T] {
	in := Slot[T]{Value: value, Present: true}
	if len(b.slots) == 0 {
		return in
	}

	out := b.slots[len(b.slots)-1]
	copy(b.slots[1:], b.slots[:len(b.slots)-1])
	b.slots[0] = in
	return out
}
