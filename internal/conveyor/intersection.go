package conveyor

import "sync"

// Slot is one position on a belt. Present is false until an item occupies it.
type Slot[T any] struct {
	Value   T
	Present bool
}

// Intersection is a slot position shared by every belt in a system.
// published and guard are only touched by a belt between its acquire and
// release of this intersection, or by Value.
type Intersection[T any] struct {
	position int

	guard     sync.Mutex
	published Slot[T]
}

// NewIntersection returns an empty intersection at position.
func NewIntersection[T any](position int) *Intersection[T] {
	return &Intersection[T]{position: position}
}

// Position returns the slot index, counted from the input end, that this
// intersection occupies on every belt.
func (x *Intersection[T]) Position() int {
	return x.position
}

// Value returns the last value published here. The read holds the guard but is
// not otherwise ordered against concurrent feeds.
func (x *Intersection[T]) Value() (T, bool) {
	x.guard.Lock()
	defer x.guard.Unlock()
	return x.published.Value, x.published.Present
}
