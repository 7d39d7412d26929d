package conveyor

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

// Crossings is the fixed set of intersections every advance must lock, held in
// ascending position order. It is built once and never changes, so all belts
// share one global lock order.
type Crossings[T any] struct {
	ordered []*Intersection[T]
}

// NewCrossings orders xs by position. Negative or duplicate positions are
// rejected.
func NewCrossings[T any](xs ...*Intersection[T]) (*Crossings[T], error) {
	ordered := slices.Clone(xs)
	slices.SortFunc(ordered, func(a, b *Intersection[T]) int {
		return cmp.Compare(a.position, b.position)
	})

	for i, x := range ordered {
		if x.position < 0 {
			return nil, errors.NewValidationError("intersection position must be non-negative").
				WithField("intersections").
				WithValue(x.position)
		}
		if i > 0 && ordered[i-1].position == x.position {
			return nil, errors.NewAlreadyExistsError("intersection", strconv.Itoa(x.position)).
				WithCause(errors.ErrDuplicateIntersection)
		}
	}
	return &Crossings[T]{ordered: ordered}, nil
}

// Len returns the number of intersections. A nil Crossings is empty.
func (c *Crossings[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ordered)
}

// Positions returns the intersection positions in ascending order.
func (c *Crossings[T]) Positions() []int {
	positions := make([]int, c.Len())
	for i := range positions {
		positions[i] = c.ordered[i].position
	}
	return positions
}

// MaxPosition returns the highest position, or -1 when there are none.
func (c *Crossings[T]) MaxPosition() int {
	if c.Len() == 0 {
		return -1
	}
	return c.ordered[len(c.ordered)-1].position
}

// acquire locks every intersection low to high and hands each to pull while
// its guard is held.
func (c *Crossings[T]) acquire(pull func(*Intersection[T])) {
	for i := 0; i < c.Len(); i++ {
		x := c.ordered[i]
		x.guard.Lock()
		pull(x)
	}
}

// release hands each intersection to push high to low, then unlocks it.
// It must follow a matching acquire on the same goroutine.
func (c *Crossings[T]) release(push func(*Intersection[T])) {
	for i := c.Len() - 1; i >= 0; i-- {
		x := c.ordered[i]
		push(x)
		x.guard.Unlock()
	}
}
