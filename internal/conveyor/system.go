package conveyor

import (
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
	"github.com/Iron-Ham/crossconveyor/internal/event"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

// Option configures a System.
type Option func(*options)

type options struct {
	logger         *logging.Logger
	bus            *event.Bus
	serializeBelts bool
}

// WithLogger sets the logger used for setup and rejected feeds.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventBus publishes belt.advanced, intersection.published and
// feed.rejected events to bus.
func WithEventBus(bus *event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithSerializedBelts gives every belt its own mutex so concurrent feeds on the
// same belt are safe. Without it, callers must not feed one belt from two
// goroutines at once.
func WithSerializedBelts(on bool) Option {
	return func(o *options) {
		o.serializeBelts = on
	}
}

// System is the registry of belts and intersections built from a Topology.
// Its maps are never modified after New returns.
type System[T any] struct {
	topology      Topology
	belts         map[string]*Belt[T]
	intersections map[int]*Intersection[T]
	crossings     *Crossings[T]

	logger *logging.Logger
	bus    *event.Bus
}

// New validates topology and builds a System from it.
func New[T any](topology Topology, opts ...Option) (*System[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NopLogger()
	}

	if err := topology.Validate(); err != nil {
		o.logger.Error("invalid topology", "error", err.Error())
		return nil, errors.Wrap(err, "invalid topology")
	}

	s := &System[T]{
		topology:      topology.Clone(),
		belts:         make(map[string]*Belt[T], len(topology.Belts)),
		intersections: make(map[int]*Intersection[T], len(topology.Intersections)),
		logger:        o.logger,
		bus:           o.bus,
	}

	xs := make([]*Intersection[T], 0, len(topology.Intersections))
	for _, p := range topology.Intersections {
		x := NewIntersection[T](p)
		s.intersections[p] = x
		xs = append(xs, x)
	}
	crossings, err := NewCrossings(xs...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid topology")
	}
	s.crossings = crossings

	for _, bs := range topology.Belts {
		b, err := NewBelt[T](bs.Name, bs.Capacity)
		if err != nil {
			return nil, errors.Wrap(err, "invalid topology")
		}
		if o.serializeBelts {
			b.serial = &sync.Mutex{}
		}
		s.belts[bs.Name] = b
		s.logger.WithBelt(bs.Name).Debug("belt registered", "capacity", bs.Capacity)
	}

	s.logger.Info("conveyor system ready",
		"belts", len(s.belts),
		"intersections", crossings.Positions(),
		"serialized_belts", o.serializeBelts)
	return s, nil
}

// Feed advances the named belt by one item and returns the evicted item, if
// any. An unknown name fails with a NotFoundError and changes nothing.
func (s *System[T]) Feed(name string, value T) (T, bool, error) {
	var zero T

	b, ok := s.belts[name]
	if !ok {
		err := errors.NewNotFoundError("belt", name).WithCause(errors.ErrBeltNotFound)
		s.logger.WithBelt(name).Warn("feed rejected", "error", err.Error())
		if s.bus != nil && s.bus.HasSubscribers(event.TypeFeedRejected) {
			s.bus.Publish(event.NewFeedRejectedEvent(name, err.Error()))
		}
		return zero, false, err
	}

	if s.bus == nil {
		return b.Advance(value, s.crossings)
	}

	var published []publication[T]
	var observe func(int, Slot[T])
	if s.bus.HasSubscribers(event.TypeIntersectionPublished) {
		published = make([]publication[T], 0, s.crossings.Len())
		observe = func(position int, slot Slot[T]) {
			published = append(published, publication[T]{position, slot})
		}
	}

	evicted, err := b.advance(value, s.crossings, observe)
	if err != nil {
		return zero, false, err
	}

	for _, pub := range published {
		s.bus.Publish(event.NewIntersectionPublishedEvent(name, pub.position, valueOrNil(pub.slot), pub.slot.Present))
	}
	if s.bus.HasSubscribers(event.TypeBeltAdvanced) {
		s.bus.Publish(event.NewBeltAdvancedEvent(name, value, valueOrNil(evicted), evicted.Present))
	}
	return evicted.Value, evicted.Present, nil
}

// publication is one value a belt published on release, recorded for events.
type publication[T any] struct {
	position int
	slot     Slot[T]
}

func valueOrNil[T any](s Slot[T]) any {
	if !s.Present {
		return nil
	}
	return s.Value
}

// IntersectionValue returns the last value published at position.
func (s *System[T]) IntersectionValue(position int) (T, bool, error) {
	x, ok := s.intersections[position]
	if !ok {
		var zero T
		return zero, false, errors.NewNotFoundError("intersection", strconv.Itoa(position)).
			WithCause(errors.ErrIntersectionNotFound)
	}
	v, present := x.Value()
	return v, present, nil
}

// Belt returns the named belt for inspection.
func (s *System[T]) Belt(name string) (*Belt[T], bool) {
	b, ok := s.belts[name]
	return b, ok
}

// BeltNames returns every belt name, sorted.
func (s *System[T]) BeltNames() []string {
	return slices.Sorted(maps.Keys(s.belts))
}

// Positions returns every intersection position, ascending.
func (s *System[T]) Positions() []int {
	return s.crossings.Positions()
}

// Topology returns a copy of the topology the system was built from.
func (s *System[T]) Topology() Topology {
	return s.topology.Clone()
}
