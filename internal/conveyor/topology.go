package conveyor

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

// BeltSpec registers one belt by unique name with a fixed capacity.
type BeltSpec struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// Topology is the immutable setup of a system: its belts and the positions of
// its intersections. The zero value is an empty topology.
type Topology struct {
	Belts         []BeltSpec `json:"belts" yaml:"belts"`
	Intersections []int      `json:"intersections" yaml:"intersections"`
}

// WithBelt returns a copy of t with one more belt.
func (t Topology) WithBelt(name string, capacity int) Topology {
	t.Belts = append(slices.Clip(t.Belts), BeltSpec{Name: name, Capacity: capacity})
	return t
}

// WithIntersection returns a copy of t with one more intersection.
func (t Topology) WithIntersection(position int) Topology {
	t.Intersections = append(slices.Clip(t.Intersections), position)
	return t
}

// Clone returns a deep copy of t.
func (t Topology) Clone() Topology {
	return Topology{
		Belts:         slices.Clone(t.Belts),
		Intersections: slices.Clone(t.Intersections),
	}
}

// Validate reports every problem with t: empty or duplicate belt names,
// negative capacities or positions, duplicate positions, and intersections
// that do not fit on some belt. Problems are joined into one error.
func (t Topology) Validate() error {
	var errs []error

	names := make(map[string]bool, len(t.Belts))
	for i, b := range t.Belts {
		field := fmt.Sprintf("belts[%d]", i)
		switch {
		case b.Name == "":
			errs = append(errs, errors.NewValidationError("belt name must not be empty").WithField(field+".name"))
		case names[b.Name]:
			errs = append(errs, errors.NewAlreadyExistsError("belt", b.Name).WithCause(errors.ErrDuplicateBelt))
		}
		names[b.Name] = true

		if b.Capacity < 0 {
			errs = append(errs, errors.NewValidationError("belt capacity must be non-negative").
				WithField(field+".capacity").
				WithValue(b.Capacity))
		}
	}

	positions := make(map[int]bool, len(t.Intersections))
	for i, p := range t.Intersections {
		if p < 0 {
			errs = append(errs, errors.NewValidationError("intersection position must be non-negative").
				WithField(fmt.Sprintf("intersections[%d]", i)).
				WithValue(p))
			continue
		}
		if positions[p] {
			errs = append(errs, errors.NewAlreadyExistsError("intersection", strconv.Itoa(p)).
				WithCause(errors.ErrDuplicateIntersection))
			continue
		}
		positions[p] = true

		for _, b := range t.Belts {
			if b.Capacity >= 0 && p >= b.Capacity {
				errs = append(errs, errors.NewBoundsError(b.Name, p, b.Capacity))
			}
		}
	}

	return errors.Join(errs...)
}
