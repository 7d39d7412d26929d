// Package conveyor models independent fixed-capacity belts that physically
// cross one another at shared slots called intersections.
//
// Each [Belt] is a shift register: every advance pushes one item in at index 0
// and evicts the item at index capacity-1. An [Intersection] is a slot position
// shared by every belt; it holds the last value any belt published there and
// owns the mutex that serializes access to that position.
//
// # Advancing
//
// [Belt.Advance] runs the locking protocol against the full, precomputed set of
// intersections ([Crossings]):
//
//  1. acquire each intersection guard in ascending position order, copying the
//     published value into the belt's slot at that position;
//  2. shift the belt;
//  3. in descending order, publish the belt's slot at each position and
//     release the guard.
//
// Every advance uses the same global order, so belts contending for
// overlapping intersections cannot deadlock, and each intersection sees a
// total order of publishes.
//
// # Setup
//
// A [Topology] describes belts and intersection positions. It is an immutable
// value: [Topology.WithBelt] and [Topology.WithIntersection] return copies.
// [New] validates it eagerly, including that every intersection position is a
// valid slot index on every belt, and builds a [System].
//
//	topo := conveyor.Topology{}.
//	    WithBelt("conveyor1", 5).
//	    WithBelt("conveyor2", 5).
//	    WithIntersection(2)
//
//	sys, err := conveyor.New[int](topo)
//	if err != nil {
//	    return err
//	}
//	evicted, ok, err := sys.Feed("conveyor1", 42)
//
// # Concurrency
//
// Feeds on different belts may run on any number of goroutines. A belt's own
// slots are only synchronized at intersection positions, so two concurrent
// feeds on the same belt race on the remaining slots unless the system was
// built with [WithSerializedBelts].
package conveyor
