package conveyor

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
	"github.com/Iron-Ham/crossconveyor/internal/event"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

func twoBelts(capacity int, positions ...int) Topology {
	t := Topology{}.WithBelt("conveyor1", capacity).WithBelt("conveyor2", capacity)
	for _, p := range positions {
		t = t.WithIntersection(p)
	}
	return t
}

func mustSystem(t *testing.T, topology Topology, opts ...Option) *System[int] {
	t.Helper()
	s, err := New[int](topology, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := mustSystem(t, twoBelts(5, 3, 1))

	if got, want := s.BeltNames(), []string{"conveyor1", "conveyor2"}; !slices.Equal(got, want) {
		t.Errorf("BeltNames() = %v, want %v", got, want)
	}
	if got, want := s.Positions(), []int{1, 3}; !slices.Equal(got, want) {
		t.Errorf("Positions() = %v, want %v", got, want)
	}
	if b, ok := s.Belt("conveyor1"); !ok || b.Capacity() != 5 {
		t.Errorf("Belt(conveyor1) = %v, %v", b, ok)
	}
	if _, ok := s.Belt("nope"); ok {
		t.Error("Belt(nope) found a belt")
	}
}

func TestNew_RejectsInvalidTopology(t *testing.T) {
	_, err := New[int](twoBelts(3, 3))
	if !errors.Is(err, errors.ErrPositionOutOfRange) {
		t.Fatalf("New() error = %v, want ErrPositionOutOfRange", err)
	}
	if !strings.HasPrefix(err.Error(), "invalid topology") {
		t.Errorf("error = %q, want prefix %q", err.Error(), "invalid topology")
	}
}

func TestSystem_TopologyIsCopy(t *testing.T) {
	topo := twoBelts(5, 2)
	s := mustSystem(t, topo)

	topo.Belts[0].Name = "renamed"
	got := s.Topology()
	if got.Belts[0].Name != "conveyor1" {
		t.Error("System shares storage with the caller's topology")
	}
	got.Intersections[0] = 4
	if s.Topology().Intersections[0] != 2 {
		t.Error("Topology() returned the system's own storage")
	}
}

func TestSystem_WorkedExample(t *testing.T) {
	s := mustSystem(t, Topology{}.WithBelt("conveyor1", 5).WithIntersection(2))

	for i := 1; i <= 5; i++ {
		if _, ok, err := s.Feed("conveyor1", i); err != nil || ok {
			t.Fatalf("Feed(%d) = %v, %v, want empty", i, ok, err)
		}
	}

	v, ok, err := s.Feed("conveyor1", 6)
	if err != nil || !ok || v != 1 {
		t.Fatalf("Feed(6) = %d, %v, %v, want 1, true, nil", v, ok, err)
	}

	pub, present, err := s.IntersectionValue(2)
	if err != nil || !present || pub != 4 {
		t.Errorf("IntersectionValue(2) = %d, %v, %v, want 4, true, nil", pub, present, err)
	}
}

// Two belts of eleven crossing at 3 and 7. After the first belt is filled and
// advanced once, the second belt picks up its items at the crossings and
// drops them four and eight feeds later, then drops its own first item.
func TestSystem_CrossingHandoff(t *testing.T) {
	s := mustSystem(t, twoBelts(11, 3, 7))

	for i := 1; i <= 11; i++ {
		if v, ok, _ := s.Feed("conveyor1", i); ok {
			t.Fatalf("conveyor1 Feed(%d) evicted %d", i, v)
		}
	}
	if v, ok, _ := s.Feed("conveyor1", 12); !ok || v != 1 {
		t.Fatalf("conveyor1 Feed(12) = %d, %v, want 1, true", v, ok)
	}

	want := map[int]int{4: 5, 8: 9, 12: 101}
	for i := 1; i <= 12; i++ {
		v, ok, err := s.Feed("conveyor2", 100+i)
		if err != nil {
			t.Fatalf("conveyor2 Feed(%d) error = %v", i, err)
		}
		w, expect := want[i]
		if ok != expect || (expect && v != w) {
			t.Errorf("conveyor2 feed %d = %d, %v, want %d, %v", i, v, ok, w, expect)
		}
	}
}

func TestSystem_CrossBeltVisibility(t *testing.T) {
	s := mustSystem(t, twoBelts(4, 1))

	_, _, _ = s.Feed("conveyor1", 10)
	_, _, _ = s.Feed("conveyor1", 20)
	// conveyor1 now holds [20 10 - -] and published 10 at position 1.

	if v, ok, _ := s.IntersectionValue(1); !ok || v != 10 {
		t.Fatalf("IntersectionValue(1) = %d, %v, want 10, true", v, ok)
	}

	_, _, _ = s.Feed("conveyor2", 30)
	b, _ := s.Belt("conveyor2")
	if slot := b.Slots()[2]; !slot.Present || slot.Value != 10 {
		t.Errorf("conveyor2 slot 2 = %+v, want 10 carried over from conveyor1", slot)
	}
}

func TestSystem_FeedUnknownBelt(t *testing.T) {
	s := mustSystem(t, twoBelts(3, 1))
	_, _, _ = s.Feed("conveyor1", 1)
	before, _ := s.Belt("conveyor1")
	snapshot := before.Slots()

	_, ok, err := s.Feed("conveyor9", 5)
	if ok {
		t.Error("Feed(unknown) reported an eviction")
	}
	if !errors.Is(err, errors.ErrBeltNotFound) {
		t.Fatalf("Feed(unknown) error = %v, want ErrBeltNotFound", err)
	}
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) || nf.ResourceID != "conveyor9" {
		t.Errorf("error = %#v, want NotFoundError for conveyor9", err)
	}

	if !slices.Equal(before.Slots(), snapshot) {
		t.Error("Feed(unknown) mutated another belt")
	}
	if v, ok, _ := s.IntersectionValue(1); ok {
		t.Errorf("Feed(unknown) published %d", v)
	}
}

func TestSystem_IntersectionValueUnknown(t *testing.T) {
	s := mustSystem(t, twoBelts(3, 1))

	if _, _, err := s.IntersectionValue(2); !errors.Is(err, errors.ErrIntersectionNotFound) {
		t.Errorf("IntersectionValue(2) error = %v, want ErrIntersectionNotFound", err)
	}
}

func TestSystem_Events(t *testing.T) {
	bus := event.NewBus(nil)
	s := mustSystem(t, twoBelts(3, 0, 2), WithEventBus(bus))

	var advanced []event.BeltAdvancedEvent
	var published []event.IntersectionPublishedEvent
	var rejected []event.FeedRejectedEvent
	bus.Subscribe(event.TypeBeltAdvanced, func(e event.Event) {
		advanced = append(advanced, e.(event.BeltAdvancedEvent))
	})
	bus.Subscribe(event.TypeIntersectionPublished, func(e event.Event) {
		published = append(published, e.(event.IntersectionPublishedEvent))
	})
	bus.Subscribe(event.TypeFeedRejected, func(e event.Event) {
		rejected = append(rejected, e.(event.FeedRejectedEvent))
	})

	for i := 1; i <= 4; i++ {
		if _, _, err := s.Feed("conveyor1", i); err != nil {
			t.Fatal(err)
		}
	}
	_, _, _ = s.Feed("missing", 0)

	if len(advanced) != 4 {
		t.Fatalf("got %d belt.advanced events, want 4", len(advanced))
	}
	last := advanced[3]
	if last.Belt != "conveyor1" || last.Fed != 4 || !last.HasEvicted || last.Evicted != 1 {
		t.Errorf("last belt.advanced = %+v", last)
	}
	if advanced[0].HasEvicted || advanced[0].Evicted != nil {
		t.Errorf("first belt.advanced = %+v, want no eviction", advanced[0])
	}

	if len(published) != 8 {
		t.Fatalf("got %d intersection.published events, want 8", len(published))
	}
	// Release order is descending.
	if published[0].Position != 2 || published[1].Position != 0 {
		t.Errorf("publish order = %d, %d, want 2, 0", published[0].Position, published[1].Position)
	}
	// Fourth feed: slot 0 holds 4, slot 2 holds 2.
	if p := published[6]; p.Value != 2 || !p.HasValue {
		t.Errorf("published[6] = %+v, want 2 at position 2", p)
	}
	if p := published[7]; p.Value != 4 || !p.HasValue {
		t.Errorf("published[7] = %+v, want 4 at position 0", p)
	}

	if len(rejected) != 1 || rejected[0].Belt != "missing" {
		t.Errorf("feed.rejected = %+v", rejected)
	}
}

func TestSystem_LogsRejectedFeed(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, logging.LevelDebug)
	if err != nil {
		t.Fatal(err)
	}
	s := mustSystem(t, twoBelts(3, 1), WithLogger(logger))
	_, _, _ = s.Feed("ghost", 1)
	_ = logger.Close()

	data := readFile(t, filepath.Join(dir, logging.LogFileName))
	if !strings.Contains(data, `"msg":"conveyor system ready"`) {
		t.Errorf("log missing setup entry:\n%s", data)
	}
	if !strings.Contains(data, `"msg":"belt registered","belt":"conveyor2","capacity":3`) {
		t.Errorf("log missing belt registration:\n%s", data)
	}
	if !strings.Contains(data, `"msg":"feed rejected"`) || !strings.Contains(data, `"belt":"ghost"`) {
		t.Errorf("log missing rejected feed:\n%s", data)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
