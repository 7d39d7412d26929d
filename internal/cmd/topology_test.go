package cmd

import (
	"testing"

	"github.com/Iron-Ham/crossconveyor/internal/config"
)

func TestBuildTopologyView(t *testing.T) {
	c := config.ConveyorConfig{
		Belts: []config.BeltConfig{
			{Name: "east-1", Capacity: 5},
			{Name: "east-2", Capacity: 5},
			{Name: "west", Capacity: 9},
		},
		Intersections: []int{4, 0},
	}

	tests := []struct {
		name      string
		pattern   string
		wantBelts int
	}{
		{"all", "", 3},
		{"prefix", "east-*", 2},
		{"exact", "west", 1},
		{"none", "north*", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := buildTopologyView(c, tt.pattern)
			if err != nil {
				t.Fatalf("buildTopologyView() error = %v", err)
			}
			if len(view.Belts) != tt.wantBelts {
				t.Errorf("got %d belts, want %d", len(view.Belts), tt.wantBelts)
			}
			if len(view.Intersections) != 2 || view.Intersections[0].Position != 0 {
				t.Fatalf("intersections = %+v", view.Intersections)
			}
			for _, x := range view.Intersections {
				if len(x.Belts) != tt.wantBelts {
					t.Errorf("intersection %d crossed by %v", x.Position, x.Belts)
				}
			}
		})
	}

	if c.Intersections[0] != 4 {
		t.Error("buildTopologyView reordered the config's intersections")
	}
}
