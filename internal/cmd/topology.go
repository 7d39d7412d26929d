package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crossconveyor/internal/config"
)

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Show the configured belts and intersections",
	Long: `Print the belts and intersections read from the configuration.

Every belt passes through every intersection, so each intersection lists the
belts (after --match filtering) that cross it.

Examples:
  crossconveyor topology
  crossconveyor topology --match 'conveyor*' --output yaml`,
	Args: cobra.NoArgs,
	RunE: runTopology,
}

var (
	topologyMatch  string
	topologyOutput string
)

func init() {
	topologyCmd.Flags().StringVar(&topologyMatch, "match", "", "Only show belts whose name matches this glob")
	topologyCmd.Flags().StringVarP(&topologyOutput, "output", "o", "", "Output format: text, json or yaml (default from output.format)")
	rootCmd.AddCommand(topologyCmd)
}

type topologyBelt struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

type topologyIntersection struct {
	Position int      `json:"position" yaml:"position"`
	Belts    []string `json:"belts" yaml:"belts"`
}

type topologyView struct {
	SerializeBelts bool                   `json:"serialize_belts" yaml:"serialize_belts"`
	Belts          []topologyBelt         `json:"belts" yaml:"belts"`
	Intersections  []topologyIntersection `json:"intersections" yaml:"intersections"`
}

func runTopology(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	view, err := buildTopologyView(cfg.Conveyor, topologyMatch)
	if err != nil {
		return err
	}

	format := cfg.Output.Format
	if topologyOutput != "" {
		if !slices.Contains(config.ValidOutputFormats(), topologyOutput) {
			return fmt.Errorf("invalid output format %q: must be one of %s",
				topologyOutput, strings.Join(config.ValidOutputFormats(), ", "))
		}
		format = topologyOutput
	}

	if ok, err := writeStructured(cmd.OutOrStdout(), format, view); ok {
		return err
	}
	printTopology(cmd, view)
	return nil
}

// buildTopologyView lists belts matching pattern and, for each intersection,
// the matching belts that cross it. An empty pattern matches every belt.
func buildTopologyView(c config.ConveyorConfig, pattern string) (topologyView, error) {
	var g glob.Glob
	if pattern != "" {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return topologyView{}, fmt.Errorf("invalid --match pattern %q: %w", pattern, err)
		}
		g = compiled
	}

	view := topologyView{
		SerializeBelts: c.SerializeBelts,
		Belts:          []topologyBelt{},
		Intersections:  []topologyIntersection{},
	}
	for _, b := range c.Belts {
		if g != nil && !g.Match(b.Name) {
			continue
		}
		view.Belts = append(view.Belts, topologyBelt{Name: b.Name, Capacity: b.Capacity})
	}

	positions := slices.Sorted(slices.Values(c.Intersections))
	for _, p := range positions {
		crossing := []string{}
		for _, b := range view.Belts {
			if p < b.Capacity {
				crossing = append(crossing, b.Name)
			}
		}
		view.Intersections = append(view.Intersections, topologyIntersection{Position: p, Belts: crossing})
	}
	return view, nil
}

func printTopology(cmd *cobra.Command, view topologyView) {
	w := cmd.OutOrStdout()

	heading(w, fmt.Sprintf("Belts (%d)", len(view.Belts)))
	labelWidth := 0
	for _, b := range view.Belts {
		labelWidth = max(labelWidth, len(b.Name))
	}
	for _, b := range view.Belts {
		fmt.Fprintln(w, "  "+row(b.Name, labelWidth, fmt.Sprintf("capacity %d", b.Capacity)))
	}
	if view.SerializeBelts {
		fmt.Fprintln(w, "  "+mutedStyle.Render("belts are serialized"))
	}

	fmt.Fprintln(w)
	heading(w, fmt.Sprintf("Intersections (%d)", len(view.Intersections)))
	for _, x := range view.Intersections {
		fmt.Fprintln(w, "  "+row(fmt.Sprintf("%d", x.Position), 3, strings.Join(x.Belts, ", ")))
	}
}
