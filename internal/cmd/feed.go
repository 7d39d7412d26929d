package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/conveyor"
	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

var feedCmd = &cobra.Command{
	Use:   "feed <belt> <value>...",
	Short: "Feed values onto a belt and show what falls off",
	Long: `Build the configured conveyor system, feed each value onto the named belt
in order, and print what each feed pushed off the output end.

The system starts empty on every run. Afterwards the belt's slots and every
intersection value are printed, so the effect of a sequence of feeds can be
inspected.

Values are fed onto one belt. Prefix a value with another belt's name and a
colon (e.g. conveyor2:x) to feed it onto that belt instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFeed,
}

var (
	feedJSON bool // Output as JSON
)

func init() {
	feedCmd.Flags().BoolVar(&feedJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(feedCmd)
}

type feedStep struct {
	Belt    string `json:"belt"`
	Value   string `json:"value"`
	Evicted any    `json:"evicted"`
}

type intersectionState struct {
	Position int `json:"position" yaml:"position"`
	Value    any `json:"value" yaml:"value"`
}

type beltState struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Slots    []any  `json:"slots"`
}

type feedReport struct {
	Steps         []feedStep          `json:"steps"`
	Belts         []beltState         `json:"belts"`
	Intersections []intersectionState `json:"intersections"`
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	sys, err := conveyor.New[string](cfg.Conveyor.Topology(),
		append(cfg.Conveyor.Options(), conveyor.WithLogger(logger))...)
	if err != nil {
		return err
	}

	belt := args[0]
	report := feedReport{Steps: make([]feedStep, 0, len(args)-1)}
	touched := []string{belt}
	for _, arg := range args[1:] {
		target, value := belt, arg
		if name, rest, ok := strings.Cut(arg, ":"); ok {
			if _, known := sys.Belt(name); known {
				target, value = name, rest
				if !slices.Contains(touched, name) {
					touched = append(touched, name)
				}
			}
		}

		evicted, ok, err := sys.Feed(target, value)
		if err != nil {
			return errors.Wrapf(err, "configured belts: %s", strings.Join(sys.BeltNames(), ", "))
		}
		report.Steps = append(report.Steps, feedStep{Belt: target, Value: value, Evicted: nullable(evicted, ok)})
	}

	for _, name := range touched {
		b, _ := sys.Belt(name)
		state := beltState{Name: name, Capacity: b.Capacity()}
		for _, s := range b.Slots() {
			state.Slots = append(state.Slots, nullable(s.Value, s.Present))
		}
		report.Belts = append(report.Belts, state)
	}
	report.Intersections = intersectionStates(sys)

	if feedJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printFeedReport(cmd, cfg, sys, report, touched)
	return nil
}

func intersectionStates[T any](sys *conveyor.System[T]) []intersectionState {
	out := make([]intersectionState, 0, len(sys.Positions()))
	for _, p := range sys.Positions() {
		v, ok, _ := sys.IntersectionValue(p)
		out = append(out, intersectionState{Position: p, Value: nullable(v, ok)})
	}
	return out
}

func printFeedReport(cmd *cobra.Command, cfg *config.Config, sys *conveyor.System[string], report feedReport, touched []string) {
	w := cmd.OutOrStdout()
	width := cfg.Output.MaxValueWidth

	heading(w, "Feeds")
	for _, step := range report.Steps {
		out := mutedStyle.Render("nothing")
		if step.Evicted != nil {
			out = evictedStyle.Render(fmt.Sprint(step.Evicted))
		}
		fmt.Fprintf(w, "  %s <- %s  evicted %s\n",
			nameStyle.Render(step.Belt), cell(step.Value, true, width), out)
	}

	fmt.Fprintln(w)
	heading(w, "Belts")
	labelWidth := 0
	for _, name := range touched {
		labelWidth = max(labelWidth, len(name))
	}
	for _, name := range touched {
		b, _ := sys.Belt(name)
		fmt.Fprintln(w, "  "+row(name, labelWidth, slotRow(b.Slots(), width)))
	}

	fmt.Fprintln(w)
	heading(w, "Intersections")
	for _, x := range report.Intersections {
		fmt.Fprintf(w, "  %3d  %s\n", x.Position, cell(x.Value, x.Value != nil, width))
	}
}
