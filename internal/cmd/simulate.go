package cmd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/conveyor"
	"github.com/Iron-Ham/crossconveyor/internal/event"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive every belt concurrently and report throughput",
	Long: `Feed every configured belt from its own goroutines at the same time.

Each belt gets simulation.drivers_per_belt drivers that each feed
simulation.feeds_per_belt distinct integers. Running more than one driver per
belt requires conveyor.serialize_belts. When the run finishes, per-belt
evictions, per-intersection publish counts and the elapsed time are printed.

With --watch the run is drawn live: progress, every belt's slots and the last
value at each intersection. Watching serializes belts so their slots can be
read mid-run. Press q to stop early.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

var (
	simulateJSON          bool // Output as JSON
	simulateWatch         bool
	simulateFeeds         int
	simulateDrivers       int
	simulateMaxGoroutines int
)

func init() {
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Output the report as JSON")
	simulateCmd.Flags().BoolVarP(&simulateWatch, "watch", "w", false, "Show belts and intersections live while the simulation runs")
	simulateCmd.Flags().IntVar(&simulateFeeds, "feeds", 0, "Feeds per driver (overrides simulation.feeds_per_belt)")
	simulateCmd.Flags().IntVar(&simulateDrivers, "drivers", 0, "Drivers per belt (overrides simulation.drivers_per_belt)")
	simulateCmd.Flags().IntVar(&simulateMaxGoroutines, "max-goroutines", 0, "Cap on concurrent drivers (overrides simulation.max_goroutines)")
	rootCmd.AddCommand(simulateCmd)
}

type beltSummary struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Drivers  int    `json:"drivers"`
	Fed      uint64 `json:"fed"`
	Evicted  uint64 `json:"evicted"`
}

type intersectionSummary struct {
	Position  int    `json:"position"`
	Published uint64 `json:"published"`
	Value     any    `json:"value"`
}

type simulationReport struct {
	RunID          string                `json:"run_id"`
	ElapsedMs      int64                 `json:"elapsed_ms"`
	FeedsPerSecond float64               `json:"feeds_per_second"`
	Belts          []beltSummary         `json:"belts"`
	Intersections  []intersectionSummary `json:"intersections"`
}

// publishCounter tallies intersection.published events per position.
type publishCounter struct {
	mu     sync.Mutex
	counts map[int]uint64
}

func (c *publishCounter) handle(e event.Event) {
	pub, ok := e.(event.IntersectionPublishedEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	c.counts[pub.Position]++
	c.mu.Unlock()
}

func (c *publishCounter) get(position int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[position]
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := applySimulateFlags(cmd, cfg); err != nil {
		return err
	}

	baseLogger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer baseLogger.Close()

	runID := xid.New().String()
	logger := baseLogger.WithRun(runID)

	bus := event.NewBus(logger)
	counter := &publishCounter{counts: make(map[int]uint64)}
	counterID := bus.Subscribe(event.TypeIntersectionPublished, counter.handle)

	opts := append(cfg.Conveyor.Options(), conveyor.WithLogger(logger), conveyor.WithEventBus(bus))
	if simulateWatch {
		opts = append(opts, conveyor.WithSerializedBelts(true))
	}
	sys, err := conveyor.New[int](cfg.Conveyor.Topology(), opts...)
	if err != nil {
		return err
	}

	var report simulationReport
	if simulateWatch {
		report, err = watchSimulation(cmd, sys, bus, counter, cfg, runID, logger)
	} else {
		report, err = simulate(cmd.Context(), sys, cfg.Simulation, runID, logger)
	}
	bus.Unsubscribe(counterID)
	if err != nil {
		return err
	}
	for i := range report.Intersections {
		report.Intersections[i].Published = counter.get(report.Intersections[i].Position)
	}

	if simulateJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printSimulationReport(cmd, cfg, report)
	return nil
}

// applySimulateFlags folds explicitly set flags into cfg and revalidates it.
func applySimulateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("feeds") {
		cfg.Simulation.FeedsPerBelt = simulateFeeds
	}
	if flags.Changed("drivers") {
		cfg.Simulation.DriversPerBelt = simulateDrivers
	}
	if flags.Changed("max-goroutines") {
		cfg.Simulation.MaxGoroutines = simulateMaxGoroutines
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid simulation settings: %w", config.ValidationErrors(errs))
	}
	return nil
}

// simulate runs every driver in a conc pool and collects per-belt totals.
// Driver d of belt b feeds b*drivers*feeds + d*feeds + i, so every value in
// a run is distinct.
func simulate(ctx context.Context, sys *conveyor.System[int], sim config.SimulationConfig, runID string, logger *logging.Logger) (simulationReport, error) {
	names := sys.BeltNames()
	evicted := make([]atomic.Uint64, len(names))

	p := pool.New()
	if sim.MaxGoroutines > 0 {
		p = p.WithMaxGoroutines(sim.MaxGoroutines)
	}
	drivers := p.WithContext(ctx).WithCancelOnError()

	logger.Info("simulation started",
		"belts", len(names),
		"drivers_per_belt", sim.DriversPerBelt,
		"feeds_per_belt", sim.FeedsPerBelt)
	start := time.Now()

	for bi, name := range names {
		for d := range sim.DriversPerBelt {
			base := (bi*sim.DriversPerBelt + d) * sim.FeedsPerBelt
			drivers.Go(func(ctx context.Context) error {
				for i := range sim.FeedsPerBelt {
					if i%1024 == 0 && ctx.Err() != nil {
						return ctx.Err()
					}
					_, ok, err := sys.Feed(name, base+i)
					if err != nil {
						return err
					}
					if ok {
						evicted[bi].Add(1)
					}
				}
				logger.WithBelt(name).Debug("driver finished", "driver", d)
				return nil
			})
		}
	}

	if err := drivers.Wait(); err != nil {
		return simulationReport{}, fmt.Errorf("simulation %s failed: %w", runID, err)
	}
	elapsed := time.Since(start)

	report := simulationReport{
		RunID:     runID,
		ElapsedMs: elapsed.Milliseconds(),
	}
	var total uint64
	for bi, name := range names {
		b, _ := sys.Belt(name)
		total += b.Fed()
		report.Belts = append(report.Belts, beltSummary{
			Name:     name,
			Capacity: b.Capacity(),
			Drivers:  sim.DriversPerBelt,
			Fed:      b.Fed(),
			Evicted:  evicted[bi].Load(),
		})
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.FeedsPerSecond = float64(total) / secs
	}
	for _, x := range intersectionStates(sys) {
		report.Intersections = append(report.Intersections, intersectionSummary{Position: x.Position, Value: x.Value})
	}

	logger.Info("simulation finished", "elapsed_ms", report.ElapsedMs, "feeds", total)
	return report, nil
}

func printSimulationReport(cmd *cobra.Command, cfg *config.Config, report simulationReport) {
	w := cmd.OutOrStdout()

	heading(w, "Simulation "+report.RunID)
	fmt.Fprintf(w, "  %s %d ms, %.0f feeds/s\n", mutedStyle.Render("elapsed"), report.ElapsedMs, report.FeedsPerSecond)

	fmt.Fprintln(w)
	heading(w, "Belts")
	labelWidth := 0
	for _, b := range report.Belts {
		labelWidth = max(labelWidth, len(b.Name))
	}
	for _, b := range report.Belts {
		fmt.Fprintln(w, "  "+row(b.Name, labelWidth,
			fmt.Sprintf("capacity %d  drivers %d  fed %d  evicted %d", b.Capacity, b.Drivers, b.Fed, b.Evicted)))
	}

	if len(report.Intersections) == 0 {
		return
	}
	fmt.Fprintln(w)
	heading(w, "Intersections")
	for _, x := range report.Intersections {
		fmt.Fprintf(w, "  %3d  published %d  last %s\n",
			x.Position, x.Published, cell(x.Value, x.Value != nil, cfg.Output.MaxValueWidth))
	}
}
