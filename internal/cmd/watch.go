package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/conveyor"
	"github.com/Iron-Ham/crossconveyor/internal/event"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

const watchInterval = 100 * time.Millisecond

// watchTickMsg triggers a redraw from a fresh snapshot.
type watchTickMsg time.Time

// simulationDoneMsg carries the finished run back to the view.
type simulationDoneMsg struct {
	report simulationReport
	err    error
}

func watchTick() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

type beltView struct {
	name  string
	fed   uint64
	slots string
}

type intersectionView struct {
	position  int
	published uint64
	value     string
}

// watchModel draws a running simulation. It only reads the system through
// guarded or atomic accessors, and belt slots only when belts are serialized.
type watchModel struct {
	sys      *conveyor.System[int]
	runID    string
	total    uint64
	advanced *atomic.Uint64
	counter  *publishCounter
	width    int
	cancel   context.CancelFunc

	progress      progress.Model
	belts         []beltView
	intersections []intersectionView
	done          bool
	aborted       bool
}

func newWatchModel(sys *conveyor.System[int], sim config.SimulationConfig, runID string, advanced *atomic.Uint64, counter *publishCounter, width int, cancel context.CancelFunc) watchModel {
	m := watchModel{
		sys:      sys,
		runID:    runID,
		total:    uint64(len(sys.BeltNames()) * sim.DriversPerBelt * sim.FeedsPerBelt),
		advanced: advanced,
		counter:  counter,
		width:    width,
		cancel:   cancel,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.snapshot()
	return m
}

func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.progress.Width = max(min(msg.Width-4, 80), 10)
	case watchTickMsg:
		m.snapshot()
		if m.done {
			return m, nil
		}
		return m, watchTick()
	case simulationDoneMsg:
		m.done = true
		m.snapshot()
		return m, tea.Quit
	}
	return m, nil
}

// snapshot copies what the view shows out of the running system.
func (m *watchModel) snapshot() {
	names := m.sys.BeltNames()
	m.belts = make([]beltView, 0, len(names))
	for _, name := range names {
		b, _ := m.sys.Belt(name)
		m.belts = append(m.belts, beltView{name: name, fed: b.Fed(), slots: slotRow(b.Slots(), m.width)})
	}

	positions := m.sys.Positions()
	m.intersections = make([]intersectionView, 0, len(positions))
	for _, p := range positions {
		v, ok, _ := m.sys.IntersectionValue(p)
		m.intersections = append(m.intersections, intersectionView{
			position:  p,
			published: m.counter.get(p),
			value:     cell(v, ok, m.width),
		})
	}
}

func (m watchModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return min(float64(m.advanced.Load())/float64(m.total), 1)
}

func (m watchModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Simulation "+m.runID) + "\n\n")
	sb.WriteString(m.progress.ViewAs(m.percent()))
	sb.WriteString(fmt.Sprintf("  %d/%d feeds\n\n", m.advanced.Load(), m.total))

	labelWidth := 0
	for _, b := range m.belts {
		labelWidth = max(labelWidth, len(b.name))
	}
	sb.WriteString(titleStyle.Render("Belts") + "\n")
	for _, b := range m.belts {
		sb.WriteString("  " + row(b.name, labelWidth, b.slots+mutedStyle.Render(fmt.Sprintf("  fed %d", b.fed))) + "\n")
	}

	if len(m.intersections) > 0 {
		sb.WriteString("\n" + titleStyle.Render("Intersections") + "\n")
		for _, x := range m.intersections {
			sb.WriteString(fmt.Sprintf("  %3d  published %d  last %s\n", x.position, x.published, x.value))
		}
	}

	sb.WriteString("\n" + mutedStyle.Render("q: stop"))
	return sb.String()
}

// watchSimulation runs simulate behind a live view and returns its report.
// Leaving the view early cancels the drivers.
func watchSimulation(cmd *cobra.Command, sys *conveyor.System[int], bus *event.Bus, counter *publishCounter, cfg *config.Config, runID string, logger *logging.Logger) (simulationReport, error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var advanced atomic.Uint64
	id := bus.Subscribe(event.TypeBeltAdvanced, func(event.Event) { advanced.Add(1) })
	defer bus.Unsubscribe(id)

	model := newWatchModel(sys, cfg.Simulation, runID, &advanced, counter, cfg.Output.MaxValueWidth, cancel)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()))

	done := make(chan simulationDoneMsg, 1)
	go func() {
		report, err := simulate(ctx, sys, cfg.Simulation, runID, logger)
		res := simulationDoneMsg{report: report, err: err}
		done <- res
		program.Send(res)
	}()

	final, runErr := program.Run()
	cancel()
	res := <-done

	if wm, ok := final.(watchModel); ok && wm.aborted {
		logger.Warn("simulation interrupted")
		return simulationReport{}, fmt.Errorf("simulation %s interrupted", runID)
	}
	if runErr != nil && res.err == nil {
		logger.Warn("watch view failed", "error", runErr.Error())
	}
	return res.report, res.err
}
