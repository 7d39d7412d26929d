package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/crossconveyor/internal/conveyor"
	"github.com/Iron-Ham/crossconveyor/internal/util"
)

const defaultWidth = 80

var (
	primaryColor = lipgloss.Color("#A78BFA")
	mutedColor   = lipgloss.Color("#9CA3AF")
	greenColor   = lipgloss.Color("#10B981")
	amberColor   = lipgloss.Color("#F59E0B")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle   = lipgloss.NewStyle().Foreground(greenColor)
	evictedStyle = lipgloss.NewStyle().Foreground(amberColor)
	nameStyle    = lipgloss.NewStyle().Bold(true)
)

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeStructured writes v as json or yaml. It reports false for any other
// format so the caller can fall back to text.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		return true, writeJSON(w, v)
	case "yaml":
		return true, writeYAML(w, v)
	default:
		return false, nil
	}
}

// row renders "label  value" with the label padded to labelWidth, cut to the
// terminal width.
func row(label string, labelWidth int, value string) string {
	padded := nameStyle.Render(label) + strings.Repeat(" ", max(labelWidth-lipgloss.Width(label), 0))
	return util.Truncate(padded+"  "+value, terminalWidth())
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

// cell renders a possibly empty value, truncated to width.
func cell(v any, present bool, width int) string {
	s := util.FormatValue(v, present, width)
	if !present {
		return mutedStyle.Render(s)
	}
	return valueStyle.Render(s)
}

// nullable returns v, or nil when the slot is empty, for structured output.
func nullable[T any](v T, present bool) any {
	if !present {
		return nil
	}
	return v
}

// slotRow renders a belt's slots, input end first.
func slotRow[T any](slots []conveyor.Slot[T], width int) string {
	values := make([]T, len(slots))
	present := make([]bool, len(slots))
	for i, s := range slots {
		values[i], present[i] = s.Value, s.Present
	}
	return valueStyle.Render(util.FormatSlots(values, present, width))
}
