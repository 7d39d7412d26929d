// Package util provides formatting helpers shared by the CLI commands.
package util

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Empty is how an unoccupied slot or intersection is rendered.
const Empty = "·"

// Truncate shortens s to maxWidth visual columns, ending it with "..." when
// anything was cut. ANSI escape codes and wide characters are measured the way
// the terminal draws them.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FormatValue renders one slot for a table cell.
func FormatValue(v any, present bool, maxWidth int) string {
	if !present {
		return Empty
	}
	return Truncate(fmt.Sprint(v), maxWidth)
}

// FormatSlots renders a belt as space-separated cells, input end first.
func FormatSlots[T any](values []T, present []bool, maxWidth int) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = FormatValue(v, i < len(present) && present[i], maxWidth)
	}
	return strings.Join(cells, " ")
}
