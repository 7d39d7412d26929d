package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

// Exit codes returned by Report.
const (
	ExitFailure  = 1
	ExitTopology = 2 // the configured topology can never be fed
)

var (
	errorLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F87171"))
	fatalLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC2626"))
)

// Report prints err for the person at the terminal and returns the process
// exit code. Errors that are not meant for users get a pointer to the logs,
// where the command recorded the details.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	label, code := errorLabelStyle.Render("Error:"), ExitFailure
	if errors.GetSeverity(err) == errors.SeverityCritical {
		label, code = fatalLabelStyle.Render("Fatal:"), ExitTopology
	}
	fmt.Fprintln(w, label, err)

	if !errors.IsUserFacing(err) {
		fmt.Fprintln(w, mutedStyle.Render("See 'crossconveyor logs --level error' for details."))
	}
	return code
}
