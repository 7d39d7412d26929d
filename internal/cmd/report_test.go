package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText string
		wantHint bool
	}{
		{
			name:     "unknown belt",
			err:      errors.Wrapf(errors.NewNotFoundError("belt", "conveyor9").WithCause(errors.ErrBeltNotFound), "feed %q", "x"),
			wantCode: ExitFailure,
			wantText: "belt 'conveyor9' not found",
		},
		{
			name:     "bad config",
			err:      fmt.Errorf("invalid configuration: %w", config.ValidationErrors{{Field: "output.format", Value: "xml", Message: "bad"}}),
			wantCode: ExitFailure,
			wantText: "output.format",
		},
		{
			name: "intersection off a belt",
			err: fmt.Errorf("invalid configuration: %w", config.ValidationErrors{{
				Field: "conveyor.intersections", Value: 7, Message: "does not fit", Severity: errors.SeverityCritical,
			}}),
			wantCode: ExitTopology,
			wantText: "Fatal:",
		},
		{
			name:     "bounds error",
			err:      errors.NewBoundsError("conveyor1", 7, 5),
			wantCode: ExitTopology,
			wantText: "position 7 outside [0, 5)",
		},
		{
			name:     "internal failure",
			err:      fmt.Errorf("failed to create logger: %w", errors.New("permission denied")),
			wantCode: ExitFailure,
			wantText: "permission denied",
			wantHint: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := Report(&buf, tt.err); got != tt.wantCode {
				t.Errorf("Report() = %d, want %d", got, tt.wantCode)
			}
			out := buf.String()
			if !strings.Contains(out, tt.wantText) {
				t.Errorf("output %q missing %q", out, tt.wantText)
			}
			if got := strings.Contains(out, "crossconveyor logs"); got != tt.wantHint {
				t.Errorf("log hint shown = %v, want %v", got, tt.wantHint)
			}
		})
	}
}

func TestReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	if got := Report(&buf, nil); got != 0 || buf.Len() != 0 {
		t.Errorf("Report(nil) = %d, output %q", got, buf.String())
	}
}
