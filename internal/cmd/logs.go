package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View crossconveyor logs",
	Long: `View and filter the crossconveyor log file.

Examples:
  # Show the last 50 entries
  crossconveyor logs

  # Show everything from one simulation run
  crossconveyor logs --run cs1q2e0o4g6s7h8k9m10 -n 0

  # Follow new entries for one belt
  crossconveyor logs -f --belt conveyor1

  # Only warnings and errors from the last hour
  crossconveyor logs --level warn --since 1h`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail   int
	logsFollow bool
	logsLevel  string
	logsSince  string
	logsGrep   string
	logsRun    string
	logsBelt   string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "Only show entries from this simulation run")
	logsCmd.Flags().StringVar(&logsBelt, "belt", "", "Only show entries about this belt")
}

// logEntry represents a parsed JSON log line
type logEntry struct {
	Time  time.Time      `json:"time"`
	Level string         `json:"level"`
	Msg   string         `json:"msg"`
	RunID string         `json:"run_id,omitempty"`
	Belt  string         `json:"belt,omitempty"`
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON captures fields other than the known ones in Extra.
func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	if err := json.Unmarshal(data, (*alias)(e)); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "run_id", "belt"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

// logFilter holds the parsed filter flags.
type logFilter struct {
	minLevel int
	since    time.Time
	grep     *regexp.Regexp
	run      string
	belt     string
}

var levelStyles = map[string]lipgloss.Style{
	logging.LevelDebug: mutedStyle,
	logging.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")),
	logging.LevelWarn:  evictedStyle,
	logging.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
}

// levelPriority returns the priority of a log level for filtering
func levelPriority(level string) int {
	return slices.Index(logging.ValidLevels(), strings.ToUpper(level))
}

// formatLogEntry formats a log entry for terminal output. Extra fields are
// printed in key order.
func formatLogEntry(entry *logEntry) string {
	var sb strings.Builder

	sb.WriteString(mutedStyle.Render("[" + entry.Time.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	level := strings.ToUpper(entry.Level)
	sb.WriteString(levelStyles[level].Render("[" + level + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)

	if entry.RunID != "" {
		sb.WriteString(" " + titleStyle.Render("run="+entry.RunID))
	}
	if entry.Belt != "" {
		sb.WriteString(" " + nameStyle.Render("belt="+entry.Belt))
	}

	keys := make([]string, 0, len(entry.Extra))
	for k := range entry.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=%v", mutedStyle.Render(k), entry.Extra[k]))
	}

	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logPath := filepath.Join(cfg.Logging.ResolveDir(), logging.LogFileName)
	w := cmd.OutOrStdout()

	if _, err := os.Stat(logPath); os.IsNotExist(err) && !logsFollow {
		fmt.Fprintln(w, "No logs found.")
		fmt.Fprintln(w, "Logs are stored at:", logPath)
		return nil
	}

	filter, err := parseLogFilter()
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(cmd.Context(), w, logPath, filter)
	}
	return displayLogs(w, logPath, logsTail, filter)
}

func parseLogFilter() (logFilter, error) {
	filter := logFilter{minLevel: -1, run: logsRun, belt: logsBelt}

	if logsLevel != "" {
		filter.minLevel = levelPriority(logging.ParseLevel(logsLevel))
	}

	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return filter, fmt.Errorf("invalid duration format: %w", err)
		}
		filter.since = time.Now().Add(-duration)
	}

	if logsGrep != "" {
		re, err := regexp.Compile(logsGrep)
		if err != nil {
			return filter, fmt.Errorf("invalid grep pattern: %w", err)
		}
		filter.grep = re
	}

	return filter, nil
}

// formatLine parses and filters one raw line. Lines that are not JSON are
// passed through unchanged.
func formatLine(line string, filter logFilter) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line, true
	}
	if !filter.passes(&entry) {
		return "", false
	}
	return formatLogEntry(&entry), true
}

// displayLogs reads the log file and displays filtered entries
func displayLogs(w io.Writer, logPath string, tail int, filter logFilter) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if out, ok := formatLine(scanner.Text(), filter); ok {
			entries = append(entries, out)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}

	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No matching log entries found.")
	}
	return nil
}

// followLogs prints entries appended to logPath until ctx is done. It watches
// the log directory so a rotated or newly created file is picked up from its
// first line.
func followLogs(ctx context.Context, w io.Writer, logPath string, filter logFilter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch logs: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		file    *os.File
		reader  *bufio.Reader
		pending string
	)
	open := func(fromEnd bool) {
		if file != nil {
			_ = file.Close()
			file, reader = nil, nil
		}
		pending = ""
		f, err := os.Open(logPath)
		if err != nil {
			return
		}
		if fromEnd {
			_, _ = f.Seek(0, io.SeekEnd)
		}
		file, reader = f, bufio.NewReader(f)
	}
	drain := func() {
		if reader == nil {
			return
		}
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				// Keep a partial line for the next write.
				pending += line
				return
			}
			line, pending = pending+line, ""
			if out, ok := formatLine(line, filter); ok {
				fmt.Fprintln(w, out)
			}
		}
	}

	open(true)
	defer func() {
		if file != nil {
			_ = file.Close()
		}
	}()

	fmt.Fprintf(w, "Following %s... (Ctrl+C to stop)\n\n", logPath)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != logPath {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				open(false)
				drain()
			case ev.Has(fsnotify.Write):
				if reader == nil {
					open(false)
				}
				drain()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("error watching logs: %w", err)
		}
	}
}

// passes checks if a log entry passes all filter criteria
func (f logFilter) passes(entry *logEntry) bool {
	if f.minLevel >= 0 && levelPriority(entry.Level) < f.minLevel {
		return false
	}
	if !f.since.IsZero() && entry.Time.Before(f.since) {
		return false
	}
	if f.run != "" && entry.RunID != f.run {
		return false
	}
	if f.belt != "" && entry.Belt != f.belt {
		return false
	}

	if f.grep != nil {
		searchText := entry.Msg
		for _, v := range entry.Extra {
			searchText += " " + fmt.Sprintf("%v", v)
		}
		if !f.grep.MatchString(searchText) {
			return false
		}
	}
	return true
}
