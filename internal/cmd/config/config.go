// Package config provides CLI commands for inspecting and creating the
// crossconveyor configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/crossconveyor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create crossconveyor configuration",
	Long: `View or create crossconveyor configuration.

Without arguments, displays the current configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/crossconveyor/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var initForce bool

func init() {
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// shownConfig mirrors appconfig.Config with yaml tags so show prints the same
// keys a config file uses.
type shownConfig struct {
	Conveyor struct {
		Belts          []shownBelt `yaml:"belts"`
		Intersections  []int       `yaml:"intersections,flow"`
		SerializeBelts bool        `yaml:"serialize_belts"`
	} `yaml:"conveyor"`
	Simulation struct {
		FeedsPerBelt   int `yaml:"feeds_per_belt"`
		DriversPerBelt int `yaml:"drivers_per_belt"`
		MaxGoroutines  int `yaml:"max_goroutines"`
	} `yaml:"simulation"`
	Logging struct {
		Enabled    bool   `yaml:"enabled"`
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
	Output struct {
		Format        string `yaml:"format"`
		MaxValueWidth int    `yaml:"max_value_width"`
	} `yaml:"output"`
}

type shownBelt struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

func toShown(cfg *appconfig.Config) shownConfig {
	var s shownConfig
	for _, b := range cfg.Conveyor.Belts {
		s.Conveyor.Belts = append(s.Conveyor.Belts, shownBelt{Name: b.Name, Capacity: b.Capacity})
	}
	s.Conveyor.Intersections = cfg.Conveyor.Intersections
	s.Conveyor.SerializeBelts = cfg.Conveyor.SerializeBelts

	s.Simulation.FeedsPerBelt = cfg.Simulation.FeedsPerBelt
	s.Simulation.DriversPerBelt = cfg.Simulation.DriversPerBelt
	s.Simulation.MaxGoroutines = cfg.Simulation.MaxGoroutines

	s.Logging.Enabled = cfg.Logging.Enabled
	s.Logging.Level = cfg.Logging.Level
	s.Logging.Dir = cfg.Logging.Dir
	s.Logging.MaxSizeMB = cfg.Logging.MaxSizeMB
	s.Logging.MaxBackups = cfg.Logging.MaxBackups
	s.Logging.Compress = cfg.Logging.Compress

	s.Output.Format = cfg.Output.Format
	s.Output.MaxValueWidth = cfg.Output.MaxValueWidth
	return s
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(w, "# Config file: (none - using defaults)\n")
	}

	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintf(w, "# Configuration is invalid, showing defaults. Run 'crossconveyor validate' for details.\n")
		cfg = appconfig.Default()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toShown(cfg)); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s\nUse --force to overwrite it", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	configFile := appconfig.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(w, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(w, "\nSearch paths:")
	fmt.Fprintf(w, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	fmt.Fprintf(w, "  2. $HOME/.config/crossconveyor/config.yaml\n")
	fmt.Fprintf(w, "  3. ./config.yaml (current directory)\n")
	fmt.Fprintln(w, "\nEnvironment variables: CROSSCONVEYOR_* (e.g., CROSSCONVEYOR_LOGGING_LEVEL)")

	return nil
}

const defaultConfigContent = `# crossconveyor configuration

# Belts and the slot positions they share. Every intersection must fit on
# every belt: position < capacity.
conveyor:
  belts:
    - name: conveyor1
      capacity: 11
    - name: conveyor2
      capacity: 11
  intersections: [3, 7]
  # Give each belt its own lock so it can be fed from several goroutines.
  serialize_belts: false

# Settings for 'crossconveyor simulate'
simulation:
  # Items each driver feeds
  feeds_per_belt: 10000
  # Goroutines per belt; more than 1 requires conveyor.serialize_belts
  drivers_per_belt: 1
  # Cap on concurrently running drivers (0 = unlimited)
  max_goroutines: 0

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  # Empty means ~/.config/crossconveyor/logs
  dir: ""
  # Rotate past this size; 0 keeps one file that is never rotated
  max_size_mb: 10
  max_backups: 3
  compress: false

output:
  # text, json or yaml
  format: text
  # Longer values are truncated in text output
  max_value_width: 24
`
