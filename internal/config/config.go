package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/crossconveyor/internal/conveyor"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

// Config represents the complete crossconveyor configuration
type Config struct {
	Conveyor   ConveyorConfig   `mapstructure:"conveyor"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

// ConveyorConfig describes the belts and intersections of the system
type ConveyorConfig struct {
	// Belts lists every belt by unique name and capacity
	Belts []BeltConfig `mapstructure:"belts"`
	// Intersections lists the shared slot positions, counted from the input end
	Intersections []int `mapstructure:"intersections"`
	// SerializeBelts gives each belt its own lock so one belt may be fed from
	// several goroutines at once (default: false)
	SerializeBelts bool `mapstructure:"serialize_belts"`
}

// BeltConfig registers one belt
type BeltConfig struct {
	Name     string `mapstructure:"name"`
	Capacity int    `mapstructure:"capacity"`
}

// SimulationConfig controls the simulate command
type SimulationConfig struct {
	// FeedsPerBelt is how many items each driver feeds (default: 10000)
	FeedsPerBelt int `mapstructure:"feeds_per_belt"`
	// DriversPerBelt is the number of goroutines feeding each belt (default: 1).
	// Values above 1 require conveyor.serialize_belts.
	DriversPerBelt int `mapstructure:"drivers_per_belt"`
	// MaxGoroutines caps the driver pool (0 = unlimited)
	MaxGoroutines int `mapstructure:"max_goroutines"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging to file is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where crossconveyor.log is written. Empty means <config dir>/logs.
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the log file size in megabytes that triggers rotation; 0 keeps
	// one unrotated file (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// OutputConfig controls how commands print results
type OutputConfig struct {
	// Format is "text", "json" or "yaml" (default: "text")
	Format string `mapstructure:"format"`
	// MaxValueWidth truncates long values in text output (default: 24)
	MaxValueWidth int `mapstructure:"max_value_width"`
}

// Default returns a Config with sensible default values. The default topology
// is two belts of eleven slots crossing at positions 3 and 7.
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Conveyor: ConveyorConfig{
			Belts: []BeltConfig{
				{Name: "conveyor1", Capacity: 11},
				{Name: "conveyor2", Capacity: 11},
			},
			Intersections:  []int{3, 7},
			SerializeBelts: false,
		},
		Simulation: SimulationConfig{
			FeedsPerBelt:   10000,
			DriversPerBelt: 1,
			MaxGoroutines:  0,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
		Output: OutputConfig{
			Format:        "text",
			MaxValueWidth: 24,
		},
	}
}

// Topology converts the conveyor section into a conveyor.Topology
func (c *ConveyorConfig) Topology() conveyor.Topology {
	var t conveyor.Topology
	for _, b := range c.Belts {
		t = t.WithBelt(b.Name, b.Capacity)
	}
	for _, p := range c.Intersections {
		t = t.WithIntersection(p)
	}
	return t
}

// Options returns the conveyor.System options implied by this section
func (c *ConveyorConfig) Options() []conveyor.Option {
	return []conveyor.Option{conveyor.WithSerializedBelts(c.SerializeBelts)}
}

// ResolveDir returns the resolved log directory.
// If Dir is empty, it returns <config dir>/logs.
// If Dir starts with ~, it expands to the user's home directory.
func (l *LoggingConfig) ResolveDir() string {
	if l.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}

	path := l.Dir
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}
	return path
}

// RotationConfig returns the rotation settings for the log writer
func (l *LoggingConfig) RotationConfig() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		Compress:   l.Compress,
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Conveyor defaults. Belts are registered as maps so viper merges and
	// prints them the same way as values read from a file.
	belts := make([]map[string]any, 0, len(defaults.Conveyor.Belts))
	for _, b := range defaults.Conveyor.Belts {
		belts = append(belts, map[string]any{"name": b.Name, "capacity": b.Capacity})
	}
	viper.SetDefault("conveyor.belts", belts)
	viper.SetDefault("conveyor.intersections", defaults.Conveyor.Intersections)
	viper.SetDefault("conveyor.serialize_belts", defaults.Conveyor.SerializeBelts)

	// Simulation defaults
	viper.SetDefault("simulation.feeds_per_belt", defaults.Simulation.FeedsPerBelt)
	viper.SetDefault("simulation.drivers_per_belt", defaults.Simulation.DriversPerBelt)
	viper.SetDefault("simulation.max_goroutines", defaults.Simulation.MaxGoroutines)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.max_value_width", defaults.Output.MaxValueWidth)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "crossconveyor")
	}
	// Fall back to ~/.config/crossconveyor
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crossconveyor"
	}
	return filepath.Join(home, ".config", "crossconveyor")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
