package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/Iron-Ham/crossconveyor/internal/cmd/config"
	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "crossconveyor",
	Short: "Concurrent conveyor belts that share intersection slots",
	Long: `crossconveyor drives a set of fixed-capacity conveyor belts that cross
each other at shared intersection slots. Feeding a belt shifts every item one
slot toward the output end; items parked at an intersection are visible to
every belt that passes through it.

Belts and intersections are read from the config file (see 'crossconveyor
config init').`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/crossconveyor/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	bindFlags()

	configcmd.Register(rootCmd)
}

func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/crossconveyor")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CROSSCONVEYOR")
	// e.g., CROSSCONVEYOR_CONVEYOR_SERIALIZE_BELTS for conveyor.serialize_belts
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds the command logger from the logging section. Disabled
// logging discards everything; a zero max_size_mb writes one plain file.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	switch {
	case !cfg.Logging.Enabled:
		return logging.NopLogger(), nil
	case cfg.Logging.MaxSizeMB == 0:
		return logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level)
	default:
		return logging.NewLoggerWithRotation(cfg.Logging.ResolveDir(), cfg.Logging.Level, cfg.Logging.RotationConfig())
	}
}
