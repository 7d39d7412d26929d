package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/crossconveyor/internal/config"
	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and list every problem",
	Long: `Load the configuration and report every invalid value at once, including
belts that are too short for an intersection, duplicate names and positions,
and simulation settings that would race.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	source := viper.ConfigFileUsed()
	if source == "" {
		source = "(none - using defaults)"
	}
	fmt.Fprintf(w, "Config file: %s\n", source)

	cfg, err := config.Load()
	if err != nil {
		var problems config.ValidationErrors
		if !errors.As(err, &problems) {
			return fmt.Errorf("failed to read configuration: %w", err)
		}
		for _, p := range problems {
			fmt.Fprintf(w, "  %s %s\n", evictedStyle.Render("✗"), p.Error())
		}
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	}

	fmt.Fprintf(w, "  %s %d belts, %d intersections\n",
		valueStyle.Render("✓"), len(cfg.Conveyor.Belts), len(cfg.Conveyor.Intersections))
	return nil
}
