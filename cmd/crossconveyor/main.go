package main

import (
	"os"

	"github.com/Iron-Ham/crossconveyor/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.Report(os.Stderr, err))
	}
}
