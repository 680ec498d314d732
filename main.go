package main

import (
	"os"

	"github.com/topmx/top-assistant/cmd"
)

func main() {
	// Cobra prints the error itself, the exit code is on us.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
