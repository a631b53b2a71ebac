// Package main provides the entry point for the MutedVoice CLI.
package main

import (
	"os"

	"github.com/mutedvoice/mutedvoice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
