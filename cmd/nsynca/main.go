// Package main is the entry point for the nsynca CLI/TUI.
package main

import (
	"os"

	"github.com/nsynca/nsynca/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
