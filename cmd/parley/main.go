// Package main is the entry point for the parley CLI.
package main

import (
	"os"

	"github.com/parleychat/parley/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
