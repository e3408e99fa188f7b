// Package main is the entry point for the parleyd daemon. It is the same
// code path as `parley serve`, packaged as its own binary for service
// managers.
package main

import (
	"fmt"
	"os"

	"github.com/parleychat/parley/internal/cmd"
)

func main() {
	if err := cmd.ExecuteServe(); err != nil {
		fmt.Fprintf(os.Stderr, "parleyd: %v\n", err)
		os.Exit(1)
	}
}
