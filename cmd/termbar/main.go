// Package main provides the entry point for termbar.
package main

import (
	"fmt"
	"os"

	"github.com/safedep/termbar/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
