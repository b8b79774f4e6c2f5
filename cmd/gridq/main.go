// Command gridq validates grid definitions, queries item sets through a
// grid, and runs conformance scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gridq/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
