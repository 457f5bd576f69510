// Command unionfn runs, benchmarks and inspects unionfn programs.
package main

import (
	"fmt"
	"os"

	"github.com/wippyai/unionfn/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
