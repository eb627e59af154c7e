// Command cinegraph resolves relational queries over a film dataset.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cinegraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
