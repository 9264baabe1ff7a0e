// Command tessera is the CLI entry point for the deterministic
// generative token pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tessera/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
