// Command review is the reView command line client.
package main

import (
	"os"

	"github.com/wmcornejo/reView/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute already printed the error to stderr.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
