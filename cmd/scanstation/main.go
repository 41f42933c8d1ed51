// Command scanstation runs a camera check-in scanner.
package main

import "github.com/dmitrymomot/scanstation/internal/cli"

// Set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
