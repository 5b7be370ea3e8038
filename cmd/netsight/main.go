// Command netsight is the network discovery console.
package main

import "github.com/anstrom/netsight/cmd/cli"

// Set by ldflags: -X main.version=... -X main.commit=... -X main.buildTime=...
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
