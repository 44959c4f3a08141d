// Chunkstore - CLI for reading files stored as chunk records
package main

import (
	"os"

	"github.com/chunkstore-io/chunkstore/internal/cli"
	"github.com/chunkstore-io/chunkstore/internal/version"
)

// Version information - overridden by ldflags in release builds
var (
	Version   = "v1.0.0"
	BuildTime = "2026-08-23"
)

func main() {
	// Propagate version to the packages that display it
	version.Version = Version
	version.BuildTime = BuildTime
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		// Cobra already printed the error
		os.Exit(1)
	}
}
