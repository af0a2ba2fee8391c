// Command item-service serves the item API and runs batch processing.
package main

import (
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd(version, os.Stdout, os.Stderr, os.LookupEnv).Execute(); err != nil {
		os.Exit(1)
	}
}
