package main

import (
	"os"

	"dayplanner/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0-dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
