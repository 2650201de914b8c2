// Package main provides the CLI for the geoforge object builder.
package main

import (
	"os"

	"github.com/geostack-labs/geoforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
