// Package main is the entry point for the helmdeck CLI.
package main

import (
	"os"

	"github.com/helmdeck/helmdeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
