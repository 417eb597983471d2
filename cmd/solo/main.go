// Package main provides the entry point for the solo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/duhenri9/solo-in-public/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
