// Package main is the entry point for the comunicado CLI application.
package main

import (
	"os"

	"github.com/olafkfreund/comunicado-sub004/internal/adapter/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
