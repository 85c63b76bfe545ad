// Package main is the entry point for the lifeos CLI.
package main

import (
	"os"

	"github.com/dvloznov/lifeos/cmd/lifeos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
