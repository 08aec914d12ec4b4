// Package main is the entry point for the semantify CLI.
package main

import (
	"os"

	"github.com/jmylchreest/semantify/cmd/semantify/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
