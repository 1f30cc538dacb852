package main

import (
	"os"

	"github.com/dealerflow/dealerflow/cmd/dealerflow/commands"
)

// main is the entry point for the dealerflow CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
