// Package main is the entry point for forget, a sticky note and todo
// board for the terminal.
//
// Usage:
//
//	forget [tick-ms]
//	forget list [title]
//	forget config path|init|validate
package main

import (
	"os"

	"github.com/riordanpawley/forget/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
