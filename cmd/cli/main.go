// Package main is the entry point for the tablehub admin CLI.
package main

import (
	"os"

	"tablehub/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
