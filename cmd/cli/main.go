// Package main is the entry point for the bank CLI binary.
package main

import (
	"os"

	"bank-demo/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
