// Package main is the entry point for the relq demo CLI binary.
package main

import (
	"os"

	"relq/pkg/relqcli"
)

func main() {
	os.Exit(relqcli.Execute())
}
