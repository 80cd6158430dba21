// Package main provides the glaze command.
package main

import (
	"os"

	"github.com/leapstack-labs/glaze/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
