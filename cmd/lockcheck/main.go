// Command lockcheck finds lock-order inversions across a whole Go
// program, per the generic lock type(s) configured in lockcheck.toml
// (SPEC_FULL.md §6.3).
package main

import (
	"os"

	"lockcheck/cmd/lockcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
