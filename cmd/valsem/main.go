// Command valsem compiles composite type declarations and runs conformance
// scenarios against the substitutability engine.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/valsem/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// Commands print their own errors; flag and usage errors do not.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
