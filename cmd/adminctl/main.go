package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/materials-admin/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own failures; only cobra's errors (unknown
		// flags, missing arguments) still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
