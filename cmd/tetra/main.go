// Command tetra compiles, inspects and serves responsive slot-game layouts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/tetra/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Commands report their own errors through the formatter; only
		// errors raised by cobra itself (bad flags, unknown commands)
		// still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
