// Command telegen generates metric point conversions for annotated Go
// records and record schemas.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/telegen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
