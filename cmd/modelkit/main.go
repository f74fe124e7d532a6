// Command modelkit validates entity schemas, generates typed wrappers and
// runs collection scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/modelkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
