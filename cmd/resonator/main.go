// Command resonator runs the Gaussian-beam cavity calculations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/resonator/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "resonator:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
