// Command mfront checks and exports material knowledge files written in the
// MFront domain specific languages.
package main

import (
	"fmt"
	"os"

	"github.com/thelfer/tfel-sub013/internal/cli"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Error(err.Error()))
		os.Exit(1)
	}
}
