// Command gsuite is the Google Workspace SDK command line interface.
package main

import (
	"os"

	"github.com/PabloAlaniz/google-suite/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
