// pre is the command line interface of the pairing based proxy re-encryption
// library.
package main

import (
	"fmt"
	"os"

	precli "github.com/drand/pre/internal/pre-cli"
)

func main() {
	app := precli.CLI()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
