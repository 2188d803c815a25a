package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "seal CLI"
	app.Usage = "command line interface for deterministic bitcoin commitments and single-use seals"
	app.Commands = append(
		app.Commands,
		&commit,
		&verify,
		&sealidCmd,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[seal] %v\n", err)
	os.Exit(1)
}
