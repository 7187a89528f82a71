package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run with `go run ./tools/context-cli`

func main() {
	app := &cli.App{
		Name:     "Fidelio Context Toolbox",
		HelpName: "context",
		Usage:    "run and inspect the versioned context store",
		Flags:    []cli.Flag{},
		Commands: []*cli.Command{
			&serveCommand,
			&getInfoCommand,
			&replayCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
