package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:           "flame64",
		Usage:          "ULTRAHLE chaos core launcher",
		Version:        "0.1.0",
		DefaultCommand: "run",
		Commands: []*cli.Command{
			runCmd(),
			headlessCmd(),
			infoCmd(),
			libraryCmd(),
		},
	}
}

func main() {
	if err := rootCmd().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
