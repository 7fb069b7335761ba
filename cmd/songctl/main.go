// songctl is an operator tool for the song catalog: bulk-seed a directory
// of audio files through the same upload flow the API uses, inspect the
// songs table, and list the storage buckets.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ajay-develops/spotify-clone/internal/config"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "songctl",
	})

	cfg := config.Load()

	app := &cli.Command{
		Name:  "songctl",
		Usage: "Operator tooling for the song catalog",
		Commands: []*cli.Command{
			seedCommand(cfg, logger),
			checkCommand(cfg, logger),
			bucketsCommand(cfg, logger),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}
