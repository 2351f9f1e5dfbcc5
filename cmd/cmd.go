package main

import (
	"github.com/urfave/cli/v3"
)

// serveCommand starts the HTTP server for browser-driven downloads.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// fetchCommand runs a batch download from the terminal.
func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch videos or playlists as MP3s and package them into a zip",
		ArgsUsage: "[url|id ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read references from a file, one per line",
			},
			&cli.StringSliceFlag{
				Name:    "playlist",
				Aliases: []string{"l"},
				Usage:   "Playlist URL to expand (repeatable)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent downloads (1-16)",
				Value:   0,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output zip path",
				Value:   "youtube_batch.zip",
			},
		},
		Action: r.Fetch,
	}
}

// expandCommand resolves a playlist into its item URLs.
func expandCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "Print the watch URLs of a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: r.Expand,
	}
}

// historyCommand lists recorded batches from the local database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent batch runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of batches to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "batch",
				Usage: "Show the items of a single batch by ID",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Batch report format (text, csv, markdown)",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to write the configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
