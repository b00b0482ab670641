package main

import "github.com/urfave/cli/v3"

var (
	modelPath string
	verbosity int64
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to tokenizer model file",
			Destination: &modelPath,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "v",
			Usage:       "log verbosity (0 quiet, 1 rounds summary, 2 per-merge trace)",
			Destination: &verbosity,
		},
	}
}
