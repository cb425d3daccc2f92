package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var server srv

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "floorlottery"
	app.Usage = "论坛楼层抽奖"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path of a TOML config file",
			EnvVars: []string{"LOTTERY_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "print info logs",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:    server.draw,
			Name:      "draw",
			Usage:     "Run a draw and print the result",
			ArgsUsage: "<topic_url> <winners_count>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "terminal",
					Aliases: []string{"t"},
					Usage:   "启用终端交互模式",
				},
				&cli.IntFlag{
					Name:  "last-floor",
					Usage: "inclusive cutoff floor",
				},
				&cli.BoolFlag{
					Name:  "drand",
					Usage: "mix drand randomness into the seed",
				},
				&cli.BoolFlag{
					Name:  "json",
					Usage: "print the API response instead of the report",
				},
			},
			Category:    "Lottery",
			Description: `Fetches the topic and its eligible floors, derives the seed and prints the winning floors.`,
		},
		{
			Action:      server.serve,
			Name:        "serve",
			Usage:       "Start the HTTP API",
			Category:    "Lottery",
			Description: `Serves the draw API and, when storage is configured, the draw ledger.`,
		},
		{
			Action:      server.verify,
			Name:        "verify",
			Usage:       "Recompute a recorded draw",
			ArgsUsage:   "<draw_id>",
			Category:    "Ledger",
			Description: `Recomputes the seed and winners of a draw stored in the ledger.`,
		},
	}
	return app
}
