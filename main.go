package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/pagek/clicmds"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	app := cli.NewApp()
	app.Name = "pagek"
	app.Version = "0.1"
	app.Usage = "Check pages with page objects declared in toml"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
			Value: false,
		},
	}
	app.Before = func(ctx *cli.Context) error {
		if ctx.Bool("debug") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:    "check",
			Aliases: []string{"c"},
			Usage:   "open every declared page and run its checks",
			Action:  clicmds.Check,
			Flags:   clicmds.CheckFlags(),
		},
		{
			Name:    "results",
			Aliases: []string{"r"},
			Usage:   "print stored check results",
			Action:  clicmds.Results,
			Flags:   clicmds.ResultsFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("pagek failed")
	}
}
