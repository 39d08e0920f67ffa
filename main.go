package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/osfpages/clicmds"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	app := cli.NewApp()
	app.Name = "osfpages"
	app.Version = "0.1"
	app.Usage = "Check OSF pages from the command line"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
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
			Name:    "verify",
			Aliases: []string{"v"},
			Usage:   "navigate to a page and verify its identity element",
			Action:  clicmds.Verify,
			Flags:   clicmds.VerifyFlags(),
		},
		{
			Name:    "probe",
			Aliases: []string{"p"},
			Usage:   "report on a single locator of a page",
			Action:  clicmds.Probe,
			Flags:   clicmds.ProbeFlags(),
		},
		{
			Name:   "cleanup",
			Usage:  "remove browser profiles left by the gcd driver",
			Action: clicmds.Cleanup,
			Flags:  clicmds.CleanupFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("osfpages failed")
	}
}
