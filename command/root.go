package command

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/config"
	"github.com/tomatool/gherkinplan/internal/version"
	"github.com/urfave/cli/v2"
)

func Run(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "gherkinplan",
		Usage:   "Turn Gherkin features into executable test plans",
		Version: version.Version,
		Description: `gherkinplan reads Gherkin feature files, expands scenario outlines,
matches every step against registered step definitions and prints the
resulting test plan. Unknown steps and work in progress are skipped,
never silently run.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "config file path",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error); defaults to settings.log_level",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			initCommand,
			planCommand,
			validateCommand,
			runCommand,
			stepsCommand,
			docsCommand,
			runsCommand,
			versionCommand,
		},
	}
}

func setupLogging(c *cli.Context) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	level := zerolog.WarnLevel
	if c.IsSet("log-level") {
		l, err := zerolog.ParseLevel(c.String("log-level"))
		if err != nil {
			return err
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)
	return nil
}
