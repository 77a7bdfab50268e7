package command

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/formatter"
	"github.com/tomatool/gherkinplan/internal/runlog"
	"github.com/urfave/cli/v2"
)

var planCommand = &cli.Command{
	Name:      "plan",
	Usage:     "Generate test plans for feature files",
	ArgsUsage: "[paths...]",
	Description: `Generate a test plan for every feature file found in the given paths
(or features.paths from the config). Steps are matched against the step
catalogs; unknown steps and the steps after them are skipped.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format (pretty, json, events)",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "save the rendered plan into a new run directory",
		},
	},
	Action: runPlan,
}

var planFileExt = map[string]string{
	"pretty": "txt",
	"json":   "json",
	"events": "log",
}

func runPlan(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}

	format := ws.cfg.Settings.Output
	if c.IsSet("format") {
		format = c.String("format")
	}
	newFormatter, err := formatter.Find(format)
	if err != nil {
		return err
	}

	plans, err := ws.plans(c.Args().Slice())
	if err != nil {
		return err
	}

	out := c.App.Writer
	save := ws.cfg.Runs.Save
	if c.IsSet("save") {
		save = c.Bool("save")
	}
	if save {
		run, err := runlog.New(ws.cfg.Runs.Dir)
		if err != nil {
			return err
		}
		f, err := run.Create("plan." + planFileExt[format])
		if err != nil {
			return fmt.Errorf("creating plan file: %w", err)
		}
		defer f.Close()
		out = io.MultiWriter(out, f)
		log.Info().Str("run", run.ID).Str("dir", run.Dir).Msg("saving plan")
	}

	fmtr := newFormatter(out)
	for _, ft := range plans {
		if err := fmtr.Feature(ft); err != nil {
			return err
		}
	}
	return fmtr.Summary(totals(plans))
}
