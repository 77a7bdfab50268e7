package command

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomatool/gherkinplan/internal/runlog"
	"github.com/urfave/cli/v2"
)

var runsCommand = &cli.Command{
	Name:  "runs",
	Usage: "List saved plans, most recent first",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		runs, err := runlog.ListRuns(cfg.Runs.Dir)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		out := c.App.Writer
		if len(runs) == 0 {
			fmt.Fprintf(out, "No saved runs in %s (use 'gherkinplan plan --save')\n", cfg.Runs.Dir)
			return nil
		}

		nameStyle := lipgloss.NewStyle().Bold(true)
		faintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		for _, run := range runs {
			fmt.Fprintln(out, nameStyle.Render(run.Name))
			for _, f := range run.Files {
				fmt.Fprintf(out, "  %s %s\n", f.Path, faintStyle.Render(fmt.Sprintf("(%d bytes)", f.Size)))
			}
		}
		return nil
	},
}
