package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/executor"
	"github.com/tomatool/gherkinplan/internal/plan"
	"github.com/tomatool/gherkinplan/internal/stepdef"
	"github.com/tomatool/gherkinplan/internal/world"
	"github.com/urfave/cli/v2"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Walk generated plans through the executor",
	ArgsUsage: "[paths...]",
	Description: `Execute every plan step by step. Each scenario gets a fresh world that
is torn down afterwards. Catalog steps have no implementation and report
pending; skipped steps are never run.`,
	Action: runRun,
}

// runResult counts step outcomes of an execution.
type runResult struct {
	Passed  int
	Pending int
	Skipped int
	Failed  int
}

func runRun(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}

	plans, err := ws.plans(c.Args().Slice())
	if err != nil {
		return err
	}

	ex, err := executor.New(world.Factory)
	if err != nil {
		return err
	}

	var total runResult
	for _, ft := range plans {
		res, err := execute(c.Context, ex, ft, c.App.Writer)
		if err != nil {
			return err
		}
		total.Passed += res.Passed
		total.Pending += res.Pending
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}

	fmt.Fprintf(c.App.Writer, "%d steps (%d passed, %d pending, %d skipped, %d failed)\n",
		total.Passed+total.Pending+total.Skipped+total.Failed,
		total.Passed, total.Pending, total.Skipped, total.Failed)

	if total.Failed > 0 {
		return fmt.Errorf("%d step(s) failed", total.Failed)
	}
	return nil
}

// execute runs every scenario of ft. A failing or pending step ends its
// scenario; the remaining steps count as skipped.
func execute(ctx context.Context, ex *executor.Executor, ft *plan.FeatureTest, out io.Writer) (runResult, error) {
	var res runResult

	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	fmt.Fprintln(out, ft.Name)
	if ft.Skip {
		for i := range ft.Scenarios {
			res.Skipped += len(ft.Scenarios[i].Steps)
		}
		return res, nil
	}

	for i := range ft.Scenarios {
		sc := &ft.Scenarios[i]
		fmt.Fprintf(out, "  %s\n", sc.Name)

		err := ex.Scenario(ctx, func(ctx context.Context) error {
			stopped := false
			for j := range sc.Steps {
				st := &sc.Steps[j]
				if stopped {
					res.Skipped++
					continue
				}

				ran, err := ex.Run(ctx, st)
				switch {
				case errors.Is(err, executor.ErrInvalidStep):
					return err
				case errors.Is(err, stepdef.ErrPending):
					res.Pending++
					stopped = true
					fmt.Fprintf(out, "    %s\n", pendingStyle.Render("? "+st.Text))
				case err != nil:
					res.Failed++
					stopped = true
					fmt.Fprintf(out, "    %s\n", failStyle.Render("✗ "+st.Text+": "+err.Error()))
				case !ran:
					res.Skipped++
				default:
					res.Passed++
				}
			}
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("%s: %w", sc.Name, err)
		}
		log.Debug().Str("scenario", sc.Name).Msg("scenario executed")
	}

	return res, nil
}
