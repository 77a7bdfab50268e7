package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomatool/gherkinplan/internal/stepdef"
	"github.com/urfave/cli/v2"
)

var stepsCommand = &cli.Command{
	Name:  "steps",
	Usage: "List the step definitions of the configured catalogs",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "Filter steps by keyword",
		},
		&cli.StringFlag{
			Name:    "category",
			Aliases: []string{"t"},
			Usage:   "Filter by category name",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output in JSON format",
		},
	},
	Action: runSteps,
}

func runSteps(ctx *cli.Context) error {
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	categories := filterCategories(ws.catalog.Categories,
		strings.ToLower(ctx.String("filter")),
		strings.ToLower(ctx.String("category")))

	out := ctx.App.Writer

	if ctx.Bool("json") {
		output, err := json.MarshalIndent(categories, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	faintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	patternStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	for _, cat := range categories {
		fmt.Fprintf(out, "\n%s\n", nameStyle.Render(cat.Name))
		if cat.Description != "" {
			fmt.Fprintf(out, "%s\n", faintStyle.Render(cat.Description))
		}
		fmt.Fprintln(out)

		for _, step := range cat.Steps {
			if step.Description != "" {
				fmt.Fprintf(out, "  %s\n", lipgloss.NewStyle().Bold(true).Render(step.Description))
			}
			fmt.Fprintf(out, "  %s\n", patternStyle.Render(step.Pattern))

			// Show first line of example
			if step.Example != "" {
				exampleLines := strings.Split(step.Example, "\n")
				fmt.Fprintf(out, "  %s\n", faintStyle.Render("Example: "+exampleLines[0]))
			}
			fmt.Fprintln(out)
		}
	}

	return nil
}

func filterCategories(categories []stepdef.StepCategory, filter, category string) []stepdef.StepCategory {
	filtered := []stepdef.StepCategory{}

	for _, cat := range categories {
		// Filter by category (match against name or prefix)
		if category != "" {
			nameLower := strings.ToLower(cat.Name)
			if nameLower != category && !strings.HasPrefix(nameLower, category) {
				continue
			}
		}

		var matchingSteps []stepdef.StepDef
		for _, step := range cat.Steps {
			// Filter by keyword
			if filter != "" {
				if !strings.Contains(strings.ToLower(step.Description), filter) &&
					!strings.Contains(strings.ToLower(step.Pattern), filter) {
					continue
				}
			}
			matchingSteps = append(matchingSteps, step)
		}

		if len(matchingSteps) == 0 {
			continue
		}

		filtered = append(filtered, stepdef.StepCategory{
			Name:        cat.Name,
			Description: cat.Description,
			Steps:       matchingSteps,
		})
	}

	return filtered
}
