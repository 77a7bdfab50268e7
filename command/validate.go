package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/plan"
	"github.com/urfave/cli/v2"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Validate configuration, step catalogs and feature files",
	ArgsUsage: "[paths...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "fail on unmatched steps in scenarios that are not work in progress",
		},
	},
	Action: runValidate,
}

// ValidationResult holds the result of a validation check
type ValidationResult struct {
	Category   string
	Item       string
	Status     string // "ok", "warning", "error"
	Message    string
	Suggestion string
}

// Validator performs all validation checks
type Validator struct {
	ws      *workspace
	paths   []string
	strict  bool
	results []ValidationResult
}

func runValidate(c *cli.Context) error {
	ws, err := loadWorkspace(c)
	if err != nil {
		return err
	}

	v := &Validator{
		ws:     ws,
		paths:  c.Args().Slice(),
		strict: ws.cfg.Settings.Strict,
	}
	if c.IsSet("strict") {
		v.strict = c.Bool("strict")
	}

	v.validate()
	return v.report(c.App.Writer)
}

// validate performs all validation checks
func (v *Validator) validate() {
	v.validateCatalogs()
	v.validateFeatureFiles()
}

func (v *Validator) validateCatalogs() {
	if len(v.ws.cfg.Steps.Catalogs) == 0 {
		v.add(ValidationResult{
			Category:   "Steps",
			Item:       "(none)",
			Status:     "warning",
			Message:    "no step catalogs configured",
			Suggestion: "Add steps.catalogs to your config, or run 'gherkinplan init'",
		})
		return
	}

	v.add(ValidationResult{
		Category: "Steps",
		Item:     strings.Join(v.ws.cfg.Steps.Catalogs, ", "),
		Status:   "ok",
		Message:  fmt.Sprintf("%d step definition(s)", v.ws.defs.Len()),
	})
}

func (v *Validator) validateFeatureFiles() {
	paths := v.paths
	if len(paths) == 0 {
		paths = v.ws.cfg.Features.Paths
	}

	var files []string
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			v.add(ValidationResult{
				Category:   "Features",
				Item:       path,
				Status:     "warning",
				Message:    "path does not exist",
				Suggestion: fmt.Sprintf("Create the directory: mkdir -p %s", path),
			})
			continue
		}
		found, err := feature.Discover([]string{path})
		if err != nil {
			v.add(ValidationResult{Category: "Features", Item: path, Status: "error", Message: err.Error()})
			continue
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		v.add(ValidationResult{
			Category:   "Features",
			Item:       "(none)",
			Status:     "warning",
			Message:    "no feature files found",
			Suggestion: "Create .feature files in your features directory",
		})
		return
	}

	for _, file := range files {
		v.validateFeatureFile(file)
	}
}

func (v *Validator) validateFeatureFile(path string) {
	ft, err := v.ws.generate(path)
	if err != nil {
		v.add(ValidationResult{
			Category:   "Features",
			Item:       filepath.Base(path),
			Status:     "error",
			Message:    err.Error(),
			Suggestion: "Check Gherkin syntax: https://cucumber.io/docs/gherkin/reference/",
		})
		return
	}

	undefined := undefinedSteps(ft)
	stats := ft.Stats()

	switch {
	case len(undefined) > 0:
		// Show first few undefined steps
		shown := undefined
		if len(shown) > 3 {
			shown = shown[:3]
		}
		status := "warning"
		if v.strict {
			status = "error"
		}
		v.add(ValidationResult{
			Category:   "Features",
			Item:       filepath.Base(path),
			Status:     status,
			Message:    fmt.Sprintf("%d undefined step(s): %s", len(undefined), strings.Join(shown, ", ")),
			Suggestion: "Run 'gherkinplan steps' to see available steps",
		})
	case ft.Skip:
		v.add(ValidationResult{
			Category: "Features",
			Item:     filepath.Base(path),
			Status:   "warning",
			Message:  fmt.Sprintf("all %d scenario(s) skipped", stats.Scenarios),
		})
	default:
		v.add(ValidationResult{
			Category: "Features",
			Item:     filepath.Base(path),
			Status:   "ok",
			Message:  fmt.Sprintf("%d scenario(s), %d step(s)", stats.Scenarios, stats.Steps),
		})
	}
}

// undefinedSteps returns the distinct texts of unmatched steps in scenarios
// that are not work in progress, either by tag or by their example table. A
// WIP feature has none.
func undefinedSteps(ft *plan.FeatureTest) []string {
	if ft.Wip {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for i := range ft.Scenarios {
		sc := &ft.Scenarios[i]
		if sc.Wip || sc.ExamplesWIP {
			continue
		}
		for _, st := range sc.Unmatched() {
			text := strings.TrimPrefix(st.Text, plan.PrefixNotFound)
			if !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		}
	}
	return out
}

func (v *Validator) add(r ValidationResult) {
	v.results = append(v.results, r)
}

func (v *Validator) report(out io.Writer) error {
	categoryStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	suggestionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)

	// Group results by category
	categories := make(map[string][]ValidationResult)
	order := []string{}
	for _, r := range v.results {
		if _, exists := categories[r.Category]; !exists {
			order = append(order, r.Category)
		}
		categories[r.Category] = append(categories[r.Category], r)
	}

	var s strings.Builder
	for _, category := range order {
		s.WriteString(categoryStyle.Render(category))
		s.WriteString("\n")

		for _, r := range categories[category] {
			var icon string
			switch r.Status {
			case "ok":
				icon = okStyle.Render("✓")
			case "warning":
				icon = warnStyle.Render("!")
			case "error":
				icon = errStyle.Render("✗")
			}

			s.WriteString(fmt.Sprintf("  %s %s", icon, r.Item))
			if r.Message != "" {
				s.WriteString(fmt.Sprintf(": %s", r.Message))
			}
			s.WriteString("\n")

			if r.Suggestion != "" {
				s.WriteString(fmt.Sprintf("    %s\n", suggestionStyle.Render("→ "+r.Suggestion)))
			}
		}
		s.WriteString("\n")
	}

	errorCount, warningCount, okCount := v.counts()
	summaryParts := []string{
		okStyle.Render(fmt.Sprintf("%d passed", okCount)),
	}
	if warningCount > 0 {
		summaryParts = append(summaryParts, warnStyle.Render(fmt.Sprintf("%d warnings", warningCount)))
	}
	if errorCount > 0 {
		summaryParts = append(summaryParts, errStyle.Render(fmt.Sprintf("%d errors", errorCount)))
	}
	s.WriteString(fmt.Sprintf("Summary: %s\n", strings.Join(summaryParts, ", ")))

	if _, err := io.WriteString(out, s.String()); err != nil {
		return err
	}
	if errorCount > 0 {
		return fmt.Errorf("validation failed with %d error(s)", errorCount)
	}
	return nil
}

func (v *Validator) counts() (errors, warnings, ok int) {
	for _, r := range v.results {
		switch r.Status {
		case "error":
			errors++
		case "warning":
			warnings++
		case "ok":
			ok++
		}
	}
	return errors, warnings, ok
}
