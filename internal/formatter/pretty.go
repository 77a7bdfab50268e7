package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomatool/gherkinplan/internal/plan"
)

var (
	featureStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	scenarioStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	readyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle  = lipgloss.NewStyle().Faint(true)
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	wipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// PrettyFormatter renders plans as an indented tree.
type PrettyFormatter struct {
	out io.Writer
}

// PrettyFormatterFunc creates a new PrettyFormatter
func PrettyFormatterFunc(out io.Writer) Formatter {
	return &PrettyFormatter{out: out}
}

// Feature renders one plan.
func (f *PrettyFormatter) Feature(ft *plan.FeatureTest) error {
	var s strings.Builder

	name := featureStyle.Render(ft.Name)
	switch {
	case ft.Wip:
		name = wipStyle.Render(ft.Name)
	case ft.Skip:
		name = skippedStyle.Render(ft.Name)
	}
	s.WriteString(name)
	if ft.URI != "" {
		s.WriteString(skippedStyle.Render("  # " + ft.URI))
	}
	s.WriteString("\n")

	for i := range ft.Scenarios {
		sc := &ft.Scenarios[i]
		s.WriteString("\n  ")
		switch {
		case sc.Wip, sc.ExamplesWIP:
			s.WriteString(wipStyle.Render(sc.Name))
		case sc.Skipped():
			s.WriteString(skippedStyle.Render(sc.Name))
		default:
			s.WriteString(scenarioStyle.Render(sc.Name))
		}
		s.WriteString("\n")

		for j := range sc.Steps {
			s.WriteString("    ")
			s.WriteString(renderStep(&sc.Steps[j]))
			s.WriteString("\n")
		}
	}
	s.WriteString("\n")

	_, err := io.WriteString(f.out, s.String())
	return err
}

func renderStep(st *plan.TestStep) string {
	line := st.Text
	if st.Keyword != "" {
		line = st.Keyword + " " + st.Text
	}

	switch {
	case !st.IsMatch:
		return missingStyle.Render("✗ " + line)
	case st.Skip:
		return skippedStyle.Render("- " + line)
	default:
		return readyStyle.Render("✓") + " " + line
	}
}

// Summary prints human-readable totals.
func (f *PrettyFormatter) Summary(stats plan.Stats) error {
	var s strings.Builder

	fmt.Fprintf(&s, "%d scenarios (%d ready", stats.Scenarios, stats.Scenarios-stats.ScenariosSkipped)
	if stats.ScenariosSkipped > 0 {
		fmt.Fprintf(&s, ", %d skipped", stats.ScenariosSkipped)
	}
	s.WriteString(")\n")

	fmt.Fprintf(&s, "%d steps (%d matched", stats.Steps, stats.Matched)
	if stats.Unmatched > 0 {
		fmt.Fprintf(&s, ", %s", missingStyle.Render(fmt.Sprintf("%d undefined", stats.Unmatched)))
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(&s, ", %d skipped", stats.Skipped)
	}
	s.WriteString(")\n")

	_, err := io.WriteString(f.out, s.String())
	return err
}
