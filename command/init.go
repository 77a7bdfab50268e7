package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tomatool/gherkinplan/internal/config"
	"github.com/tomatool/gherkinplan/internal/formatter"
	"github.com/urfave/cli/v2"
)

// Styles for interactive CLI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	unselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Bold(true)
)

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Initialize a new gherkinplan project",
	Description: `Create gherkinplan.yml, an example step catalog and an example feature.

Asks for the output format and whether validation should be strict,
unless --yes is given.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "overwrite existing files",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "skip the wizard and use defaults",
		},
		&cli.StringFlag{
			Name:  "dir",
			Value: ".",
			Usage: "project directory",
		},
	},
	Action: runInit,
}

type initStep int

const (
	stepFormat initStep = iota
	stepStrict
	stepConfirm
)

// initOptions are the answers of the wizard.
type initOptions struct {
	format string
	strict bool
}

type initModel struct {
	step    initStep
	cursor  int
	formats [][2]string
	opts    initOptions

	done      bool
	cancelled bool
}

func initialInitModel() initModel {
	return initModel{
		step:    stepFormat,
		formats: formatter.Available(),
		opts:    initOptions{format: "pretty"},
	}
}

func (m initModel) Init() tea.Cmd {
	return nil
}

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < m.getMaxCursor() {
				m.cursor++
			}

		case "enter":
			return m.handleEnter()
		}
	}

	return m, nil
}

func (m initModel) getMaxCursor() int {
	switch m.step {
	case stepFormat:
		return len(m.formats) - 1
	case stepStrict, stepConfirm:
		return 1
	default:
		return 0
	}
}

func (m initModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepFormat:
		m.opts.format = m.formats[m.cursor][0]
		m.step = stepStrict
		m.cursor = 0

	case stepStrict:
		m.opts.strict = m.cursor == 1
		m.step = stepConfirm
		m.cursor = 0

	case stepConfirm:
		if m.cursor == 0 {
			m.done = true
		} else {
			m.cancelled = true
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m initModel) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("gherkinplan init"))
	s.WriteString("\n")

	switch m.step {
	case stepFormat:
		s.WriteString(subtitleStyle.Render("How should plans be printed?"))
		s.WriteString("\n\n")
		for i, f := range m.formats {
			s.WriteString(m.option(i, f[0], f[1]))
		}

	case stepStrict:
		s.WriteString(subtitleStyle.Render("Should unmatched steps fail validation?"))
		s.WriteString("\n\n")
		s.WriteString(m.option(0, "No", "Report unmatched steps as warnings"))
		s.WriteString(m.option(1, "Yes", "Fail on unmatched steps outside work in progress"))

	case stepConfirm:
		s.WriteString(subtitleStyle.Render("Summary"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("  Output: %s\n", m.opts.format))
		s.WriteString(fmt.Sprintf("  Strict: %t\n\n", m.opts.strict))
		s.WriteString(m.option(0, "Create files", ""))
		s.WriteString(m.option(1, "Cancel", ""))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓ move • ENTER select • q quit"))
	return s.String()
}

func (m initModel) option(i int, name, desc string) string {
	cursor := "  "
	style := unselectedStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedStyle
	}

	line := cursor + style.Render(name)
	if i == m.cursor && desc != "" {
		line += helpStyle.Render("  " + desc)
	}
	return line + "\n"
}

func runInit(c *cli.Context) error {
	dir := c.String("dir")
	force := c.Bool("force")
	configPath := filepath.Join(dir, config.DefaultPath)

	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	opts := initOptions{format: "pretty"}
	if !c.Bool("yes") {
		p := tea.NewProgram(initialInitModel())
		result, err := p.Run()
		if err != nil {
			return fmt.Errorf("error running init: %w", err)
		}

		finalModel := result.(initModel)
		if finalModel.cancelled || !finalModel.done {
			fmt.Fprintln(c.App.Writer, "\nCancelled.")
			return nil
		}
		opts = finalModel.opts
	}

	files := []struct {
		path    string
		content string
	}{
		{configPath, generateConfig(opts)},
		{filepath.Join(dir, "steps.yml"), exampleCatalog},
		{filepath.Join(dir, "features", "example.feature"), exampleFeature},
	}

	out := c.App.Writer
	fmt.Fprintln(out)
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !force && f.path != configPath {
			fmt.Fprintf(out, "  skipped %s (exists)\n", f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(f.path), err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("creating %s: %w", f.path, err)
		}
		fmt.Fprintln(out, successStyle.Render("✓ Created "+f.path))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Describe your steps in steps.yml")
	fmt.Fprintln(out, "  2. Write your feature files")
	fmt.Fprintln(out, "  3. Run "+selectedStyle.Render("gherkinplan plan"))
	fmt.Fprintln(out)

	return nil
}

func generateConfig(opts initOptions) string {
	var s strings.Builder

	s.WriteString("version: 1\n\n")

	s.WriteString("settings:\n")
	s.WriteString(fmt.Sprintf("  output: %s\n", opts.format))
	s.WriteString(fmt.Sprintf("  strict: %t\n", opts.strict))
	s.WriteString("  anchored: true\n")
	s.WriteString("  not_found: true\n")
	s.WriteString("  log_level: warn\n")
	s.WriteString("\n")

	s.WriteString("features:\n")
	s.WriteString("  paths:\n")
	s.WriteString("    - ./features\n")
	s.WriteString("\n")

	s.WriteString("steps:\n")
	s.WriteString("  catalogs:\n")
	s.WriteString("    - ./steps.yml\n")
	s.WriteString("\n")

	s.WriteString("runs:\n")
	s.WriteString("  save: false\n")
	s.WriteString("  dir: .gherkinplan/runs\n")

	return s.String()
}

const exampleCatalog = `categories:
  - name: Coffee
    description: Ordering drinks at the counter
    steps:
      - pattern: 'there are (\d+) coffees left in the machine'
        description: Stock the machine
        example: Given there are 1 coffees left in the machine
        params: [int]
      - pattern: 'I have deposited \$(\d+)'
        description: Pay for a drink
        example: Given I have deposited $5
        params: [int]
      - pattern: 'I press the coffee button'
        description: Order a coffee
      - pattern: 'I should be served a coffee'
        description: Check the drink was served
`

const exampleFeature = `Feature: Serve coffee
  Coffee should not be served until paid for

  Background:
    Given there are 1 coffees left in the machine

  Scenario Outline: Buy coffee
    Given I have deposited $<price>
    When I press the coffee button
    Then I should be served a coffee

    Examples:
      | price |
      | 5     |
      | 10    |

  @wip
  Scenario: Buy tea
    Given I have deposited $2
    When I press the tea button
    Then I should be served a tea
`
