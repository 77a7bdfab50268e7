package feature

import (
	"fmt"
	"io"
	"os"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
)

// Parse reads Gherkin source and converts it into a Feature. uri is recorded
// on the result and used in error messages.
func Parse(r io.Reader, uri string) (*Feature, error) {
	doc, err := gherkin.ParseGherkinDocument(r, (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", uri, err)
	}
	if doc.Feature == nil {
		return nil, fmt.Errorf("%s: %w: no Feature found", uri, ErrInvalidDocument)
	}

	f := fromMessages(doc.Feature)
	f.URI = uri
	return f, nil
}

// ParseFile reads and parses a .feature file.
func ParseFile(path string) (*Feature, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature file: %w", err)
	}
	defer file.Close()

	return Parse(file, path)
}

func fromMessages(mf *messages.Feature) *Feature {
	f := &Feature{
		Name:      mf.Name,
		Tags:      tagNames(mf.Tags),
		Scenarios: []Scenario{},
	}

	for _, child := range mf.Children {
		switch {
		case child.Background != nil:
			bg := backgroundScenario(child.Background)
			f.Background = &bg
		case child.Scenario != nil:
			f.Scenarios = append(f.Scenarios, scenarioFromMessages(child.Scenario))
		case child.Rule != nil:
			f.Scenarios = append(f.Scenarios, flattenRule(child.Rule)...)
		}
	}

	return f
}

// flattenRule lifts the scenarios of a rule into the feature. Rule tags are
// inherited and the rule background runs ahead of each scenario's own steps.
func flattenRule(rule *messages.Rule) []Scenario {
	ruleTags := tagNames(rule.Tags)

	var background []Step
	var scenarios []Scenario
	for _, child := range rule.Children {
		switch {
		case child.Background != nil:
			background = stepsFromMessages(child.Background.Steps)
		case child.Scenario != nil:
			scenarios = append(scenarios, scenarioFromMessages(child.Scenario))
		}
	}

	for i := range scenarios {
		sc := &scenarios[i]
		for _, t := range ruleTags {
			if !HasTag(sc.Tags, t) {
				sc.Tags = append(sc.Tags, t)
			}
		}
		if len(background) > 0 {
			steps := make([]Step, 0, len(background)+len(sc.Steps))
			for _, s := range background {
				steps = append(steps, s.Clone())
			}
			sc.Steps = append(steps, sc.Steps...)
		}
	}

	return scenarios
}

func backgroundScenario(bg *messages.Background) Scenario {
	return Scenario{
		Name:  bg.Name,
		Steps: stepsFromMessages(bg.Steps),
	}
}

func scenarioFromMessages(ms *messages.Scenario) Scenario {
	sc := Scenario{
		Name:    ms.Name,
		Tags:    tagNames(ms.Tags),
		Steps:   stepsFromMessages(ms.Steps),
		Outline: isOutlineKeyword(ms.Keyword) || len(ms.Examples) > 0,
	}

	for _, ex := range ms.Examples {
		table := ExampleTable{
			Name: ex.Name,
			Tags: tagNames(ex.Tags),
		}
		if ex.TableHeader != nil {
			table.Rows = append(table.Rows, rowCells(ex.TableHeader))
			for _, row := range ex.TableBody {
				table.Rows = append(table.Rows, rowCells(row))
			}
		}
		sc.Examples = append(sc.Examples, table)
	}

	return sc
}

func stepsFromMessages(in []*messages.Step) []Step {
	steps := make([]Step, 0, len(in))
	for _, ms := range in {
		s := Step{
			Keyword: strings.TrimSpace(ms.Keyword),
			Text:    ms.Text,
		}
		if ms.DocString != nil {
			s.DocString = &DocString{
				MediaType: ms.DocString.MediaType,
				Content:   ms.DocString.Content,
			}
		}
		if ms.DataTable != nil {
			for _, row := range ms.DataTable.Rows {
				s.Table = append(s.Table, rowCells(row))
			}
		}
		steps = append(steps, s)
	}
	return steps
}

func isOutlineKeyword(keyword string) bool {
	k := strings.TrimSpace(keyword)
	return k == "Scenario Outline" || k == "Scenario Template"
}

func rowCells(row *messages.TableRow) []string {
	cells := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		cells = append(cells, c.Value)
	}
	return cells
}

func tagNames(tags []*messages.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
