package generator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/plan"
	"github.com/tomatool/gherkinplan/internal/stepdef"
)

type world struct{}

func definitions(t *testing.T) *stepdef.Definitions {
	t.Helper()
	d := stepdef.New()
	require.NoError(t, d.Step(`coffee costs \$(\d+)`, func(w *world, price int) {}))
	require.NoError(t, d.Step(`I should be served coffee`, func(w *world) {}))
	require.NoError(t, d.Step(`a known step`, func(w *world) {}))
	require.NoError(t, d.Step(`another known step`, func(w *world) {}))
	return d
}

func steps(texts ...string) []feature.Step {
	out := make([]feature.Step, 0, len(texts))
	for _, t := range texts {
		out = append(out, feature.Step{Keyword: "Given", Text: t})
	}
	return out
}

func generate(t *testing.T, f *feature.Feature, opts ...Option) *plan.FeatureTest {
	t.Helper()
	g, err := New(f, definitions(t), opts...)
	require.NoError(t, err)
	return g.Generate()
}

func texts(sc plan.ScenarioTest) []string {
	out := make([]string, 0, len(sc.Steps))
	for _, st := range sc.Steps {
		out = append(out, st.Text)
	}
	return out
}

func skips(sc plan.ScenarioTest) []bool {
	out := make([]bool, 0, len(sc.Steps))
	for _, st := range sc.Steps {
		out = append(out, st.Skip)
	}
	return out
}

func coffeeFeature() *feature.Feature {
	return &feature.Feature{
		Name: "Coffee",
		Scenarios: []feature.Scenario{{
			Name:  "Buy coffee",
			Steps: steps("coffee costs $<price>", "I should be served coffee"),
			Examples: []feature.ExampleTable{
				{Rows: [][]string{{"price"}, {"5"}, {"10"}}},
			},
		}},
	}
}

func TestGenerate_Coffee(t *testing.T) {
	ft := generate(t, coffeeFeature())

	assert.Equal(t, "Feature: Coffee", ft.Name)
	assert.False(t, ft.Skip)
	assert.False(t, ft.Wip)
	require.Len(t, ft.Scenarios, 2)

	first, second := ft.Scenarios[0], ft.Scenarios[1]
	assert.Equal(t, "Scenario Outline: Buy coffee #1", first.Name)
	assert.Equal(t, "Scenario Outline: Buy coffee #2", second.Name)

	assert.Equal(t, []string{"coffee costs $5", "I should be served coffee"}, texts(first))
	assert.Equal(t, []string{"coffee costs $10", "I should be served coffee"}, texts(second))
	assert.Equal(t, []bool{false, false}, skips(first))

	assert.True(t, first.Steps[0].IsMatch)
	assert.Equal(t, []any{5}, first.Steps[0].Parameters)
	assert.Equal(t, []any{10}, second.Steps[0].Parameters)
	assert.Equal(t, []any{}, first.Steps[1].Parameters)
}

func TestGenerate_UnknownStepSkipsRest(t *testing.T) {
	f := &feature.Feature{
		Name: "Unknown",
		Scenarios: []feature.Scenario{{
			Name:  "Partly defined",
			Steps: steps("a known step", "an unknown step", "another known step", "a step nobody wrote"),
		}},
	}

	ft := generate(t, f)
	sc := ft.Scenarios[0]
	require.Len(t, sc.Steps, 4)

	assert.Equal(t, "Scenario: Partly defined", sc.Name)
	assert.Equal(t, []string{
		"a known step",
		"an unknown step",
		"(SKIPPED) another known step",
		"a step nobody wrote",
	}, texts(sc))
	assert.Equal(t, []bool{false, true, true, true}, skips(sc))

	unknown := sc.Steps[1]
	assert.False(t, unknown.IsMatch)
	assert.Equal(t, []any{}, unknown.Parameters)
	assert.Nil(t, unknown.Handler)

	assert.True(t, sc.Steps[2].IsMatch)
	assert.False(t, ft.Skip)
}

func TestGenerate_BackgroundUnmatched(t *testing.T) {
	f := coffeeFeature()
	f.Background = &feature.Scenario{Steps: steps("an unknown step")}
	f.Scenarios = append(f.Scenarios, feature.Scenario{Name: "Plain", Steps: steps("a known step")})

	ft := generate(t, f)
	require.Len(t, ft.Scenarios, 3)

	for _, sc := range ft.Scenarios {
		assert.False(t, sc.Steps[0].IsMatch, sc.Name)
		for _, st := range sc.Steps[1:] {
			assert.True(t, st.IsMatch, sc.Name)
			assert.True(t, st.Skip, sc.Name)
			assert.Contains(t, st.Text, plan.PrefixSkipped)
		}
	}
	assert.True(t, ft.Skip)
}

func TestGenerate_BackgroundMatched(t *testing.T) {
	f := &feature.Feature{
		Name:       "Background",
		Background: &feature.Scenario{Steps: steps("a known step")},
		Scenarios: []feature.Scenario{
			{Name: "One", Steps: steps("another known step")},
			{Name: "Two", Steps: steps("another known step")},
		},
	}

	ft := generate(t, f)
	for _, sc := range ft.Scenarios {
		assert.Equal(t, []string{"a known step", "another known step"}, texts(sc))
		assert.Equal(t, []bool{false, false}, skips(sc))
	}

	// every scenario gets its own background steps
	ft.Scenarios[0].Steps[0].Text = "changed"
	assert.Equal(t, "a known step", ft.Scenarios[1].Steps[0].Text)
}

func TestGenerate_OutlineWithoutUsableExamples(t *testing.T) {
	tests := []struct {
		name     string
		examples []feature.ExampleTable
	}{
		{"no tables", nil},
		{"header only", []feature.ExampleTable{{Rows: [][]string{{"price"}}}}},
		{"only WIP tables", []feature.ExampleTable{{Tags: []string{feature.WIPTag}, Rows: [][]string{{"price"}, {"5"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := coffeeFeature()
			f.Scenarios[0].Outline = true
			f.Scenarios[0].Examples = tt.examples

			ft := generate(t, f)
			require.Len(t, ft.Scenarios, 1)

			sc := ft.Scenarios[0]
			assert.Equal(t, "Scenario Outline: Buy coffee", sc.Name)
			assert.Equal(t, []bool{true, true}, skips(sc))
			assert.Equal(t, "coffee costs $<price>", sc.Steps[0].Text)
			assert.Equal(t, "(SKIPPED) I should be served coffee", sc.Steps[1].Text)
			assert.True(t, ft.Skip)
		})
	}
}

func TestGenerate_WIPExampleTable(t *testing.T) {
	f := coffeeFeature()
	f.Scenarios[0].Examples = append(f.Scenarios[0].Examples, feature.ExampleTable{
		Name: "later",
		Tags: []string{feature.WIPTag},
		Rows: [][]string{{"price"}, {"20"}},
	})

	ft := generate(t, f)
	require.Len(t, ft.Scenarios, 3)

	wip := ft.Scenarios[2]
	assert.Equal(t, "Scenario Outline: Buy coffee: later #1", wip.Name)
	assert.False(t, wip.Wip)
	assert.True(t, wip.ExamplesWIP)
	assert.False(t, ft.Scenarios[0].ExamplesWIP)
	assert.Equal(t, []bool{true, true}, skips(wip))
	assert.Equal(t, "(SKIPPED) coffee costs $20", wip.Steps[0].Text)

	assert.Equal(t, []bool{false, false}, skips(ft.Scenarios[0]))
	assert.False(t, ft.Skip)
}

func TestGenerate_WIPScenario(t *testing.T) {
	f := &feature.Feature{
		Name: "WIP",
		Scenarios: []feature.Scenario{
			{Name: "Later", Tags: []string{feature.WIPTag}, Steps: steps("a known step", "an unknown step")},
			{Name: "Now", Steps: steps("a known step")},
		},
	}

	ft := generate(t, f)
	later, now := ft.Scenarios[0], ft.Scenarios[1]

	assert.Equal(t, "(WIP) Scenario: Later", later.Name)
	assert.True(t, later.Wip)
	assert.Equal(t, []bool{true, true}, skips(later))
	assert.Equal(t, []string{"(SKIPPED) a known step", "an unknown step"}, texts(later))

	assert.Equal(t, "Scenario: Now", now.Name)
	assert.False(t, now.Wip)
	assert.Equal(t, []bool{false}, skips(now))

	assert.False(t, ft.Skip)
}

func TestGenerate_WIPFeature(t *testing.T) {
	f := coffeeFeature()
	f.Tags = []string{feature.WIPTag}

	ft := generate(t, f)
	assert.Equal(t, "(WIP) Feature: Coffee", ft.Name)
	assert.True(t, ft.Wip)
	assert.True(t, ft.Skip)

	// scenarios of a WIP feature are generated as usual
	assert.Equal(t, []bool{false, false}, skips(ft.Scenarios[0]))
}

func TestGenerate_FeatureSkip(t *testing.T) {
	tests := []struct {
		name      string
		scenarios []feature.Scenario
		skip      bool
	}{
		{"no scenarios", []feature.Scenario{}, true},
		{"all unmatched", []feature.Scenario{{Name: "x", Steps: steps("an unknown step")}}, true},
		{"all WIP", []feature.Scenario{{Name: "x", Tags: []string{feature.WIPTag}, Steps: steps("a known step")}}, true},
		{"one ready", []feature.Scenario{
			{Name: "x", Steps: steps("an unknown step")},
			{Name: "y", Steps: steps("a known step")},
		}, false},
		{"first step ready", []feature.Scenario{{Name: "x", Steps: steps("a known step", "an unknown step")}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := generate(t, &feature.Feature{Name: "Skip", Scenarios: tt.scenarios})
			assert.Equal(t, tt.skip, ft.Skip)
			assert.False(t, ft.Wip)
		})
	}
}

func withoutHandlers(ft *plan.FeatureTest) *plan.FeatureTest {
	for i := range ft.Scenarios {
		for j := range ft.Scenarios[i].Steps {
			ft.Scenarios[i].Steps[j].Handler = nil
		}
	}
	return ft
}

func TestGenerate_Idempotent(t *testing.T) {
	f := coffeeFeature()
	f.Background = &feature.Scenario{Steps: steps("a known step")}
	f.Scenarios = append(f.Scenarios, feature.Scenario{Name: "Broken", Steps: steps("an unknown step", "a known step")})
	source := f.Clone()

	g, err := New(f, definitions(t))
	require.NoError(t, err)

	first := withoutHandlers(g.Generate())
	second := withoutHandlers(g.Generate())
	assert.Equal(t, first, second)

	g2, err := New(f, definitions(t))
	require.NoError(t, err)
	third := g2.Generate()
	assert.Equal(t, len(first.Scenarios), len(third.Scenarios))

	// the parsed feature is never modified
	assert.Equal(t, source, f)
	assert.Same(t, f, g.Feature())
}

func TestGenerate_Alternate(t *testing.T) {
	f := &feature.Feature{
		Name: "Alternate",
		Scenarios: []feature.Scenario{{
			Name:  "Not found",
			Steps: steps("an unknown step", "a known step"),
		}},
	}

	ft := generate(t, f, WithAlternate(stepdef.NotFound))
	sc := ft.Scenarios[0]
	assert.Equal(t, []string{"(NOT FOUND) an unknown step", "(SKIPPED) a known step"}, texts(sc))
	assert.Equal(t, []bool{true, true}, skips(sc))
	assert.False(t, sc.Steps[0].IsMatch)
}

func TestGenerate_ConversionFailureStaysMatched(t *testing.T) {
	d := stepdef.New()
	require.NoError(t, d.Step(`there are (\d+) coffees left`, func(w *world, n int8) {}))
	require.NoError(t, d.Step(`a known step`, func(w *world) {}))

	f := &feature.Feature{
		Name: "Stock",
		Scenarios: []feature.Scenario{{
			Name:  "Too many",
			Steps: steps("there are 500 coffees left", "a known step"),
		}},
	}

	g, err := New(f, d, WithAlternate(stepdef.NotFound))
	require.NoError(t, err)
	ft := g.Generate()

	sc := ft.Scenarios[0]
	assert.Equal(t, []string{"there are 500 coffees left", "a known step"}, texts(sc))
	assert.Equal(t, []bool{false, false}, skips(sc))
	assert.True(t, sc.Steps[0].IsMatch)
	assert.True(t, errors.Is(sc.Steps[0].Err, stepdef.ErrParameter))
	assert.False(t, ft.Skip)
}

func TestGenerate_AlternateMatch(t *testing.T) {
	called := 0
	alternate := func(step feature.Step) plan.TestStep {
		called++
		return plan.TestStep{
			IsMatch:    true,
			Text:       step.Text,
			Keyword:    step.Keyword,
			Parameters: []any{"fallback"},
			Handler:    func(w *world, s string) {},
		}
	}

	f := &feature.Feature{
		Name: "Alternate",
		Scenarios: []feature.Scenario{{
			Name:  "Fallback",
			Steps: steps("a known step", "an unknown step", "another known step"),
		}},
	}

	ft := generate(t, f, WithAlternate(alternate))
	sc := ft.Scenarios[0]
	assert.Equal(t, 1, called)
	assert.Equal(t, []bool{false, false, false}, skips(sc))
	assert.Equal(t, []any{"fallback"}, sc.Steps[1].Parameters)
}

func TestGenerate_AlternateWithoutPrefix(t *testing.T) {
	alternate := func(step feature.Step) plan.TestStep {
		return plan.TestStep{Text: step.Text}
	}

	f := &feature.Feature{
		Name:      "Alternate",
		Scenarios: []feature.Scenario{{Name: "x", Steps: steps("an unknown step", "a known step")}},
	}

	ft := generate(t, f, WithAlternate(alternate))
	sc := ft.Scenarios[0]

	// the text is left as the alternate returned it
	assert.Equal(t, "an unknown step", sc.Steps[0].Text)
	assert.Equal(t, []any{}, sc.Steps[0].Parameters)
	assert.Equal(t, []bool{true, true}, skips(sc))
}

func TestNew_Errors(t *testing.T) {
	d := definitions(t)

	_, err := New(nil, d)
	assert.True(t, errors.Is(err, ErrInvalidFeature))

	_, err = New(coffeeFeature(), nil)
	assert.True(t, errors.Is(err, ErrInvalidMatcher))

	_, err = New(coffeeFeature(), d, WithAlternate(nil))
	assert.True(t, errors.Is(err, ErrInvalidAlternate))

	_, err = Load("", d)
	assert.True(t, errors.Is(err, ErrInvalidFeature))

	_, err = Load(filepath.Join(t.TempDir(), "missing.feature"), d)
	assert.True(t, errors.Is(err, ErrInvalidFeature))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coffee.feature")
	content := `Feature: Coffee
  Scenario Outline: Buy coffee
    Given coffee costs $<price>
    Then I should be served coffee

    Examples:
      | price |
      | 5     |
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	g, err := Load(path, definitions(t))
	require.NoError(t, err)

	ft := g.Generate()
	assert.Equal(t, path, ft.URI)
	require.Len(t, ft.Scenarios, 1)
	assert.Equal(t, "Scenario Outline: Buy coffee #1", ft.Scenarios[0].Name)
	assert.Equal(t, "coffee costs $5", ft.Scenarios[0].Steps[0].Text)
	assert.Equal(t, "Given", ft.Scenarios[0].Steps[0].Keyword)
}
