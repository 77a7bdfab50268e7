// Package generator turns a parsed feature and a set of step definitions into
// an executable test plan.
//
// Scenario outlines are expanded into one concrete scenario per example row.
// Every step is resolved against the step definitions; a step that does not
// match skips itself and every later step of its scenario, and an unmatched
// background step skips the whole scenario. Work-in-progress scenarios are
// generated with all their steps skipped.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/outline"
	"github.com/tomatool/gherkinplan/internal/plan"
)

// Configuration errors returned by New and Load.
var (
	ErrInvalidFeature   = errors.New("feature must be a parsed feature or a path to a feature file")
	ErrInvalidMatcher   = errors.New("step definitions must resolve steps")
	ErrInvalidAlternate = errors.New("alternate test step generator must be a function")
)

// Matcher resolves a Gherkin step into a test step.
type Matcher interface {
	Resolve(step feature.Step) plan.TestStep
}

// AlternateFunc generates the test step of a step no definition matched. It
// owns the text of the steps it returns, including the "(NOT FOUND) " prefix
// of steps it leaves unmatched.
type AlternateFunc func(step feature.Step) plan.TestStep

// Option configures a Generator.
type Option func(*Generator) error

// WithAlternate installs fn as the alternate test step generator.
func WithAlternate(fn AlternateFunc) Option {
	return func(g *Generator) error {
		if fn == nil {
			return ErrInvalidAlternate
		}
		g.alternate = fn
		return nil
	}
}

// Generator builds test plans for one feature.
type Generator struct {
	feature   *feature.Feature
	matcher   Matcher
	alternate AlternateFunc
}

// New creates a generator for f resolving steps through m.
func New(f *feature.Feature, m Matcher, opts ...Option) (*Generator, error) {
	if f == nil {
		return nil, ErrInvalidFeature
	}
	if m == nil {
		return nil, ErrInvalidMatcher
	}

	g := &Generator{
		feature: f,
		matcher: m,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Load resolves path through the feature loaders and creates a generator for
// the result.
func Load(path string, m Matcher, opts ...Option) (*Generator, error) {
	if path == "" {
		return nil, ErrInvalidFeature
	}
	f, err := feature.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeature, err)
	}
	return New(f, m, opts...)
}

// Feature returns the feature the generator plans.
func (g *Generator) Feature() *feature.Feature {
	return g.feature
}

// Generate builds the test plan. Each call produces a fresh plan; the source
// feature is never modified.
func (g *Generator) Generate() *plan.FeatureTest {
	f := g.feature

	var concrete []feature.Scenario
	for _, sc := range f.Scenarios {
		concrete = append(concrete, outline.Expand(sc.Clone())...)
	}

	scenarios := make([]plan.ScenarioTest, 0, len(concrete))
	for i := range concrete {
		scenarios = append(scenarios, g.scenarioTest(&concrete[i], f.Background))
	}

	wip := f.IsWIP()
	ft := &plan.FeatureTest{
		Name:      prefixIf(wip, plan.PrefixWIP) + plan.PrefixFeature + f.Name,
		URI:       f.URI,
		Wip:       wip,
		Scenarios: scenarios,
	}
	ft.Skip = wip || allSkipped(scenarios)

	log.Debug().Str("feature", f.Name).Int("scenarios", len(scenarios)).Bool("skip", ft.Skip).Msg("generated feature plan")
	return ft
}

func (g *Generator) scenarioTest(sc *feature.Scenario, background *feature.Scenario) plan.ScenarioTest {
	wip := sc.IsWIP()

	kind := plan.PrefixScenario
	if sc.IsOutline() {
		kind = plan.PrefixOutline
	}

	var steps []plan.TestStep
	skip := false

	if background != nil {
		steps = g.testSteps(wip, background.Steps, false)
		for _, st := range steps {
			if !st.IsMatch {
				skip = true
				break
			}
		}
	}

	if sc.IsOutline() && !outline.HasUsableExamples(sc) {
		skip = true
	}

	steps = append(steps, g.testSteps(wip || sc.ExamplesWIP, sc.Steps, skip)...)

	log.Debug().Str("scenario", sc.Name).Int("steps", len(steps)).Bool("wip", wip).Msg("generated scenario plan")

	return plan.ScenarioTest{
		Name:        prefixIf(wip, plan.PrefixWIP) + kind + sc.Name,
		Wip:         wip,
		ExamplesWIP: sc.ExamplesWIP,
		Steps:       steps,
	}
}

// testSteps resolves steps in order. skipping is carried from step to step:
// once a step is unmatched it and every following step are skipped.
func (g *Generator) testSteps(wip bool, steps []feature.Step, skipping bool) []plan.TestStep {
	out := make([]plan.TestStep, 0, len(steps))
	for _, step := range steps {
		var ts plan.TestStep
		ts, skipping = g.testStep(wip, step, skipping)
		out = append(out, ts)
	}
	return out
}

func (g *Generator) testStep(wip bool, step feature.Step, skipping bool) (plan.TestStep, bool) {
	ts := g.matcher.Resolve(step)

	if !ts.IsMatch && g.alternate != nil {
		ts = g.alternate(step)
		if !ts.IsMatch && !strings.HasPrefix(ts.Text, plan.PrefixNotFound) {
			log.Warn().Str("step", step.Text).Str("text", ts.Text).Msg("alternate generator returned an unmatched step without the (NOT FOUND) prefix")
		}
	}

	if !ts.IsMatch {
		log.Debug().Str("step", step.Text).Msg("no step definition matched")
		skipping = true
	}

	ts.Skip = skipping || wip
	if ts.IsMatch && ts.Skip {
		ts.Text = plan.PrefixSkipped + ts.Text
	}
	if ts.Parameters == nil {
		ts.Parameters = []any{}
	}
	return ts, skipping
}

func allSkipped(scenarios []plan.ScenarioTest) bool {
	for i := range scenarios {
		if !scenarios[i].Skipped() {
			return false
		}
	}
	return true
}

func prefixIf(cond bool, prefix string) string {
	if cond {
		return prefix
	}
	return ""
}
