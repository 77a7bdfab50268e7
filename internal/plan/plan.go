// Package plan defines the executable test plan produced by the generator:
// a feature test made of scenario tests made of resolved test steps.
package plan

import "regexp"

// Text prefixes baked into generated names and step texts.
const (
	PrefixWIP      = "(WIP) "
	PrefixSkipped  = "(SKIPPED) "
	PrefixNotFound = "(NOT FOUND) "

	PrefixFeature  = "Feature: "
	PrefixScenario = "Scenario: "
	PrefixOutline  = "Scenario Outline: "
)

// TestStep is one Gherkin step resolved against the step definitions.
type TestStep struct {
	IsMatch    bool
	Skip       bool
	Text       string
	Keyword    string
	Pattern    *regexp.Regexp
	Parameters []any
	Handler    any
	// Err is set when the pattern matched but a capture did not convert to
	// the handler's parameter type. Running the step fails with it.
	Err error
}

// PatternString returns the matched pattern source, or "" when unmatched.
func (s *TestStep) PatternString() string {
	if s.Pattern == nil {
		return ""
	}
	return s.Pattern.String()
}

// ScenarioTest is one concrete scenario of the plan.
type ScenarioTest struct {
	Name string
	Wip  bool
	// ExamplesWIP marks a scenario expanded from an example table tagged as
	// work in progress. Its steps are all skipped.
	ExamplesWIP bool
	Steps       []TestStep
}

// Skipped reports whether every step of the scenario is skipped. A scenario
// without steps counts as skipped.
func (s *ScenarioTest) Skipped() bool {
	for i := range s.Steps {
		if !s.Steps[i].Skip {
			return false
		}
	}
	return true
}

// Unmatched returns the steps that found no step definition.
func (s *ScenarioTest) Unmatched() []TestStep {
	var out []TestStep
	for _, st := range s.Steps {
		if !st.IsMatch {
			out = append(out, st)
		}
	}
	return out
}

// FeatureTest is the root of a generated plan.
type FeatureTest struct {
	Name      string
	URI       string
	Skip      bool
	Wip       bool
	Scenarios []ScenarioTest
}

// Stats summarises a plan.
type Stats struct {
	Scenarios        int `json:"scenarios"`
	ScenariosSkipped int `json:"scenariosSkipped"`
	Steps            int `json:"steps"`
	Matched          int `json:"matched"`
	Unmatched        int `json:"unmatched"`
	Skipped          int `json:"skipped"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Scenarios += other.Scenarios
	s.ScenariosSkipped += other.ScenariosSkipped
	s.Steps += other.Steps
	s.Matched += other.Matched
	s.Unmatched += other.Unmatched
	s.Skipped += other.Skipped
}

// Stats counts scenarios and steps of the plan.
func (f *FeatureTest) Stats() Stats {
	var st Stats
	for i := range f.Scenarios {
		sc := &f.Scenarios[i]
		st.Scenarios++
		if sc.Skipped() {
			st.ScenariosSkipped++
		}
		for _, step := range sc.Steps {
			st.Steps++
			if step.IsMatch {
				st.Matched++
			} else {
				st.Unmatched++
			}
			if step.Skip {
				st.Skipped++
			}
		}
	}
	return st
}
