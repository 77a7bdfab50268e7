package stepdef

import (
	"github.com/tomatool/gherkinplan/internal/feature"
	"github.com/tomatool/gherkinplan/internal/plan"
)

// NotFound is an alternate test step generator for steps without a matching
// definition. It keeps the step unmatched and prefixes its text with
// "(NOT FOUND) ".
func NotFound(step feature.Step) plan.TestStep {
	return plan.TestStep{
		Text:       plan.PrefixNotFound + step.Text,
		Keyword:    step.Keyword,
		Parameters: []any{},
	}
}
