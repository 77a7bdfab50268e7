package formatter

import (
	"encoding/json"
	"io"

	"github.com/tomatool/gherkinplan/internal/plan"
)

// StepView is the JSON shape of a test step.
type StepView struct {
	Keyword    string `json:"keyword,omitempty"`
	Text       string `json:"text"`
	IsMatch    bool   `json:"isMatch"`
	Skip       bool   `json:"skip"`
	Pattern    string `json:"pattern,omitempty"`
	Parameters []any  `json:"parameters"`
	Error      string `json:"error,omitempty"`
}

// ScenarioView is the JSON shape of a scenario test.
type ScenarioView struct {
	Name        string     `json:"name"`
	Wip         bool       `json:"wip"`
	ExamplesWIP bool       `json:"examplesWip,omitempty"`
	Steps       []StepView `json:"testSteps"`
}

// FeatureView is the JSON shape of a feature test.
type FeatureView struct {
	Name      string         `json:"name"`
	File      string         `json:"file,omitempty"`
	Skip      bool           `json:"skip"`
	Wip       bool           `json:"wip"`
	Scenarios []ScenarioView `json:"testScenarios"`
}

// Document is the output of the json formatter.
type Document struct {
	Features []FeatureView `json:"features"`
	Summary  plan.Stats    `json:"summary"`
}

// View converts a plan into its JSON shape.
func View(ft *plan.FeatureTest) FeatureView {
	fv := FeatureView{
		Name:      ft.Name,
		File:      ft.URI,
		Skip:      ft.Skip,
		Wip:       ft.Wip,
		Scenarios: make([]ScenarioView, 0, len(ft.Scenarios)),
	}
	for _, sc := range ft.Scenarios {
		sv := ScenarioView{
			Name:        sc.Name,
			Wip:         sc.Wip,
			ExamplesWIP: sc.ExamplesWIP,
			Steps:       make([]StepView, 0, len(sc.Steps)),
		}
		for i := range sc.Steps {
			st := &sc.Steps[i]
			params := st.Parameters
			if params == nil {
				params = []any{}
			}
			view := StepView{
				Keyword:    st.Keyword,
				Text:       st.Text,
				IsMatch:    st.IsMatch,
				Skip:       st.Skip,
				Pattern:    st.PatternString(),
				Parameters: params,
			}
			if st.Err != nil {
				view.Error = st.Err.Error()
			}
			sv.Steps = append(sv.Steps, view)
		}
		fv.Scenarios = append(fv.Scenarios, sv)
	}
	return fv
}

// JSONFormatter collects plans and writes them as one document on Summary.
type JSONFormatter struct {
	out io.Writer
	doc Document
}

// JSONFormatterFunc creates a new JSONFormatter
func JSONFormatterFunc(out io.Writer) Formatter {
	return &JSONFormatter{out: out, doc: Document{Features: []FeatureView{}}}
}

// Feature records one plan.
func (f *JSONFormatter) Feature(ft *plan.FeatureTest) error {
	f.doc.Features = append(f.doc.Features, View(ft))
	return nil
}

// Summary writes the document.
func (f *JSONFormatter) Summary(stats plan.Stats) error {
	f.doc.Summary = stats
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(f.doc)
}
