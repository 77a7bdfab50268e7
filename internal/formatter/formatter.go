package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tomatool/gherkinplan/internal/plan"
)

// Formatter renders generated plans. Feature is called once per plan, Summary
// once at the end with the totals of all plans.
type Formatter interface {
	Feature(ft *plan.FeatureTest) error
	Summary(stats plan.Stats) error
}

// Func creates a formatter writing to out.
type Func func(out io.Writer) Formatter

type registered struct {
	description string
	fn          Func
}

var (
	mu         sync.RWMutex
	formatters = make(map[string]registered)
)

func init() {
	Register("pretty", "Indented plan tree with match and skip markers", PrettyFormatterFunc)
	Register("json", "The whole plan as one JSON document", JSONFormatterFunc)
	Register("events", "One structured event line per feature, scenario and step", EventFormatterFunc)
}

// Register makes a formatter available by name.
func Register(name, description string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	formatters[name] = registered{description: description, fn: fn}
}

// Find returns the formatter registered under name.
func Find(name string) (Func, error) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
	return r.fn, nil
}

// Available returns registered formatter names and descriptions, sorted by name.
func Available() [][2]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([][2]string, 0, len(formatters))
	for name, r := range formatters {
		out = append(out, [2]string{name, r.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Event types for structured output
const (
	EventFeatureStart  = "feature_start"
	EventFeatureEnd    = "feature_end"
	EventScenarioStart = "scenario_start"
	EventScenarioEnd   = "scenario_end"
	EventStep          = "step"
	EventSummary       = "summary"
)

// Event represents a structured plan event
type Event struct {
	Type     string `json:"type"`
	Feature  string `json:"feature,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	Step     string `json:"step,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Status   string `json:"status,omitempty"`
	File     string `json:"file,omitempty"`

	// Summary fields
	Total     int `json:"total,omitempty"`
	Skipped   int `json:"skipped,omitempty"`
	Steps     int `json:"steps,omitempty"`
	Matched   int `json:"matched,omitempty"`
	Unmatched int `json:"unmatched,omitempty"`
}

// EventFormatter outputs structured JSON events for machine parsing
type EventFormatter struct {
	out io.Writer
}

// EventFormatterFunc creates a new EventFormatter
func EventFormatterFunc(out io.Writer) Formatter {
	return &EventFormatter{out: out}
}

func (f *EventFormatter) emit(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(f.out, "PLAN_EVENT:%s\n", data)
	return err
}

// Feature emits the events of one plan.
func (f *EventFormatter) Feature(ft *plan.FeatureTest) error {
	if err := f.emit(Event{Type: EventFeatureStart, Feature: ft.Name, File: ft.URI, Status: status(ft.Skip)}); err != nil {
		return err
	}

	for i := range ft.Scenarios {
		sc := &ft.Scenarios[i]
		if err := f.emit(Event{Type: EventScenarioStart, Feature: ft.Name, Scenario: sc.Name}); err != nil {
			return err
		}
		for j := range sc.Steps {
			st := &sc.Steps[j]
			if err := f.emit(Event{
				Type:     EventStep,
				Feature:  ft.Name,
				Scenario: sc.Name,
				Step:     st.Text,
				Keyword:  st.Keyword,
				Pattern:  st.PatternString(),
				Status:   stepStatus(st),
			}); err != nil {
				return err
			}
		}
		if err := f.emit(Event{Type: EventScenarioEnd, Feature: ft.Name, Scenario: sc.Name, Status: status(sc.Skipped())}); err != nil {
			return err
		}
	}

	return f.emit(Event{Type: EventFeatureEnd, Feature: ft.Name})
}

// Summary emits the totals.
func (f *EventFormatter) Summary(stats plan.Stats) error {
	return f.emit(Event{
		Type:      EventSummary,
		Total:     stats.Scenarios,
		Skipped:   stats.ScenariosSkipped,
		Steps:     stats.Steps,
		Matched:   stats.Matched,
		Unmatched: stats.Unmatched,
	})
}

func status(skip bool) string {
	if skip {
		return "skipped"
	}
	return "ready"
}

func stepStatus(st *plan.TestStep) string {
	switch {
	case !st.IsMatch:
		return "undefined"
	case st.Skip:
		return "skipped"
	default:
		return "ready"
	}
}
