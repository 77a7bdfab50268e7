package plan

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioTest_Skipped(t *testing.T) {
	tests := []struct {
		name     string
		steps    []TestStep
		expected bool
	}{
		{"no steps", nil, true},
		{"all skipped", []TestStep{{Skip: true}, {Skip: true}}, true},
		{"one ready", []TestStep{{Skip: true}, {IsMatch: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := ScenarioTest{Steps: tt.steps}
			assert.Equal(t, tt.expected, sc.Skipped())
		})
	}
}

func TestScenarioTest_Unmatched(t *testing.T) {
	sc := ScenarioTest{Steps: []TestStep{
		{IsMatch: true, Text: "a"},
		{Text: "b", Skip: true},
		{IsMatch: true, Text: "c", Skip: true},
		{Text: "d", Skip: true},
	}}

	unmatched := sc.Unmatched()
	assert.Len(t, unmatched, 2)
	assert.Equal(t, "b", unmatched[0].Text)
	assert.Equal(t, "d", unmatched[1].Text)
}

func TestTestStep_PatternString(t *testing.T) {
	st := TestStep{}
	assert.Equal(t, "", st.PatternString())

	st.Pattern = regexp.MustCompile(`coffee (\d+)`)
	assert.Equal(t, `coffee (\d+)`, st.PatternString())
}

func TestFeatureTest_Stats(t *testing.T) {
	ft := &FeatureTest{Scenarios: []ScenarioTest{
		{Steps: []TestStep{{IsMatch: true}, {IsMatch: true}}},
		{Steps: []TestStep{{IsMatch: true}, {Skip: true}, {IsMatch: true, Skip: true}}},
		{Steps: []TestStep{{IsMatch: true, Skip: true}}},
	}}

	stats := ft.Stats()
	assert.Equal(t, Stats{
		Scenarios:        3,
		ScenariosSkipped: 1,
		Steps:            6,
		Matched:          5,
		Unmatched:        1,
		Skipped:          3,
	}, stats)

	var total Stats
	total.Add(stats)
	total.Add(stats)
	assert.Equal(t, 6, total.Scenarios)
	assert.Equal(t, 2, total.Unmatched)
}
