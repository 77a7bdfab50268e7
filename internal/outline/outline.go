// Package outline expands scenario outlines into concrete scenarios, one per
// example row.
package outline

import (
	"fmt"
	"strings"

	"github.com/tomatool/gherkinplan/internal/feature"
)

// Field is one column of an example row.
type Field struct {
	Name  string
	Value string
}

// Record is one example row keyed by the header, in header order.
type Record []Field

// Records converts example rows into records. rows[0] is the header. A header
// name that appears twice keeps its first position and its last value. Short
// rows read missing cells as empty strings.
func Records(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, 0, len(header))
		index := make(map[string]int, len(header))
		for col, name := range header {
			value := ""
			if col < len(row) {
				value = row[col]
			}
			if i, ok := index[name]; ok {
				rec[i].Value = value
				continue
			}
			index[name] = len(rec)
			rec = append(rec, Field{Name: name, Value: value})
		}
		records = append(records, rec)
	}
	return records
}

// HasUsableExamples reports whether sc is an outline with at least one
// example table that is not WIP and has a data row.
func HasUsableExamples(sc *feature.Scenario) bool {
	if !sc.IsOutline() {
		return false
	}
	for i := range sc.Examples {
		ex := &sc.Examples[i]
		if !ex.IsWIP() && len(ex.Body()) > 0 {
			return true
		}
	}
	return false
}

// Expand returns the concrete scenarios of sc. A plain scenario, or an outline
// without usable examples, comes back unchanged as the only element.
// Otherwise every table is expanded in declaration order and every row yields
// an independent copy of the scenario named
// "<name>[: <examples name>] #<row>" with <field> placeholders replaced.
func Expand(sc feature.Scenario) []feature.Scenario {
	if !HasUsableExamples(&sc) {
		return []feature.Scenario{sc}
	}

	var concrete []feature.Scenario
	for _, ex := range sc.Examples {
		for i, rec := range Records(ex.Rows) {
			c := sc.Clone()
			if ex.Name != "" {
				c.Name += ": " + ex.Name
			}
			c.Name += fmt.Sprintf(" #%d", i+1)
			c.ExamplesWIP = c.ExamplesWIP || ex.IsWIP()

			for j := range c.Steps {
				substitute(&c.Steps[j], rec)
			}
			concrete = append(concrete, c)
		}
	}
	return concrete
}

// Substitute replaces every <name> placeholder of rec in text.
func Substitute(text string, rec Record) string {
	for _, f := range rec {
		text = strings.ReplaceAll(text, "<"+f.Name+">", f.Value)
	}
	return text
}

func substitute(step *feature.Step, rec Record) {
	step.Text = Substitute(step.Text, rec)
	if step.DocString != nil {
		step.DocString.Content = Substitute(step.DocString.Content, rec)
	}
	for _, row := range step.Table {
		for i := range row {
			row[i] = Substitute(row[i], rec)
		}
	}
}
