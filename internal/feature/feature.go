// Package feature holds the parsed Gherkin document model consumed by the
// plan generator, together with loaders that resolve feature files through the
// cucumber Gherkin parser or decode pre-parsed YAML/JSON documents.
package feature

import "slices"

// WIPTag marks a feature, scenario or example table as work in progress.
const WIPTag = "@wip"

// Feature is the root of a parsed Gherkin document.
type Feature struct {
	Name       string     `yaml:"name" json:"name"`
	URI        string     `yaml:"-" json:"uri,omitempty"`
	Tags       []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Background *Scenario  `yaml:"background,omitempty" json:"background,omitempty"`
	Scenarios  []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Scenario is a plain scenario or, when Outline is set or Examples is non-empty,
// a scenario outline.
type Scenario struct {
	Name     string         `yaml:"name" json:"name"`
	Tags     []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
	Steps    []Step         `yaml:"steps" json:"steps"`
	Outline  bool           `yaml:"outline,omitempty" json:"outline,omitempty"`
	Examples []ExampleTable `yaml:"examples,omitempty" json:"examples,omitempty"`

	// ExamplesWIP is set on concrete scenarios expanded from a WIP example table.
	ExamplesWIP bool `yaml:"-" json:"-"`
}

// ExampleTable is one Examples block of a scenario outline. Rows[0] is the header.
type ExampleTable struct {
	Name string     `yaml:"name,omitempty" json:"name,omitempty"`
	Tags []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	Rows [][]string `yaml:"data" json:"data"`
}

// Step is one Gherkin step line with its optional argument.
type Step struct {
	Keyword   string     `yaml:"keyword" json:"keyword"`
	Text      string     `yaml:"text" json:"text"`
	DocString *DocString `yaml:"docString,omitempty" json:"docString,omitempty"`
	Table     [][]string `yaml:"table,omitempty" json:"table,omitempty"`
}

// DocString is a multi-line step argument.
type DocString struct {
	MediaType string `yaml:"mediaType,omitempty" json:"mediaType,omitempty"`
	Content   string `yaml:"content" json:"content"`
}

// HasTag reports whether tag is present in tags.
func HasTag(tags []string, tag string) bool {
	return slices.Contains(tags, tag)
}

// IsWIP reports whether the feature is tagged work in progress.
func (f *Feature) IsWIP() bool { return HasTag(f.Tags, WIPTag) }

// IsWIP reports whether the scenario is tagged work in progress.
func (s *Scenario) IsWIP() bool { return HasTag(s.Tags, WIPTag) }

// IsOutline reports whether the scenario is a scenario outline.
func (s *Scenario) IsOutline() bool { return s.Outline || len(s.Examples) > 0 }

// IsWIP reports whether the example table is tagged work in progress.
func (e *ExampleTable) IsWIP() bool { return HasTag(e.Tags, WIPTag) }

// Header returns the header row, or nil for an empty table.
func (e *ExampleTable) Header() []string {
	if len(e.Rows) == 0 {
		return nil
	}
	return e.Rows[0]
}

// Body returns the data rows.
func (e *ExampleTable) Body() [][]string {
	if len(e.Rows) < 2 {
		return nil
	}
	return e.Rows[1:]
}

// ColumnTable builds a single-column example table from a flat list of cells.
// The first cell is the header.
func ColumnTable(name string, cells ...string) ExampleTable {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, []string{c})
	}
	return ExampleTable{Name: name, Rows: rows}
}

// Clone returns a deep copy of the feature.
func (f *Feature) Clone() *Feature {
	if f == nil {
		return nil
	}
	c := &Feature{
		Name: f.Name,
		URI:  f.URI,
		Tags: slices.Clone(f.Tags),
	}
	if f.Background != nil {
		bg := f.Background.Clone()
		c.Background = &bg
	}
	if f.Scenarios != nil {
		c.Scenarios = make([]Scenario, len(f.Scenarios))
		for i := range f.Scenarios {
			c.Scenarios[i] = f.Scenarios[i].Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the scenario. Steps and example tables of the
// copy share no memory with the original.
func (s Scenario) Clone() Scenario {
	c := Scenario{
		Name:        s.Name,
		Tags:        slices.Clone(s.Tags),
		Outline:     s.Outline,
		ExamplesWIP: s.ExamplesWIP,
	}
	if s.Steps != nil {
		c.Steps = make([]Step, len(s.Steps))
		for i := range s.Steps {
			c.Steps[i] = s.Steps[i].Clone()
		}
	}
	if s.Examples != nil {
		c.Examples = make([]ExampleTable, len(s.Examples))
		for i := range s.Examples {
			c.Examples[i] = s.Examples[i].Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the example table.
func (e ExampleTable) Clone() ExampleTable {
	return ExampleTable{
		Name: e.Name,
		Tags: slices.Clone(e.Tags),
		Rows: cloneRows(e.Rows),
	}
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	c := Step{
		Keyword: s.Keyword,
		Text:    s.Text,
		Table:   cloneRows(s.Table),
	}
	if s.DocString != nil {
		ds := *s.DocString
		c.DocString = &ds
	}
	return c
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
