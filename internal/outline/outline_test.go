package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomatool/gherkinplan/internal/feature"
)

func coffee() feature.Scenario {
	return feature.Scenario{
		Name: "Buy coffee",
		Steps: []feature.Step{
			{Keyword: "Given", Text: "coffee costs $<price>"},
			{Keyword: "Then", Text: "I should be served coffee"},
		},
		Examples: []feature.ExampleTable{
			{Rows: [][]string{{"price"}, {"5"}, {"10"}}},
		},
	}
}

func TestExpand_Coffee(t *testing.T) {
	out := Expand(coffee())
	require.Len(t, out, 2)

	assert.Equal(t, "Buy coffee #1", out[0].Name)
	assert.Equal(t, "coffee costs $5", out[0].Steps[0].Text)
	assert.Equal(t, "I should be served coffee", out[0].Steps[1].Text)

	assert.Equal(t, "Buy coffee #2", out[1].Name)
	assert.Equal(t, "coffee costs $10", out[1].Steps[0].Text)
}

func TestExpand_TablesInOrder(t *testing.T) {
	sc := coffee()
	sc.Examples = []feature.ExampleTable{
		{Name: "small", Rows: [][]string{{"price", "size"}, {"2", "S"}, {"3", "M"}}},
		{Name: "large", Rows: [][]string{{"price", "size"}, {"5", "L"}}},
	}
	sc.Steps[1].Text = "I should be served a <size> coffee"

	out := Expand(sc)
	require.Len(t, out, 3)

	names := []string{out[0].Name, out[1].Name, out[2].Name}
	assert.Equal(t, []string{"Buy coffee: small #1", "Buy coffee: small #2", "Buy coffee: large #1"}, names)
	assert.Equal(t, "I should be served a M coffee", out[1].Steps[1].Text)
	assert.Equal(t, "coffee costs $5", out[2].Steps[0].Text)
}

func TestExpand_WIPTables(t *testing.T) {
	sc := coffee()
	sc.Examples = append(sc.Examples, feature.ExampleTable{
		Name: "later",
		Tags: []string{feature.WIPTag},
		Rows: [][]string{{"price"}, {"20"}},
	})

	out := Expand(sc)
	require.Len(t, out, 3)
	assert.False(t, out[0].ExamplesWIP)
	assert.False(t, out[1].ExamplesWIP)
	assert.True(t, out[2].ExamplesWIP)
	assert.Equal(t, "Buy coffee: later #1", out[2].Name)
}

func TestExpand_Unchanged(t *testing.T) {
	tests := []struct {
		name     string
		examples []feature.ExampleTable
		outline  bool
	}{
		{"plain scenario", nil, false},
		{"outline without tables", nil, true},
		{"header only", []feature.ExampleTable{{Rows: [][]string{{"price"}}}}, true},
		{"empty table", []feature.ExampleTable{{}}, true},
		{"only WIP rows", []feature.ExampleTable{{Tags: []string{"@wip"}, Rows: [][]string{{"price"}, {"5"}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := coffee()
			sc.Examples = tt.examples
			sc.Outline = tt.outline

			out := Expand(sc)
			require.Len(t, out, 1)
			assert.Equal(t, sc, out[0])
			assert.Equal(t, "coffee costs $<price>", out[0].Steps[0].Text)
		})
	}
}

func TestExpand_CopiesAreIndependent(t *testing.T) {
	sc := coffee()
	sc.Steps[0].DocString = &feature.DocString{Content: `{"price": <price>}`}
	sc.Steps[1].Table = [][]string{{"cup", "price"}, {"large", "<price>"}}

	out := Expand(sc)
	require.Len(t, out, 2)

	assert.Equal(t, `{"price": 5}`, out[0].Steps[0].DocString.Content)
	assert.Equal(t, `{"price": 10}`, out[1].Steps[0].DocString.Content)
	assert.Equal(t, "5", out[0].Steps[1].Table[1][1])
	assert.Equal(t, "10", out[1].Steps[1].Table[1][1])

	out[0].Steps[0].Text = "changed"
	assert.Equal(t, "coffee costs $10", out[1].Steps[0].Text)

	// the source scenario keeps its placeholders
	assert.Equal(t, "coffee costs $<price>", sc.Steps[0].Text)
	assert.Equal(t, `{"price": <price>}`, sc.Steps[0].DocString.Content)
	assert.Equal(t, "<price>", sc.Steps[1].Table[1][1])
}

func TestRecords(t *testing.T) {
	records := Records([][]string{
		{"a", "b", "a"},
		{"1", "2", "3"},
		{"4"},
	})
	require.Len(t, records, 2)

	assert.Equal(t, Record{{"a", "3"}, {"b", "2"}}, records[0])
	assert.Equal(t, Record{{"a", ""}, {"b", ""}}, records[1])

	assert.Nil(t, Records(nil))
	assert.Empty(t, Records([][]string{{"a"}}))
}

func TestSubstitute(t *testing.T) {
	rec := Record{{"name", "alice"}, {"age", "30"}}

	tests := []struct {
		input    string
		expected string
	}{
		{"<name> is <age>", "alice is 30"},
		{"<name> and <name>", "alice and alice"},
		{"<unknown> stays", "<unknown> stays"},
		{"no placeholders", "no placeholders"},
		{"name without brackets", "name without brackets"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Substitute(tt.input, rec), tt.input)
	}
}

func TestHasUsableExamples(t *testing.T) {
	sc := coffee()
	assert.True(t, HasUsableExamples(&sc))

	sc.Examples[0].Tags = []string{feature.WIPTag}
	assert.False(t, HasUsableExamples(&sc))

	plain := feature.Scenario{Name: "plain"}
	assert.False(t, HasUsableExamples(&plain))
}
