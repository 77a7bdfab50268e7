package stepdef

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPending is returned by handlers of catalog steps, which describe a step
// without implementing it.
var ErrPending = errors.New("step is pending")

// StepDef is a documented step pattern.
type StepDef struct {
	// Group is the category within a catalog (e.g., "Ordering", "Payment")
	Group string `yaml:"group,omitempty" json:"group,omitempty"`

	// Pattern is the regex pattern for matching Gherkin steps
	Pattern string `yaml:"pattern" json:"pattern"`

	// Description explains what this step does
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Example shows how to use this step in a feature file
	Example string `yaml:"example,omitempty" json:"example,omitempty"`

	// Params declares the type of each capture group: string, int, float or bool
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`
}

// StepCategory groups related steps together
type StepCategory struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []StepDef `yaml:"steps" json:"steps"`
}

// Catalog is a YAML file of step categories.
type Catalog struct {
	Categories []StepCategory `yaml:"categories" json:"categories"`
}

// LoadCatalog reads a step catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading step catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing step catalog %s: %w", path, err)
	}
	return &c, nil
}

// AllSteps returns all steps across all categories
func (c *Catalog) AllSteps() []StepDef {
	var all []StepDef
	for _, cat := range c.Categories {
		all = append(all, cat.Steps...)
	}
	return all
}

// Merge appends the categories of other.
func (c *Catalog) Merge(other *Catalog) {
	c.Categories = append(c.Categories, other.Categories...)
}

// Register adds every catalog step to d, in catalog order. Handlers accept any
// world and report ErrPending when run.
func (c *Catalog) Register(d *Definitions) error {
	for _, cat := range c.Categories {
		for _, step := range cat.Steps {
			declared, err := paramTypes(step.Params)
			if err != nil {
				return fmt.Errorf("category %s, step %q: %w", cat.Name, step.Pattern, err)
			}
			if err := d.add(step.Pattern, pendingHandler(step.Pattern), declared); err != nil {
				return fmt.Errorf("category %s: %w", cat.Name, err)
			}
		}
	}
	return nil
}

func pendingHandler(pattern string) func(any, ...any) error {
	return func(_ any, _ ...any) error {
		return fmt.Errorf("%w: %s", ErrPending, pattern)
	}
}

func paramTypes(names []string) ([]reflect.Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]reflect.Type, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(n) {
		case "", "string":
			types = append(types, reflect.TypeOf(""))
		case "int", "integer":
			types = append(types, reflect.TypeOf(int(0)))
		case "float", "number":
			types = append(types, reflect.TypeOf(float64(0)))
		case "bool", "boolean":
			types = append(types, reflect.TypeOf(false))
		default:
			return nil, fmt.Errorf("unknown parameter type %q", n)
		}
	}
	return types, nil
}
