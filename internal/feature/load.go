package feature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when input does not have the shape of a
// feature document.
var ErrInvalidDocument = errors.New("invalid feature document")

// Load resolves path into a Feature. .feature files go through the Gherkin
// parser; .yml, .yaml and .json files are decoded as pre-parsed documents.
func Load(path string) (*Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".feature":
		return ParseFile(path)
	case ".yml", ".yaml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading feature document: %w", err)
		}
		f, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		f.URI = path
		return f, nil
	default:
		return nil, fmt.Errorf("%s: %w: unsupported file extension", path, ErrInvalidDocument)
	}
}

// Decode reads a pre-parsed feature document. The document must be a mapping
// with a scenarios key; example data may be a list of rows or a flat list of
// cells, the latter read as a single column.
func Decode(data []byte) (*Feature, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrInvalidDocument)
	}
	if !hasKey(root.Content[0], "scenarios") {
		return nil, fmt.Errorf("%w: missing scenarios", ErrInvalidDocument)
	}

	var f Feature
	if err := root.Content[0].Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if f.Scenarios == nil {
		f.Scenarios = []Scenario{}
	}
	return &f, nil
}

// UnmarshalYAML accepts example data either as rows or as a flat column.
func (e *ExampleTable) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name string    `yaml:"name"`
		Tags []string  `yaml:"tags"`
		Data yaml.Node `yaml:"data"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	e.Name = raw.Name
	e.Tags = raw.Tags
	e.Rows = nil

	if raw.Data.Kind == 0 {
		return nil
	}
	if raw.Data.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: examples data must be a list", raw.Data.Line)
	}

	if len(raw.Data.Content) > 0 && raw.Data.Content[0].Kind == yaml.ScalarNode {
		var cells []string
		if err := raw.Data.Decode(&cells); err != nil {
			return fmt.Errorf("line %d: flat examples data must be a list of cells: %w", raw.Data.Line, err)
		}
		e.Rows = ColumnTable(e.Name, cells...).Rows
		return nil
	}

	for _, item := range raw.Data.Content {
		if item.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: examples row must be a list of cells", item.Line)
		}
		var row []string
		if err := item.Decode(&row); err != nil {
			return fmt.Errorf("line %d: %w", item.Line, err)
		}
		e.Rows = append(e.Rows, row)
	}

	if width := len(e.Header()); width > 0 {
		for i, row := range e.Body() {
			if len(row) != width {
				return fmt.Errorf("examples %q row %d has %d cells, header has %d", e.Name, i+1, len(row), width)
			}
		}
	}
	return nil
}

// Discover expands paths into the feature files they contain. Directories are
// walked recursively; files are returned as given. Inside directories, .yml,
// .yaml and .json files without a scenarios key are skipped with a warning.
// The result is sorted.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("reading features path: %w", err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".feature":
				add(p)
			case ".yml", ".yaml", ".json":
				if isDocument(p) {
					add(p)
					return nil
				}
				log.Warn().Str("file", p).Msg("skipping file without scenarios")
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// isDocument reports whether the file at p is a mapping with a scenarios key.
func isDocument(p string) bool {
	data, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return false
	}
	return len(root.Content) > 0 && root.Content[0].Kind == yaml.MappingNode && hasKey(root.Content[0], "scenarios")
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}
