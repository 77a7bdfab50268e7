package command

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/tomatool/gherkinplan/internal/stepdef"
	"github.com/urfave/cli/v2"
)

var docsCommand = &cli.Command{
	Name:  "docs",
	Usage: "Generate a step reference from the configured catalogs",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file (default stdout)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "markdown",
			Usage:   "Output format: markdown, html",
		},
	},
	Action: runDocs,
}

func runDocs(ctx *cli.Context) error {
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}

	var tmplText string
	switch format := ctx.String("format"); format {
	case "markdown":
		tmplText = markdownTemplate
	case "html":
		tmplText = htmlTemplate
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	w := ctx.App.Writer
	if output := ctx.String("output"); output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return generateDocs(w, tmplText, ws.catalog.Categories)
}

// GroupedStep is a step with processed fields for docs
type GroupedStep struct {
	Pattern     string
	Example     string
	Description string
}

// StepGroup groups steps by their group name
type StepGroup struct {
	Name  string
	Steps []GroupedStep
}

// CategoryWithGroups is a category with steps grouped
type CategoryWithGroups struct {
	Name        string
	Description string
	Groups      []StepGroup
}

// DocsData is the data structure for the docs template
type DocsData struct {
	Categories []CategoryWithGroups
}

func buildCategoryWithGroups(cat stepdef.StepCategory) CategoryWithGroups {
	catWithGroups := CategoryWithGroups{
		Name:        cat.Name,
		Description: cat.Description,
		Groups:      make([]StepGroup, 0),
	}

	groupMap := make(map[string][]GroupedStep)
	groupOrder := make([]string, 0)

	for _, step := range cat.Steps {
		groupName := step.Group
		if groupName == "" {
			groupName = "General"
		}

		if _, exists := groupMap[groupName]; !exists {
			groupOrder = append(groupOrder, groupName)
		}

		groupMap[groupName] = append(groupMap[groupName], GroupedStep{
			Pattern:     step.Pattern,
			Example:     step.Example,
			Description: step.Description,
		})
	}

	for _, groupName := range groupOrder {
		catWithGroups.Groups = append(catWithGroups.Groups, StepGroup{
			Name:  groupName,
			Steps: groupMap[groupName],
		})
	}

	return catWithGroups
}

const markdownTemplate = `# Step Reference

This document lists all catalog steps organized by category.

{{range .Categories}}
---

## {{.Name}}

{{.Description}}

{{range .Groups}}
### {{.Name}}

| Pattern | Example | Description |
|---------|---------|-------------|
{{range .Steps}}| ` + "`" + `{{.Pattern}}` + "`" + ` | {{if .Example}}` + "`" + `{{.Example}}` + "`" + `{{end}} | {{.Description}} |
{{end}}
{{end}}
{{end}}`

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Step Reference</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; }
        h2 { color: #2c3e50; border-bottom: 2px solid #e74c3c; padding-bottom: 10px; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f8f9fa; }
        code { background: #f8f9fa; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <h1>Step Reference</h1>
    {{range .Categories}}
    <div class="category">
        <h2>{{.Name}}</h2>
        <p>{{.Description}}</p>
        {{range .Groups}}
        <h3>{{.Name}}</h3>
        <table>
            <tr><th>Pattern</th><th>Example</th><th>Description</th></tr>
            {{range .Steps}}
            <tr><td><code>{{.Pattern}}</code></td><td><code>{{.Example}}</code></td><td>{{.Description}}</td></tr>
            {{end}}
        </table>
        {{end}}
    </div>
    {{end}}
</body>
</html>`

func generateDocs(w io.Writer, tmplText string, categories []stepdef.StepCategory) error {
	tmpl, err := template.New("docs").Parse(tmplText)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	data := DocsData{Categories: make([]CategoryWithGroups, 0)}
	for _, cat := range categories {
		data.Categories = append(data.Categories, buildCategoryWithGroups(cat))
	}

	return tmpl.Execute(w, data)
}
