package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a survey widget entry to a manifest."`
	Check    checkCmd    `cmd:"" help:"Validate a manifest file."`
}

type scaffoldCmd struct {
	Name         string   `required:"" help:"Display name for the widget."`
	Endpoint     string   `required:"" help:"Survey endpoint segment (GET /survey/<endpoint>)."`
	Code         string   `help:"Widget code (defaults to the snake_case name)."`
	Description  string   `help:"One-line description used in manifests."`
	Kind         string   `default:"bar" enum:"line,bar,pie,polar-area" help:"Chart kind."`
	Layout       string   `default:"per-category" enum:"per-category,comparison,aggregate" help:"How categories map onto the chart."`
	Label        []string `help:"Point labels in payload order (use multiple --label flags)."`
	Fill         string   `default:"empty" enum:"empty,zeros" help:"Default for categories missing from the payload."`
	Span         int      `default:"1" help:"Grid columns the widget spans (1-4)."`
	ManifestPath string   `required:"" type:"path" help:"Path to the widget manifest YAML file to update."`
	Tag          []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer   []string `help:"Maintainers to record in the manifest."`
	Overwrite    bool     `help:"Replace an existing manifest entry with the same code."`
}

type checkCmd struct {
	ManifestPath string `arg:"" type:"existingfile" help:"Manifest to validate."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Widget manifest utility for the survey dashboard."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("widgetctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	entry := cmd.entry()
	if err := dashboard.NewDefinitionValidator().Validate(entry.Definition); err != nil {
		return fmt.Errorf("widgetctl: %w", err)
	}
	if err := upsert(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s (%s) to %s\n", entry.Definition.Code, entry.Definition.Endpoint, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) entry() dashboard.ManifestWidget {
	code := cmd.Code
	if code == "" {
		code = deriveCode(cmd.Name)
	}
	return dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Source:      dashboard.SourceSurvey,
			Endpoint:    strings.Trim(cmd.Endpoint, "/"),
			Categories:  dashboard.Demographics,
			Fill:        dashboard.FillPolicy(cmd.Fill),
			Span:        cmd.Span,
			Chart: dashboard.ChartSpec{
				Kind:   dashboard.ChartKind(cmd.Kind),
				Layout: dashboard.SeriesLayout(cmd.Layout),
				Title:  cmd.Name,
				Labels: cmd.Label,
			},
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}
}

func (cmd *checkCmd) Run(_ context.Context) error {
	doc, err := dashboard.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d widgets\n", cmd.ManifestPath, len(doc.Widgets))
	return nil
}

// upsert appends entry, or replaces an entry with the same code when overwrite is set.
// Manifest order is grid order, so replacements keep their position.
func upsert(doc *dashboard.WidgetManifestDocument, entry dashboard.ManifestWidget, overwrite bool) error {
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Definition.Code != entry.Definition.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("widgetctl: manifest already defines widget %s (use --overwrite to replace)", entry.Definition.Code)
		}
		doc.Widgets[idx] = entry
		return nil
	}
	doc.Widgets = append(doc.Widgets, entry)
	return nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("widgetctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("widgetctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("widgetctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return encodeManifest(file, doc)
}

func encodeManifest(out io.Writer, doc *dashboard.WidgetManifestDocument) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("widgetctl: write manifest: %w", err)
	}
	return nil
}

func deriveCode(name string) string {
	code := strcase.ToSnake(strings.TrimSpace(name))
	if code == "" {
		return "widget"
	}
	return code
}
