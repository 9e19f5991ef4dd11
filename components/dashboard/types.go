package dashboard

import (
	"context"
	"slices"
	"time"
)

// RefreshHook notifies transports (REST/WebSocket/SSE) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// DefinitionRegistry stores widget definitions discoverable via hooks or manifests.
type DefinitionRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterLoader(code string, factory LoaderFactory) error
	Definition(code string) (WidgetDefinition, bool)
	LoaderFactory(code string) (LoaderFactory, bool)
	Definitions() []WidgetDefinition
}

// Category is a single demographic/classification slice of a metric.
type Category struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// CategorySet is the ordered domain of a widget range selector.
type CategorySet []Category

// Keys returns the category keys in insertion order.
func (s CategorySet) Keys() []string {
	keys := make([]string, len(s))
	for i, c := range s {
		keys[i] = c.Key
	}
	return keys
}

// Labels returns the display labels in insertion order.
func (s CategorySet) Labels() []string {
	labels := make([]string, len(s))
	for i, c := range s {
		labels[i] = c.Label
	}
	return labels
}

// Index returns the position of key or -1.
func (s CategorySet) Index(key string) int {
	for i, c := range s {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// Contains reports whether key belongs to the set.
func (s CategorySet) Contains(key string) bool {
	return s.Index(key) >= 0
}

// Demographics is the category set shared by most survey widgets.
var Demographics = CategorySet{
	{Key: "male", Label: "Male"},
	{Key: "female", Label: "Female"},
	{Key: "trans", Label: "Transgender"},
	{Key: "others", Label: "Others"},
}

// Point is an individual chart value, optionally labeled and colored.
type Point struct {
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// MetricSeries maps a category key to its ordered data points.
type MetricSeries map[string][]Point

// Points returns a copy of the points for a category.
func (m MetricSeries) Points(key string) ([]Point, bool) {
	points, ok := m[key]
	if !ok {
		return nil, false
	}
	return append([]Point(nil), points...), true
}

func (m MetricSeries) clone() MetricSeries {
	if m == nil {
		return nil
	}
	out := make(MetricSeries, len(m))
	for key, points := range m {
		out[key] = append([]Point(nil), points...)
	}
	return out
}

// ChartKind names the drawing primitive of a widget.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartPie       ChartKind = "pie"
	ChartPolarArea ChartKind = "polar-area"
	ChartCounter   ChartKind = "counter"
)

// SeriesLayout decides how a MetricSeries is projected onto the chart.
type SeriesLayout string

const (
	// LayoutPerCategory plots the selected category only and shows category tabs.
	LayoutPerCategory SeriesLayout = "per-category"
	// LayoutComparison plots every category as its own named series.
	LayoutComparison SeriesLayout = "comparison"
	// LayoutAggregate plots the first value of each category as one point.
	LayoutAggregate SeriesLayout = "aggregate"
)

// FillPolicy is the default used for categories missing from a payload.
type FillPolicy string

const (
	FillEmpty FillPolicy = "empty"
	FillZeros FillPolicy = "zeros"
)

// ChartSpec is the static, declarative presentation of a widget.
type ChartSpec struct {
	Kind           ChartKind    `json:"kind" yaml:"kind"`
	Layout         SeriesLayout `json:"layout,omitempty" yaml:"layout,omitempty"`
	Title          string       `json:"title" yaml:"title"`
	Subtitle       string       `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	SeriesName     string       `json:"series_name,omitempty" yaml:"series_name,omitempty"`
	Labels         []string     `json:"labels,omitempty" yaml:"labels,omitempty"`
	Colors         []string     `json:"colors,omitempty" yaml:"colors,omitempty"`
	PointColors    []string     `json:"point_colors,omitempty" yaml:"point_colors,omitempty"`
	Legend         string       `json:"legend,omitempty" yaml:"legend,omitempty"`
	Tooltip        string       `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	DataLabels     bool         `json:"data_labels,omitempty" yaml:"data_labels,omitempty"`
	LabelFormatter string       `json:"label_formatter,omitempty" yaml:"label_formatter,omitempty"`
	YAxisMin       *float64     `json:"y_axis_min,omitempty" yaml:"y_axis_min,omitempty"`
	Smooth         bool         `json:"smooth,omitempty" yaml:"smooth,omitempty"`
	Height         string       `json:"height,omitempty" yaml:"height,omitempty"`
}

func (s ChartSpec) layout() SeriesLayout {
	if s.Layout == "" {
		return LayoutPerCategory
	}
	return s.Layout
}

// WidgetDefinition is the configuration record of one dashboard widget.
type WidgetDefinition struct {
	Code        string      `json:"code" yaml:"code"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Source      SourceKind  `json:"source" yaml:"source"`
	Endpoint    string      `json:"endpoint" yaml:"endpoint"`
	Categories  CategorySet `json:"categories,omitempty" yaml:"categories,omitempty"`
	Fill        FillPolicy  `json:"fill,omitempty" yaml:"fill,omitempty"`
	Chart       ChartSpec   `json:"chart" yaml:"chart"`
	Span        int         `json:"span,omitempty" yaml:"span,omitempty"`
}

// clone copies the slices so the returned definition shares no backing arrays.
func (d WidgetDefinition) clone() WidgetDefinition {
	d.Categories = slices.Clone(d.Categories)
	d.Chart.Labels = slices.Clone(d.Chart.Labels)
	d.Chart.Colors = slices.Clone(d.Chart.Colors)
	d.Chart.PointColors = slices.Clone(d.Chart.PointColors)
	return d
}

// SourceKind selects which upstream a widget reads from.
type SourceKind string

const (
	// SourceSurvey reads `/survey/<endpoint>` aggregates.
	SourceSurvey SourceKind = "survey"
	// SourceCounter reads one key of the project widgets payload.
	SourceCounter SourceKind = "counter"
)

// WidgetEvent describes widget changes transports might care about.
type WidgetEvent struct {
	ViewID   string     `json:"view_id"`
	WidgetID string     `json:"widget_id,omitempty"`
	Code     string     `json:"code,omitempty"`
	Status   LoadStatus `json:"status"`
	Reason   string     `json:"reason"`
	At       time.Time  `json:"at"`
}

// CarouselItem is a static card rendered on the Home tab.
type CarouselItem struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// TeamMember is a static entry rendered on the team tab.
type TeamMember struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}
