package dashboard

import (
	"context"
	"fmt"
)

// Loader performs a widget's single data fetch.
type Loader interface {
	Load(ctx context.Context) (LoadResult, error)
}

// LoaderFunc adapts a function into a Loader.
type LoaderFunc func(ctx context.Context) (LoadResult, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (LoadResult, error) {
	return f(ctx)
}

// LoaderFactory builds the loader for a widget definition.
type LoaderFactory func(def WidgetDefinition) (Loader, error)

// SurveySource fetches `/survey/<endpoint>` aggregates.
type SurveySource interface {
	FetchSurvey(ctx context.Context, endpoint string) (SurveyPayload, error)
}

// CounterSource fetches the project widgets payload used by counter widgets.
type CounterSource interface {
	FetchCounters(ctx context.Context) (map[string]CounterReport, error)
}

// CounterReport is one counter widget entry of the project widgets payload.
type CounterReport struct {
	Name         string
	Counts       map[string]float64
	ExtraName    string
	ExtraCounts  map[string]float64
	Ranges       CategorySet
	CurrentRange string
}

type surveyLoader struct {
	source SurveySource
	def    WidgetDefinition
}

// NewSurveyLoader loads a survey endpoint and transforms it per the definition.
func NewSurveyLoader(source SurveySource, def WidgetDefinition) Loader {
	return &surveyLoader{source: source, def: def}
}

func (l *surveyLoader) Load(ctx context.Context) (LoadResult, error) {
	if l.source == nil {
		return LoadResult{}, ErrMissingLoader
	}
	payload, err := l.source.FetchSurvey(ctx, l.def.Endpoint)
	if err != nil {
		return LoadResult{}, err
	}
	series, err := BuildMetricSeries(payload, l.def)
	if err != nil {
		return LoadResult{}, err
	}
	return LoadResult{Series: series}, nil
}

type counterLoader struct {
	source CounterSource
	def    WidgetDefinition
}

// NewCounterLoader loads one counter entry (keyed by the definition endpoint).
func NewCounterLoader(source CounterSource, def WidgetDefinition) Loader {
	return &counterLoader{source: source, def: def}
}

func (l *counterLoader) Load(ctx context.Context) (LoadResult, error) {
	if l.source == nil {
		return LoadResult{}, ErrMissingLoader
	}
	reports, err := l.source.FetchCounters(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	report, ok := reports[l.def.Endpoint]
	if !ok {
		return LoadResult{}, &ParseError{Field: l.def.Endpoint, Err: fmt.Errorf("counter %q missing from payload", l.def.Endpoint)}
	}
	return BuildCounterResult(report, l.def), nil
}

// BuildCounterResult converts a counter report into a series keyed by range.
// Each range holds the headline count followed by the extra count.
func BuildCounterResult(report CounterReport, def WidgetDefinition) LoadResult {
	ranges := report.Ranges
	if len(ranges) == 0 {
		ranges = def.Categories
	}
	series := make(MetricSeries, len(ranges))
	for _, r := range ranges {
		series[r.Key] = []Point{
			{Label: report.Name, Value: report.Counts[r.Key]},
			{Label: report.ExtraName, Value: report.ExtraCounts[r.Key]},
		}
	}
	return LoadResult{
		Series:     series,
		Categories: ranges,
		Selected:   report.CurrentRange,
	}
}

// ResolveLoader picks the loader of a definition: a registered factory first,
// then the built-in loader for its source.
func ResolveLoader(reg DefinitionRegistry, survey SurveySource, counters CounterSource, def WidgetDefinition) (Loader, error) {
	if reg != nil {
		if factory, ok := reg.LoaderFactory(def.Code); ok {
			return factory(def)
		}
	}
	switch def.Source {
	case SourceSurvey, "":
		if survey == nil {
			return nil, ErrMissingLoader
		}
		return NewSurveyLoader(survey, def), nil
	case SourceCounter:
		if counters == nil {
			return nil, ErrMissingLoader
		}
		return NewCounterLoader(counters, def), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", ErrMissingLoader, def.Source)
	}
}
