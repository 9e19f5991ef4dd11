package survey

import dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"

// Client is a convenience union for services that serve both survey aggregates and counters.
type Client interface {
	dashboard.SurveySource
	dashboard.CounterSource
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
