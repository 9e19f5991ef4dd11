package dashboard

import (
	core "github.com/goliatone/go-wbt-dashboard/components/dashboard"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-wbt-dashboard/components/dashboard/queries"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Registry re-exports the widget registry.
type Registry = core.Registry

// WidgetDefinition re-exports the widget configuration record.
type WidgetDefinition = core.WidgetDefinition

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewRegistry returns a registry seeded with the built-in widgets.
func NewRegistry() *Registry {
	return core.NewRegistry()
}

// NewHandlers wires the shared commands and queries over a service into JSON handlers.
// hook may be nil when no event stream is exposed.
func NewHandlers(service *Service, hook *core.BroadcastHook, telemetry commands.Telemetry) *httpapi.Handlers {
	return &httpapi.Handlers{
		Open:      service,
		View:      queries.NewViewQuery(service),
		Widget:    queries.NewWidgetQuery(service),
		Select:    commands.NewSelectRangeCommand(service, telemetry),
		Tab:       commands.NewSwitchTabCommand(service, telemetry),
		Close:     commands.NewCloseViewCommand(service, telemetry),
		Refresh:   commands.NewRefreshWidgetCommand(service),
		Sweep:     commands.NewSweepViewsCommand(service, telemetry),
		Broadcast: hook,
	}
}
