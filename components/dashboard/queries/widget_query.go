package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

// WidgetInput identifies a widget mounted in a page view.
type WidgetInput struct {
	ViewID   string `json:"view_id"`
	WidgetID string `json:"widget_id"`
}

type widgetService interface {
	Widget(ctx context.Context, viewID, widgetID string) (dashboard.WidgetView, error)
}

// WidgetQuery fetches the snapshot of one widget.
type WidgetQuery struct {
	service widgetService
}

// NewWidgetQuery builds the query.
func NewWidgetQuery(service widgetService) *WidgetQuery {
	return &WidgetQuery{service: service}
}

var _ gocommand.Querier[WidgetInput, dashboard.WidgetView] = (*WidgetQuery)(nil)

// Query resolves an individual widget of the view.
func (q *WidgetQuery) Query(ctx context.Context, input WidgetInput) (dashboard.WidgetView, error) {
	return q.service.Widget(ctx, input.ViewID, input.WidgetID)
}
