package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

// ViewInput identifies a page view.
type ViewInput struct {
	ViewID string `json:"view_id"`
}

type pageService interface {
	Page(ctx context.Context, viewID string) (dashboard.PageView, error)
}

// ViewQuery executes read-only page view resolution.
type ViewQuery struct {
	service pageService
}

// NewViewQuery builds the query.
func NewViewQuery(service pageService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[ViewInput, dashboard.PageView] = (*ViewQuery)(nil)

// Query returns the current snapshot of the view.
func (q *ViewQuery) Query(ctx context.Context, input ViewInput) (dashboard.PageView, error) {
	return q.service.Page(ctx, input.ViewID)
}
