package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

// RefreshWidgetInput re-emits the refresh event of a widget so clients refetch its fragment.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent `json:"event"`
}

type refreshNotifier interface {
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// RefreshWidgetCommand triggers refresh hooks without refetching data.
// The service records the event telemetry itself.
type RefreshWidgetCommand struct {
	service refreshNotifier
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refreshNotifier) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute notifies the dashboard service's refresh hooks.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.ViewID == "" {
		return errors.New("refresh command requires a view id")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "refresh"
	}
	return c.service.NotifyWidgetUpdated(ctx, msg.Event)
}
