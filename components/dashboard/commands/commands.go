package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

var errMissingService = errors.New("commands: dashboard service is required")

// SelectRangeInput moves the range selector of one widget.
type SelectRangeInput struct {
	ViewID   string `json:"view_id"`
	WidgetID string `json:"widget_id"`
	Index    int    `json:"index"`
}

type rangeSelector interface {
	Select(ctx context.Context, viewID, widgetID string, index int) (dashboard.WidgetView, error)
}

// SelectRangeCommand switches the category shown by a widget.
type SelectRangeCommand struct {
	service   rangeSelector
	telemetry Telemetry
}

// NewSelectRangeCommand creates the command.
func NewSelectRangeCommand(service rangeSelector, telemetry Telemetry) *SelectRangeCommand {
	return &SelectRangeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectRangeInput] = (*SelectRangeCommand)(nil)

// Execute applies the selection. Out-of-range indices are clamped by the widget.
func (c *SelectRangeCommand) Execute(ctx context.Context, msg SelectRangeInput) error {
	if c.service == nil {
		return errMissingService
	}
	view, err := c.service.Select(ctx, msg.ViewID, msg.WidgetID, msg.Index)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.select", map[string]any{
		"view_id":   msg.ViewID,
		"widget_id": msg.WidgetID,
		"selected":  view.Selected,
	})
	return nil
}

// SwitchTabInput changes the page-level tab of a view.
type SwitchTabInput struct {
	ViewID string `json:"view_id"`
	Index  int    `json:"index"`
}

type tabSwitcher interface {
	SwitchTab(ctx context.Context, viewID string, index int) (dashboard.PageView, error)
}

// SwitchTabCommand toggles between the Home and team tabs.
type SwitchTabCommand struct {
	service   tabSwitcher
	telemetry Telemetry
}

// NewSwitchTabCommand creates the command.
func NewSwitchTabCommand(service tabSwitcher, telemetry Telemetry) *SwitchTabCommand {
	return &SwitchTabCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SwitchTabInput] = (*SwitchTabCommand)(nil)

// Execute switches the tab.
func (c *SwitchTabCommand) Execute(ctx context.Context, msg SwitchTabInput) error {
	if c.service == nil {
		return errMissingService
	}
	page, err := c.service.SwitchTab(ctx, msg.ViewID, msg.Index)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.tab", map[string]any{
		"view_id": msg.ViewID,
		"tab":     page.ActiveTab,
	})
	return nil
}

// CloseViewInput identifies a view to tear down.
type CloseViewInput struct {
	ViewID string `json:"view_id"`
}

type viewCloser interface {
	Close(ctx context.Context, viewID string) error
}

// CloseViewCommand unmounts every widget of a view and cancels its fetches.
type CloseViewCommand struct {
	service   viewCloser
	telemetry Telemetry
}

// NewCloseViewCommand creates the command.
func NewCloseViewCommand(service viewCloser, telemetry Telemetry) *CloseViewCommand {
	return &CloseViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CloseViewInput] = (*CloseViewCommand)(nil)

// Execute closes the view.
func (c *CloseViewCommand) Execute(ctx context.Context, msg CloseViewInput) error {
	if c.service == nil {
		return errMissingService
	}
	if err := c.service.Close(ctx, msg.ViewID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.close", map[string]any{"view_id": msg.ViewID})
	return nil
}

// SweepViewsInput triggers an idle view sweep.
type SweepViewsInput struct{}

type viewSweeper interface {
	Sweep(ctx context.Context) int
}

// SweepViewsCommand expires idle views on demand.
type SweepViewsCommand struct {
	service   viewSweeper
	telemetry Telemetry
}

// NewSweepViewsCommand creates the command.
func NewSweepViewsCommand(service viewSweeper, telemetry Telemetry) *SweepViewsCommand {
	return &SweepViewsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SweepViewsInput] = (*SweepViewsCommand)(nil)

// Execute runs the sweep.
func (c *SweepViewsCommand) Execute(ctx context.Context, _ SweepViewsInput) error {
	if c.service == nil {
		return errMissingService
	}
	expired := c.service.Sweep(ctx)
	c.telemetry.Record(ctx, "dashboard.command.sweep", map[string]any{"expired": expired})
	return nil
}
