package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

func TestSelectRangeCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSelectRangeCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SelectRangeInput{ViewID: "v1", WidgetID: "osa-risk", Index: 2}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.selectCalls != 1 || service.lastIndex != 2 || service.lastWidget != "osa-risk" {
		t.Fatalf("expected select call with propagated input, got %+v", service)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry to record select")
	}
}

func TestSelectRangeCommandPropagatesErrors(t *testing.T) {
	service := &stubService{err: dashboard.ErrViewNotFound}
	cmd := NewSelectRangeCommand(service, nil)
	err := cmd.Execute(context.Background(), SelectRangeInput{ViewID: "missing"})
	if !errors.Is(err, dashboard.ErrViewNotFound) {
		t.Fatalf("expected view not found, got %v", err)
	}
}

func TestSwitchTabCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewSwitchTabCommand(service, nil)
	if err := cmd.Execute(context.Background(), SwitchTabInput{ViewID: "v1", Index: 1}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.tabCalls != 1 || service.lastIndex != 1 {
		t.Fatalf("expected tab switch call")
	}
}

func TestCloseViewCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewCloseViewCommand(service, nil)
	if err := cmd.Execute(context.Background(), CloseViewInput{ViewID: "v1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.closeCalls != 1 {
		t.Fatalf("expected close call")
	}
}

func TestSweepViewsCommand(t *testing.T) {
	service := &stubService{expired: 3}
	telemetry := &stubTelemetry{}
	cmd := NewSweepViewsCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SweepViewsInput{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.sweepCalls != 1 {
		t.Fatalf("expected sweep call")
	}
	if telemetry.last["expired"] != 3 {
		t.Fatalf("expected expired count in telemetry, got %v", telemetry.last)
	}
}

func TestRefreshWidgetCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshWidgetCommand(service)
	event := dashboard.WidgetEvent{ViewID: "v1", WidgetID: "cancer"}
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshCalls != 1 {
		t.Fatalf("expected refresh call")
	}
	if service.lastEvent.Reason != "refresh" {
		t.Fatalf("expected default reason, got %q", service.lastEvent.Reason)
	}
}

func TestRefreshWidgetCommandRequiresView(t *testing.T) {
	cmd := NewRefreshWidgetCommand(&stubService{})
	if err := cmd.Execute(context.Background(), RefreshWidgetInput{}); err == nil {
		t.Fatalf("expected error without view id")
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSelectRangeCommand(nil, nil).Execute(ctx, SelectRangeInput{}); err == nil {
		t.Fatalf("expected select error")
	}
	if err := NewSwitchTabCommand(nil, nil).Execute(ctx, SwitchTabInput{}); err == nil {
		t.Fatalf("expected tab error")
	}
	if err := NewCloseViewCommand(nil, nil).Execute(ctx, CloseViewInput{}); err == nil {
		t.Fatalf("expected close error")
	}
	if err := NewSweepViewsCommand(nil, nil).Execute(ctx, SweepViewsInput{}); err == nil {
		t.Fatalf("expected sweep error")
	}
}

type stubService struct {
	selectCalls  int
	tabCalls     int
	closeCalls   int
	sweepCalls   int
	refreshCalls int
	lastWidget   string
	lastIndex    int
	lastEvent    dashboard.WidgetEvent
	expired      int
	err          error
}

func (s *stubService) Select(_ context.Context, _ string, widgetID string, index int) (dashboard.WidgetView, error) {
	s.selectCalls++
	s.lastWidget = widgetID
	s.lastIndex = index
	return dashboard.WidgetView{ID: widgetID, SelectedIndex: index}, s.err
}

func (s *stubService) SwitchTab(_ context.Context, _ string, index int) (dashboard.PageView, error) {
	s.tabCalls++
	s.lastIndex = index
	return dashboard.PageView{ActiveTab: index}, s.err
}

func (s *stubService) Close(context.Context, string) error {
	s.closeCalls++
	return s.err
}

func (s *stubService) Sweep(context.Context) int {
	s.sweepCalls++
	return s.expired
}

func (s *stubService) NotifyWidgetUpdated(_ context.Context, event dashboard.WidgetEvent) error {
	s.refreshCalls++
	s.lastEvent = event
	return s.err
}

type stubTelemetry struct {
	calls int
	last  map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, _ string, payload map[string]any) {
	s.calls++
	s.last = payload
}
