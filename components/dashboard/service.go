package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultFirstPaintWait = 750 * time.Millisecond
	defaultViewTTL        = 30 * time.Minute
	defaultSweepInterval  = time.Minute
)

var errInvalidViewID = errors.New("dashboard: view id is required")

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap data sources and transports.
type Options struct {
	Registry    DefinitionRegistry
	Survey      SurveySource
	Counters    CounterSource
	Renderer    *ChartRenderer
	Logger      *zap.Logger
	Telemetry   Telemetry
	RefreshHook RefreshHook
	// RequestTimeout bounds each widget fetch. Negative disables the deadline.
	RequestTimeout time.Duration
	// FirstPaintWait is how long Open waits for widgets to settle before rendering placeholders.
	FirstPaintWait time.Duration
	ViewTTL        time.Duration
	SweepInterval  time.Duration
	Carousel       []CarouselItem
	Team           []TeamMember
	Now            func() time.Time
	NewID          func() string
}

// Service owns the live page views and drives their widgets.
type Service struct {
	opts   Options
	logger *zap.Logger

	mu    sync.Mutex
	views map[string]*View
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Renderer == nil {
		opts.Renderer = NewChartRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.FirstPaintWait == 0 {
		opts.FirstPaintWait = defaultFirstPaintWait
	}
	if opts.ViewTTL <= 0 {
		opts.ViewTTL = defaultViewTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.Carousel == nil {
		opts.Carousel = DefaultCarousel
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	s := &Service{
		opts:   opts,
		logger: opts.Logger,
		views:  map[string]*View{},
	}
	if r, ok := opts.RefreshHook.(replayable); ok {
		r.SetReplay(s.SettledEvents)
	}
	return s
}

type replayable interface {
	SetReplay(fn ReplayFunc)
}

// SettledEvents returns a settled event for every mounted widget of the view
// that has left Loading. Unknown views return nil.
func (s *Service) SettledEvents(viewID string) []WidgetEvent {
	view, err := s.lookup(viewID)
	if err != nil {
		return nil
	}
	var events []WidgetEvent
	for _, w := range view.Widgets() {
		state := w.State()
		if !state.settled() {
			continue
		}
		events = append(events, WidgetEvent{
			ViewID:   viewID,
			WidgetID: w.ID(),
			Code:     w.Definition().Code,
			Status:   state.Status(),
			Reason:   "settled",
			At:       s.opts.Now(),
		})
	}
	return events
}

// Definitions lists the widgets in grid order.
func (s *Service) Definitions() []WidgetDefinition {
	return s.opts.Registry.Definitions()
}

// Open creates a page view, mounts the Home widgets and returns the first paint.
func (s *Service) Open(ctx context.Context) (PageView, error) {
	id := s.opts.NewID()
	view := NewView(ViewOptions{
		ID:       id,
		Widgets:  s.widgetFactory(id),
		Carousel: s.opts.Carousel,
		Team:     s.opts.Team,
		Logger:   s.logger,
		Now:      s.opts.Now,
	})
	s.mu.Lock()
	s.views[id] = view
	s.mu.Unlock()

	if s.opts.FirstPaintWait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, s.opts.FirstPaintWait)
		err := view.WaitSettled(waitCtx)
		cancel()
		if err != nil && ctx.Err() != nil {
			return PageView{}, ctx.Err()
		}
	}
	page := s.snapshot(view)
	s.recordTelemetry(ctx, "dashboard.view.open", map[string]any{
		"view_id": id,
		"widgets": len(page.Widgets),
		"pending": page.Pending,
	})
	return page, nil
}

// Page returns the current snapshot of a view.
func (s *Service) Page(ctx context.Context, viewID string) (PageView, error) {
	view, err := s.lookup(viewID)
	if err != nil {
		return PageView{}, err
	}
	return s.snapshot(view), nil
}

// Widget returns the current snapshot of one widget in a view.
func (s *Service) Widget(ctx context.Context, viewID, widgetID string) (WidgetView, error) {
	_, widget, err := s.lookupWidget(viewID, widgetID)
	if err != nil {
		return WidgetView{}, err
	}
	return widget.View(), nil
}

// Select moves a widget's range selector and returns the re-rendered widget.
func (s *Service) Select(ctx context.Context, viewID, widgetID string, index int) (WidgetView, error) {
	view, widget, err := s.lookupWidget(viewID, widgetID)
	if err != nil {
		return WidgetView{}, err
	}
	changed := widget.Select(index)
	snapshot := widget.View()
	if changed {
		s.notify(ctx, WidgetEvent{
			ViewID:   view.ID(),
			WidgetID: widget.ID(),
			Code:     widget.Definition().Code,
			Status:   snapshot.Status,
			Reason:   "select",
			At:       s.opts.Now(),
		})
	}
	s.recordTelemetry(ctx, "dashboard.widget.select", map[string]any{
		"view_id":   viewID,
		"widget_id": widgetID,
		"index":     snapshot.SelectedIndex,
		"changed":   changed,
	})
	return snapshot, nil
}

// SwitchTab changes the page tab of a view.
func (s *Service) SwitchTab(ctx context.Context, viewID string, index int) (PageView, error) {
	view, err := s.lookup(viewID)
	if err != nil {
		return PageView{}, err
	}
	changed := view.SwitchTab(index)
	page := s.snapshot(view)
	if changed {
		s.notify(ctx, WidgetEvent{ViewID: viewID, Reason: "tab", At: s.opts.Now()})
	}
	s.recordTelemetry(ctx, "dashboard.view.tab", map[string]any{
		"view_id": viewID,
		"tab":     page.ActiveTab,
		"changed": changed,
	})
	return page, nil
}

// Close tears a view down and cancels its outstanding fetches.
func (s *Service) Close(ctx context.Context, viewID string) error {
	if viewID == "" {
		return errInvalidViewID
	}
	s.mu.Lock()
	view, ok := s.views[viewID]
	delete(s.views, viewID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	view.Close()
	s.notify(ctx, WidgetEvent{ViewID: viewID, Reason: "close", At: s.opts.Now()})
	s.recordTelemetry(ctx, "dashboard.view.close", map[string]any{"view_id": viewID})
	return nil
}

// Len reports the number of live views.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Sweep closes views idle for longer than the configured TTL.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.opts.Now().Add(-s.opts.ViewTTL)
	var expired []*View
	s.mu.Lock()
	for id, view := range s.views {
		if view.LastSeen().Before(cutoff) {
			expired = append(expired, view)
			delete(s.views, id)
		}
	}
	s.mu.Unlock()
	for _, view := range expired {
		view.Close()
	}
	if purger, ok := s.cachePurger(); ok {
		purger.Purge()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle views", zap.Int("count", len(expired)))
		s.recordTelemetry(ctx, "dashboard.view.sweep", map[string]any{"expired": len(expired)})
	}
	return len(expired)
}

// Run sweeps idle views until ctx is cancelled, then shuts every view down.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Shutdown closes every live view.
func (s *Service) Shutdown() {
	s.mu.Lock()
	views := s.views
	s.views = map[string]*View{}
	s.mu.Unlock()
	for _, view := range views {
		view.Close()
	}
}

func (s *Service) snapshot(view *View) PageView {
	view.Touch()
	page := view.Snapshot()
	page.Scripts = s.scripts()
	return page
}

func (s *Service) scripts() []string {
	seen := map[string]bool{}
	var urls []string
	for _, def := range s.opts.Registry.Definitions() {
		if def.Chart.Kind == ChartCounter {
			continue
		}
		for _, url := range EChartsScriptURLs(s.opts.Renderer.AssetsHost(), s.opts.Renderer.Theme(def)) {
			if !seen[url] {
				seen[url] = true
				urls = append(urls, url)
			}
		}
	}
	return urls
}

func (s *Service) cachePurger() (interface{ Purge() int }, bool) {
	cache, ok := s.opts.Renderer.cache.(interface{ Purge() int })
	return cache, ok
}

func (s *Service) lookup(viewID string) (*View, error) {
	if viewID == "" {
		return nil, errInvalidViewID
	}
	s.mu.Lock()
	view, ok := s.views[viewID]
	s.mu.Unlock()
	if !ok || view.Closed() {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, viewID)
	}
	return view, nil
}

func (s *Service) lookupWidget(viewID, widgetID string) (*View, *Widget, error) {
	view, err := s.lookup(viewID)
	if err != nil {
		return nil, nil, err
	}
	view.Touch()
	widget, ok := view.Widget(widgetID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	return view, widget, nil
}

func (s *Service) widgetFactory(viewID string) func() []*Widget {
	return func() []*Widget {
		defs := s.opts.Registry.Definitions()
		widgets := make([]*Widget, 0, len(defs))
		for _, def := range defs {
			loader, err := s.loaderFor(def)
			if err != nil {
				loader = failingLoader(err)
			}
			timeout := s.opts.RequestTimeout
			if timeout < 0 {
				timeout = 0
			}
			widgets = append(widgets, NewWidget(WidgetOptions{
				Definition: def,
				Loader:     loader,
				Renderer:   s.opts.Renderer,
				Logger:     s.logger.With(zap.String("view", viewID)),
				Timeout:    timeout,
				OnSettle:   s.onSettle(viewID),
			}))
		}
		return widgets
	}
}

func (s *Service) loaderFor(def WidgetDefinition) (Loader, error) {
	return ResolveLoader(s.opts.Registry, s.opts.Survey, s.opts.Counters, def)
}

func failingLoader(err error) Loader {
	return LoaderFunc(func(context.Context) (LoadResult, error) {
		return LoadResult{}, err
	})
}

func (s *Service) onSettle(viewID string) func(w *Widget, state LoadState) {
	return func(w *Widget, state LoadState) {
		ctx := context.Background()
		event := WidgetEvent{
			ViewID:   viewID,
			WidgetID: w.ID(),
			Code:     w.Definition().Code,
			Status:   state.Status(),
			Reason:   "settled",
			At:       s.opts.Now(),
		}
		s.notify(ctx, event)
		payload := map[string]any{
			"view_id":   viewID,
			"widget_id": w.ID(),
			"status":    string(state.Status()),
		}
		if err := state.Err(); err != nil {
			payload["error_class"] = ErrorClass(err)
		}
		s.recordTelemetry(ctx, "dashboard.widget.settled", payload)
	}
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"view_id":   event.ViewID,
		"widget_id": event.WidgetID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, event WidgetEvent) {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		s.logger.Warn("refresh hook failed", zap.String("reason", event.Reason), zap.Error(err))
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
