package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ettle/strcase"
	"go.uber.org/zap"
)

// WidgetOptions wires a widget instance to its collaborators.
type WidgetOptions struct {
	Definition WidgetDefinition
	Loader     Loader
	Renderer   *ChartRenderer
	Logger     *zap.Logger
	// Timeout bounds the single fetch; zero means no deadline.
	Timeout time.Duration
	// OnSettle runs once when the fetch settles while the widget is mounted.
	OnSettle func(w *Widget, state LoadState)
}

// Widget is one chart tile: a single fetch, a load state and a range selector.
type Widget struct {
	id       string
	def      WidgetDefinition
	loader   Loader
	renderer *ChartRenderer
	logger   *zap.Logger
	timeout  time.Duration
	onSettle func(w *Widget, state LoadState)

	mu       sync.Mutex
	state    LoadState
	selector *RangeSelector
	started  bool
	mounted  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWidget builds an unmounted widget in the Loading state.
func NewWidget(opts WidgetOptions) *Widget {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return &Widget{
		id:       WidgetID(opts.Definition.Code),
		def:      opts.Definition,
		loader:   opts.Loader,
		renderer: renderer,
		logger:   logger.With(zap.String("widget", opts.Definition.Code)),
		timeout:  opts.Timeout,
		onSettle: opts.OnSettle,
		selector: NewRangeSelector(opts.Definition.Categories),
		done:     make(chan struct{}),
	}
}

// WidgetID derives the DOM/URL-safe id of a widget code.
func WidgetID(code string) string {
	return strcase.ToKebab(code)
}

// ID returns the widget id.
func (w *Widget) ID() string {
	return w.id
}

// Definition returns the widget configuration record.
func (w *Widget) Definition() WidgetDefinition {
	return w.def
}

// Mount issues the widget's fetch. Only the first call has an effect.
func (w *Widget) Mount(parent context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mounted = true
	ctx, cancel := context.WithCancel(parent)
	if w.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, w.timeout)
		base := cancel
		cancel = func() {
			timeoutCancel()
			base()
		}
	}
	w.cancel = cancel
	w.mu.Unlock()

	if w.loader == nil {
		w.settle(LoadResult{}, ErrMissingLoader)
		return
	}
	go func() {
		result, err := w.loader.Load(ctx)
		w.settle(result, err)
	}()
}

// Unmount cancels an in-flight fetch. Results arriving afterwards are discarded.
func (w *Widget) Unmount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.mounted {
		return
	}
	w.mounted = false
	if w.cancel != nil {
		w.cancel()
	}
	if !w.state.settled() {
		close(w.done)
	}
}

// Mounted reports whether the widget is mounted.
func (w *Widget) Mounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}

// Wait blocks until the fetch settles, the widget unmounts, or ctx ends.
func (w *Widget) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Widget) settle(result LoadResult, err error) {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		w.logger.Debug("discarding fetch result for unmounted widget")
		return
	}
	var (
		next    LoadState
		changed bool
	)
	if err != nil {
		next, changed = w.state.failed(err)
	} else {
		next, changed = w.state.ready(result)
	}
	if !changed {
		w.mu.Unlock()
		return
	}
	w.state = next
	if next.Status() == StatusReady && len(next.categories) > 0 {
		w.selector = NewRangeSelector(next.categories)
		w.selector.SelectKey(next.selected)
	}
	if w.cancel != nil {
		w.cancel()
	}
	close(w.done)
	onSettle := w.onSettle
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("widget fetch failed",
			zap.String("endpoint", w.def.Endpoint),
			zap.String("class", ErrorClass(err)),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			zap.Error(err),
		)
	} else {
		w.logger.Debug("widget fetch settled", zap.String("endpoint", w.def.Endpoint))
	}
	if onSettle != nil {
		onSettle(w, next)
	}
}

// State returns a snapshot of the load state.
func (w *Widget) State() LoadState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Select moves the range selector; it reports whether the selection changed.
func (w *Widget) Select(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selector.Select(index)
}

// View renders the widget's current representation.
func (w *Widget) View() WidgetView {
	w.mu.Lock()
	state := w.state
	selector := w.selector
	categories := selector.Categories()
	current, hasCurrent := selector.Current()
	index := selector.Index()
	w.mu.Unlock()

	spec := w.def.Chart
	view := WidgetView{
		ID:            w.id,
		Code:          w.def.Code,
		Title:         spec.Title,
		Subtitle:      spec.Subtitle,
		Kind:          spec.Kind,
		Status:        state.Status(),
		Span:          w.def.Span,
		SelectedIndex: index,
		Selected:      current.Key,
		ShowTabs:      spec.layout() == LayoutPerCategory && len(categories) > 1,
		Tabs:          tabViews(categories, index),
	}
	if view.Span <= 0 {
		view.Span = 1
	}
	switch state.Status() {
	case StatusLoading:
		return view
	case StatusFailed:
		view.Error = "Data is currently unavailable."
		return view
	}
	if !hasCurrent || !categories.Contains(current.Key) {
		// Ready without a usable selection falls back to the loading path.
		view.Status = StatusLoading
		return view
	}
	if spec.Kind == ChartCounter {
		view.Counter = counterView(state.series, current.Key)
		return view
	}
	html, err := w.renderer.Render(ChartRequest{
		ChartID:    "chart-" + w.id,
		Definition: w.def,
		Series:     state.series,
		Categories: categories,
		Selected:   current.Key,
	})
	if err != nil {
		w.logger.Error("widget render failed", zap.Error(err))
		view.Error = "Chart could not be rendered."
		return view
	}
	view.ChartHTML = html
	return view
}

func counterView(series MetricSeries, key string) *CounterView {
	points, _ := series.Points(key)
	view := &CounterView{}
	if len(points) > 0 {
		view.Name = points[0].Label
		view.Value = points[0].Value
	}
	if len(points) > 1 {
		view.ExtraName = points[1].Label
		view.ExtraValue = points[1].Value
	}
	return view
}

func tabViews(categories CategorySet, active int) []TabView {
	tabs := make([]TabView, len(categories))
	for i, c := range categories {
		tabs[i] = TabView{Index: i, Key: c.Key, Label: c.Label, Active: i == active}
	}
	return tabs
}
