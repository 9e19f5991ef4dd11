package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// TabHome is the page tab holding the widget grid.
	TabHome = 0
	// TabTeam is the static team page tab.
	TabTeam = 1

	revealStagger = 40 * time.Millisecond
)

var pageTabLabels = []string{"Home", "Our Team"}

// ViewOptions configures a page view.
type ViewOptions struct {
	ID       string
	Widgets  func() []*Widget
	Carousel []CarouselItem
	Team     []TeamMember
	Logger   *zap.Logger
	Now      func() time.Time
}

// View is one visit to the dashboard page. It owns its widgets exclusively.
type View struct {
	id       string
	build    func() []*Widget
	carousel []CarouselItem
	team     []TeamMember
	logger   *zap.Logger
	now      func() time.Time
	created  time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	tabs     *TabContainer
	widgets  []*Widget
	index    map[string]*Widget
	lastSeen time.Time
	closed   bool
}

// NewView builds a view and mounts the Home tab widgets.
func NewView(opts ViewOptions) *View {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		id:       opts.ID,
		build:    opts.Widgets,
		carousel: append([]CarouselItem(nil), opts.Carousel...),
		team:     append([]TeamMember(nil), opts.Team...),
		logger:   logger.With(zap.String("view", opts.ID)),
		now:      now,
		created:  now(),
		ctx:      ctx,
		cancel:   cancel,
		tabs:     NewTabContainer(pageTabLabels...),
	}
	v.lastSeen = v.created
	v.mu.Lock()
	v.mountHomeLocked()
	v.mu.Unlock()
	return v
}

// ID returns the view id.
func (v *View) ID() string {
	return v.id
}

// Touch records activity for expiry.
func (v *View) Touch() {
	v.mu.Lock()
	v.lastSeen = v.now()
	v.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (v *View) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// ActiveTab returns the page tab index.
func (v *View) ActiveTab() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tabs.Index()
}

// SwitchTab activates a page tab. Leaving Home unmounts its widgets; entering
// Home mounts fresh instances. Selecting the active tab changes nothing.
func (v *View) SwitchTab(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	previous := v.tabs.Index()
	if !v.tabs.OnSelect(index) {
		return false
	}
	if previous == TabHome {
		v.unmountLocked()
	}
	if v.tabs.Index() == TabHome {
		v.mountHomeLocked()
	}
	v.logger.Debug("page tab switched", zap.Int("from", previous), zap.Int("to", v.tabs.Index()))
	return true
}

// Widget looks up a mounted widget by id.
func (v *View) Widget(id string) (*Widget, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	w, ok := v.index[id]
	return w, ok
}

// Widgets returns the mounted widgets in grid order.
func (v *View) Widgets() []*Widget {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*Widget(nil), v.widgets...)
}

// WaitSettled blocks until every mounted widget settled or ctx ends.
func (v *View) WaitSettled(ctx context.Context) error {
	for _, w := range v.Widgets() {
		if err := w.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close unmounts every widget and cancels outstanding fetches.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.unmountLocked()
	v.cancel()
	v.logger.Debug("view closed")
}

// Closed reports whether the view was closed.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Snapshot renders the page view.
func (v *View) Snapshot() PageView {
	v.mu.Lock()
	widgets := append([]*Widget(nil), v.widgets...)
	active := v.tabs.Index()
	labels := v.tabs.Labels()
	v.mu.Unlock()

	page := PageView{
		ID:        v.id,
		ActiveTab: active,
		CreatedAt: v.created,
		Tabs:      make([]TabView, len(labels)),
	}
	for i, label := range labels {
		page.Tabs[i] = TabView{Index: i, Label: label, Active: i == active}
	}
	switch active {
	case TabHome:
		page.Carousel = append([]CarouselItem(nil), v.carousel...)
		page.Widgets = make([]WidgetView, 0, len(widgets))
		for i, w := range widgets {
			view := w.View()
			view.RevealDelayMS = int((time.Duration(i) * revealStagger) / time.Millisecond)
			if view.Loading() {
				page.Pending++
			}
			page.Widgets = append(page.Widgets, view)
		}
	case TabTeam:
		page.Team = append([]TeamMember(nil), v.team...)
	}
	return page
}

func (v *View) mountHomeLocked() {
	if v.build == nil {
		return
	}
	v.widgets = v.build()
	v.index = make(map[string]*Widget, len(v.widgets))
	for _, w := range v.widgets {
		v.index[w.ID()] = w
	}
	for _, w := range v.widgets {
		w.Mount(v.ctx)
	}
}

func (v *View) unmountLocked() {
	for _, w := range v.widgets {
		w.Unmount()
	}
	v.widgets = nil
	v.index = map[string]*Widget{}
}
