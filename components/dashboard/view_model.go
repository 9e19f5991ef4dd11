package dashboard

import "time"

// TabView is a selectable tab in a rendered widget or page.
type TabView struct {
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// CounterView is the rendered body of a counter widget.
type CounterView struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	ExtraName  string  `json:"extra_name"`
	ExtraValue float64 `json:"extra_value"`
}

// WidgetView is the render-ready snapshot of a widget.
type WidgetView struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle,omitempty"`
	Kind          ChartKind    `json:"kind"`
	Status        LoadStatus   `json:"status"`
	Span          int          `json:"span"`
	RevealDelayMS int          `json:"reveal_delay_ms"`
	ShowTabs      bool         `json:"show_tabs"`
	Tabs          []TabView    `json:"tabs,omitempty"`
	SelectedIndex int          `json:"selected_index"`
	Selected      string       `json:"selected,omitempty"`
	ChartHTML     string       `json:"chart_html,omitempty"`
	Counter       *CounterView `json:"counter,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// Loading reports whether the widget shows its loading placeholder.
func (v WidgetView) Loading() bool {
	return v.Status == StatusLoading
}

// PageView is the render-ready snapshot of a whole page view.
type PageView struct {
	ID        string         `json:"id"`
	Tabs      []TabView      `json:"tabs"`
	ActiveTab int            `json:"active_tab"`
	Widgets   []WidgetView   `json:"widgets"`
	Carousel  []CarouselItem `json:"carousel,omitempty"`
	Team      []TeamMember   `json:"team,omitempty"`
	Pending   int            `json:"pending"`
	Scripts   []string       `json:"scripts,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
