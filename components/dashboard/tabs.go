package dashboard

// TabContainer holds the active index over a fixed list of tab labels.
type TabContainer struct {
	labels []string
	index  int
}

// NewTabContainer builds a container with the first tab active.
func NewTabContainer(labels ...string) *TabContainer {
	return &TabContainer{labels: append([]string(nil), labels...)}
}

// Index returns the active tab index.
func (t *TabContainer) Index() int {
	return t.index
}

// Len returns the number of tabs.
func (t *TabContainer) Len() int {
	return len(t.labels)
}

// Labels returns a copy of the tab labels.
func (t *TabContainer) Labels() []string {
	return append([]string(nil), t.labels...)
}

// OnSelect activates a tab. Out-of-range indices are clamped; selecting the
// active tab reports false and changes nothing.
func (t *TabContainer) OnSelect(index int) bool {
	index = clampIndex(index, len(t.labels))
	if index == t.index {
		return false
	}
	t.index = index
	return true
}

func clampIndex(index, n int) int {
	if n <= 0 || index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}
