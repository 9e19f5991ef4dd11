package dashboard

// RangeSelector picks one category out of a CategorySet.
type RangeSelector struct {
	categories CategorySet
	tabs       *TabContainer
}

// NewRangeSelector builds a selector positioned on the first category.
func NewRangeSelector(categories CategorySet) *RangeSelector {
	return &RangeSelector{
		categories: append(CategorySet(nil), categories...),
		tabs:       NewTabContainer(categories.Labels()...),
	}
}

// Select moves to index (clamped). It reports whether the selection changed.
func (r *RangeSelector) Select(index int) bool {
	return r.tabs.OnSelect(index)
}

// SelectKey moves to the category with key; unknown keys are ignored.
func (r *RangeSelector) SelectKey(key string) bool {
	idx := r.categories.Index(key)
	if idx < 0 {
		return false
	}
	return r.tabs.OnSelect(idx)
}

// Index returns the selected position.
func (r *RangeSelector) Index() int {
	return r.tabs.Index()
}

// Current returns the selected category, false when the set is empty.
func (r *RangeSelector) Current() (Category, bool) {
	if len(r.categories) == 0 {
		return Category{}, false
	}
	return r.categories[r.tabs.Index()], true
}

// Categories returns a copy of the selector domain.
func (r *RangeSelector) Categories() CategorySet {
	return append(CategorySet(nil), r.categories...)
}
