package dashboard

// LoadStatus is the three-valued lifecycle of a widget fetch.
type LoadStatus string

const (
	StatusLoading LoadStatus = "loading"
	StatusReady   LoadStatus = "ready"
	StatusFailed  LoadStatus = "failed"
)

// LoadResult is what a Loader hands back on success.
type LoadResult struct {
	Series MetricSeries
	// Categories overrides the definition's category set when the payload carries its own ranges.
	Categories CategorySet
	// Selected is the category key to preselect, if the payload names one.
	Selected string
}

// LoadState is a widget's fetch state. The zero value is Loading.
type LoadState struct {
	status     LoadStatus
	series     MetricSeries
	categories CategorySet
	selected   string
	err        error
}

// Status returns the current lifecycle status.
func (s LoadState) Status() LoadStatus {
	if s.status == "" {
		return StatusLoading
	}
	return s.status
}

// Series returns a copy of the ready series (nil unless Ready).
func (s LoadState) Series() MetricSeries {
	return s.series.clone()
}

// Err returns the failure cause (nil unless Failed).
func (s LoadState) Err() error {
	return s.err
}

func (s LoadState) settled() bool {
	return s.Status() != StatusLoading
}

// ready returns the Ready transition, or false when the state already settled.
func (s LoadState) ready(result LoadResult) (LoadState, bool) {
	if s.settled() {
		return s, false
	}
	return LoadState{
		status:     StatusReady,
		series:     result.Series.clone(),
		categories: append(CategorySet(nil), result.Categories...),
		selected:   result.Selected,
	}, true
}

// failed returns the Failed transition, or false when the state already settled.
func (s LoadState) failed(err error) (LoadState, bool) {
	if s.settled() {
		return s, false
	}
	return LoadState{status: StatusFailed, err: err}, true
}
