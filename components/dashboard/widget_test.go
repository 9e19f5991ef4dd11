package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitSettled(t *testing.T, w *Widget) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Wait(ctx))
}

func staticLoader(def WidgetDefinition, raw map[string]string) Loader {
	return LoaderFunc(func(context.Context) (LoadResult, error) {
		payload := SurveyPayload{}
		for key, value := range raw {
			payload[key] = json.RawMessage(value)
		}
		series, err := BuildMetricSeries(payload, def)
		return LoadResult{Series: series}, err
	})
}

func TestWidgetMountLoadsOnce(t *testing.T) {
	def := defaultDefinition(t, "smoking")
	var loads, settles atomic.Int32
	inner := staticLoader(def, map[string]string{"male": `[4,6]`})
	w := NewWidget(WidgetOptions{
		Definition: def,
		Renderer:   NewChartRenderer(WithChartCache(nil)),
		Loader: LoaderFunc(func(ctx context.Context) (LoadResult, error) {
			loads.Add(1)
			return inner.Load(ctx)
		}),
		OnSettle: func(_ *Widget, state LoadState) {
			settles.Add(1)
			assert.Equal(t, StatusReady, state.Status())
		},
	})
	assert.Equal(t, "smoking", w.ID())
	assert.Equal(t, StatusLoading, w.View().Status)

	w.Mount(context.Background())
	w.Mount(context.Background())
	waitSettled(t, w)

	assert.Equal(t, int32(1), loads.Load())
	assert.Eventually(t, func() bool { return settles.Load() == 1 }, time.Second, 5*time.Millisecond)
	view := w.View()
	assert.Equal(t, StatusReady, view.Status)
	assert.True(t, view.ShowTabs)
	assert.Len(t, view.Tabs, 4)
	assert.True(t, view.Tabs[0].Active)
	assert.Contains(t, view.ChartHTML, "chart-smoking")
}

func TestWidgetFailureShowsMessage(t *testing.T) {
	def := defaultDefinition(t, "alcohol")
	w := NewWidget(WidgetOptions{
		Definition: def,
		Loader: LoaderFunc(func(context.Context) (LoadResult, error) {
			return LoadResult{}, ErrRemoteStatus
		}),
	})
	w.Mount(context.Background())
	waitSettled(t, w)

	state := w.State()
	assert.Equal(t, StatusFailed, state.Status())
	assert.ErrorIs(t, state.Err(), ErrRemoteStatus)
	view := w.View()
	assert.Equal(t, StatusFailed, view.Status)
	assert.NotEmpty(t, view.Error)
	assert.Empty(t, view.ChartHTML)
}

func TestWidgetWithoutLoaderFails(t *testing.T) {
	w := NewWidget(WidgetOptions{Definition: defaultDefinition(t, "alcohol")})
	w.Mount(context.Background())
	waitSettled(t, w)
	assert.ErrorIs(t, w.State().Err(), ErrMissingLoader)
}

func TestWidgetUnmountCancelsFetch(t *testing.T) {
	def := defaultDefinition(t, "caffeine")
	started := make(chan struct{})
	cancelled := make(chan error, 1)
	var settles atomic.Int32
	w := NewWidget(WidgetOptions{
		Definition: def,
		Loader: LoaderFunc(func(ctx context.Context) (LoadResult, error) {
			close(started)
			<-ctx.Done()
			cancelled <- ctx.Err()
			return LoadResult{}, ctx.Err()
		}),
		OnSettle: func(*Widget, LoadState) { settles.Add(1) },
	})
	w.Mount(context.Background())
	<-started
	w.Unmount()

	select {
	case err := <-cancelled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled")
	}
	waitSettled(t, w)
	assert.False(t, w.Mounted())
	assert.Equal(t, StatusLoading, w.State().Status(), "a cancelled fetch never settles the widget")
	assert.Equal(t, int32(0), settles.Load())
}

func TestWidgetDiscardsLateResult(t *testing.T) {
	def := defaultDefinition(t, "diabetes")
	release := make(chan struct{})
	finished := make(chan struct{})
	w := NewWidget(WidgetOptions{
		Definition: def,
		Loader: LoaderFunc(func(context.Context) (LoadResult, error) {
			defer close(finished)
			<-release
			return staticLoader(def, map[string]string{"male": `[1,2]`}).Load(context.Background())
		}),
	})
	w.Mount(context.Background())
	w.Unmount()
	close(release)
	<-finished
	// settle runs right after Load returns; poll briefly for it.
	assert.Never(t, func() bool { return w.State().Status() != StatusLoading }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestWidgetTimeout(t *testing.T) {
	def := defaultDefinition(t, "screen_time")
	w := NewWidget(WidgetOptions{
		Definition: def,
		Timeout:    20 * time.Millisecond,
		Loader: LoaderFunc(func(ctx context.Context) (LoadResult, error) {
			<-ctx.Done()
			return LoadResult{}, ctx.Err()
		}),
	})
	w.Mount(context.Background())
	waitSettled(t, w)
	assert.Equal(t, StatusFailed, w.State().Status())
	assert.True(t, errors.Is(w.State().Err(), context.DeadlineExceeded))
}

func TestWidgetSelectClampsAndRerenders(t *testing.T) {
	def := defaultDefinition(t, "osa_risk")
	w := NewWidget(WidgetOptions{
		Definition: def,
		Renderer:   NewChartRenderer(WithChartCache(nil)),
		Loader:     staticLoader(def, map[string]string{"female": `[7,8,9]`}),
	})
	w.Mount(context.Background())
	waitSettled(t, w)

	assert.False(t, w.Select(0))
	assert.True(t, w.Select(1))
	view := w.View()
	assert.Equal(t, "female", view.Selected)
	assert.True(t, view.Tabs[1].Active)

	assert.True(t, w.Select(50))
	assert.Equal(t, 3, w.View().SelectedIndex)
}

func TestCounterWidgetUsesPayloadRanges(t *testing.T) {
	def := defaultDefinition(t, "issues")
	report := CounterReport{
		Name:         "Open",
		Counts:       map[string]float64{"DY": 3, "DT": 4},
		ExtraName:    "Closed today",
		ExtraCounts:  map[string]float64{"DY": 1, "DT": 2},
		Ranges:       CategorySet{{Key: "DY", Label: "Yesterday"}, {Key: "DT", Label: "Today"}},
		CurrentRange: "DT",
	}
	w := NewWidget(WidgetOptions{
		Definition: def,
		Loader: LoaderFunc(func(context.Context) (LoadResult, error) {
			return BuildCounterResult(report, def), nil
		}),
	})
	w.Mount(context.Background())
	waitSettled(t, w)

	view := w.View()
	assert.Equal(t, ChartCounter, view.Kind)
	require.Len(t, view.Tabs, 2)
	assert.Equal(t, "DT", view.Selected)
	require.NotNil(t, view.Counter)
	assert.Equal(t, CounterView{Name: "Open", Value: 4, ExtraName: "Closed today", ExtraValue: 2}, *view.Counter)

	assert.True(t, w.Select(0))
	assert.Equal(t, float64(3), w.View().Counter.Value)
}

func TestReadyWidgetWithoutCategoriesStaysLoading(t *testing.T) {
	def := defaultDefinition(t, "smoking")
	def.Categories = nil
	w := NewWidget(WidgetOptions{
		Definition: def,
		Loader:     staticLoader(def, nil),
	})
	w.Mount(context.Background())
	waitSettled(t, w)
	assert.Equal(t, StatusReady, w.State().Status())
	assert.Equal(t, StatusLoading, w.View().Status)
}

func TestWidgetIDIsKebabCase(t *testing.T) {
	assert.Equal(t, "disease-comparison", WidgetID("disease_comparison"))
}
