package dashboard

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSeries(t *testing.T, def WidgetDefinition, raw map[string]string) MetricSeries {
	t.Helper()
	payload := SurveyPayload{}
	for key, value := range raw {
		payload[key] = []byte(value)
	}
	series, err := BuildMetricSeries(payload, def)
	require.NoError(t, err)
	return series
}

func TestChartRendererRendersEveryKind(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(nil))
	cases := []struct {
		code     string
		raw      map[string]string
		selected string
		contains []string
	}{
		{"smoking", map[string]string{"male": `[3,9]`}, "male", []string{"pie", "Yes", "westeros"}},
		{"sleep_quality", map[string]string{"female": `[1,2,3,4]`}, "female", []string{"roseType", "area", "Very Good"}},
		{"karolinska_scale", map[string]string{"male": `[1,2,3,4,5,6,7,8,9,10]`}, "male", []string{"line", "Extremely alert", "Sleepiness Scale"}},
		{"osa_risk", map[string]string{"male": `[4,5,6]`}, "male", []string{"bar", "#E53935", "High risk of OSA"}},
		{"disease_comparison", map[string]string{"male": `[1,2,3,4]`}, "male", []string{"Male", "Female", "Transgender", "Thyroid"}},
		{"cancer", map[string]string{"male": `5`, "female": `2`}, "male", []string{"Male", "Others"}},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			def := defaultDefinition(t, tc.code)
			html, err := renderer.Render(ChartRequest{
				ChartID:    "chart-" + tc.code,
				Definition: def,
				Series:     demoSeries(t, def, tc.raw),
				Categories: def.Categories,
				Selected:   tc.selected,
			})
			require.NoError(t, err)
			assert.Contains(t, html, "chart-"+tc.code)
			for _, fragment := range tc.contains {
				assert.Contains(t, html, fragment)
			}
		})
	}
}

func TestChartRendererEmptySeries(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(nil))
	for _, code := range []string{"smoking", "osa_risk", "karolinska_scale"} {
		def := defaultDefinition(t, code)
		html, err := renderer.Render(ChartRequest{
			ChartID:    "empty-" + code,
			Definition: def,
			Series:     demoSeries(t, def, nil),
			Categories: def.Categories,
			Selected:   "trans",
		})
		require.NoError(t, err, code)
		assert.Contains(t, html, "empty-"+code)
	}
}

func TestChartRendererRejectsCounterKind(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(nil))
	_, err := renderer.Render(ChartRequest{Definition: defaultDefinition(t, "summary")})
	assert.Error(t, err)
}

func TestChartRendererThemeAndAssets(t *testing.T) {
	renderer := NewChartRenderer(
		WithChartCache(nil),
		WithChartTheme("macarons"),
		WithChartAssetsHost("https://cdn.example.com/echarts"),
		WithChartThemeResolver(func(def WidgetDefinition) string {
			if def.Code == "alcohol" {
				return "shine"
			}
			return ""
		}),
	)
	assert.Equal(t, "https://cdn.example.com/echarts/", renderer.AssetsHost())
	assert.Equal(t, "macarons", renderer.Theme(defaultDefinition(t, "smoking")))
	assert.Equal(t, "shine", renderer.Theme(defaultDefinition(t, "alcohol")))

	def := defaultDefinition(t, "smoking")
	html, err := renderer.Render(ChartRequest{ChartID: "themed", Definition: def, Series: demoSeries(t, def, nil), Categories: def.Categories, Selected: "male"})
	require.NoError(t, err)
	assert.Contains(t, html, "macarons")
}

type countingCache struct {
	inner   *ChartCache
	renders int
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	return c.inner.GetOrRender(key, func() (string, error) {
		c.renders++
		return render()
	})
}

func TestChartRendererUsesCache(t *testing.T) {
	cache := &countingCache{inner: NewChartCache(time.Minute)}
	renderer := NewChartRenderer(WithChartCache(cache))
	def := defaultDefinition(t, "alcohol")
	req := ChartRequest{ChartID: "cached", Definition: def, Series: demoSeries(t, def, map[string]string{"male": `[1,2]`}), Categories: def.Categories, Selected: "male"}

	first, err := renderer.Render(req)
	require.NoError(t, err)
	second, err := renderer.Render(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.renders)

	req.Selected = "female"
	_, err = renderer.Render(req)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.renders, "a new selection renders again")
}

func TestChartRendererLeavesPaletteUntouched(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(NewChartCache(time.Minute)))
	alcohol := defaultDefinition(t, "alcohol")
	smoking := defaultDefinition(t, "smoking")
	want := append([]string(nil), alcohol.Chart.Colors...)
	require.NotEmpty(t, want)

	var reqs []ChartRequest
	for _, def := range []WidgetDefinition{alcohol, smoking} {
		series := demoSeries(t, def, map[string]string{"male": `[1,2]`})
		reqs = append(reqs, ChartRequest{ChartID: "chart-" + def.Code, Definition: def, Series: series, Categories: def.Categories, Selected: "male"})
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, req := range reqs {
			wg.Add(1)
			go func(req ChartRequest) {
				defer wg.Done()
				_, err := renderer.Render(req)
				assert.NoError(t, err)
			}(req)
		}
	}
	wg.Wait()

	assert.Equal(t, want, alcohol.Chart.Colors)
	assert.Equal(t, want, smoking.Chart.Colors)
	assert.Equal(t, want, defaultDefinition(t, "alcohol").Chart.Colors)
}

func TestDefaultDefinitionsDoNotShareSlices(t *testing.T) {
	first := defaultDefinition(t, "smoking")
	first.Chart.Colors[0] = "#000000"
	first.Chart.Labels[0] = "changed"
	second := defaultDefinition(t, "smoking")
	assert.NotEqual(t, "#000000", second.Chart.Colors[0])
	assert.NotEqual(t, "changed", second.Chart.Labels[0])
	assert.NotEqual(t, "#000000", defaultDefinition(t, "alcohol").Chart.Colors[0])
}

func TestChartCacheExpiresAndSkipsErrors(t *testing.T) {
	now := time.Unix(0, 0)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }

	calls := 0
	render := func() (string, error) {
		calls++
		return "<div></div>", nil
	}
	_, _ = cache.GetOrRender("k", render)
	_, _ = cache.GetOrRender("k", render)
	assert.Equal(t, 1, calls)

	_, err := cache.GetOrRender("bad", func() (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 1, cache.Len(), "errors are not cached")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, cache.Purge())
	assert.Equal(t, 0, cache.Len())
	_, _ = cache.GetOrRender("k", render)
	assert.Equal(t, 2, calls)

	disabled := NewChartCache(0)
	_, _ = disabled.GetOrRender("k", render)
	assert.Equal(t, 0, disabled.Len())
}

func TestEChartsScriptURLs(t *testing.T) {
	t.Setenv(envEChartsCDN, "")
	urls := EChartsScriptURLs("", "westeros")
	require.Len(t, urls, 2)
	assert.True(t, strings.HasPrefix(urls[0], DefaultEChartsAssetsHost))
	assert.Equal(t, DefaultEChartsAssetsHost+"themes/westeros.js", urls[1])

	assert.Len(t, EChartsScriptURLs("", "white"), 1)

	t.Setenv(envEChartsCDN, "https://assets.internal/echarts")
	assert.Equal(t, "https://assets.internal/echarts/", ResolveEChartsAssetsHost(""))
	assert.Equal(t, "https://cfg.example/", ResolveEChartsAssetsHost("https://cfg.example"))
}
