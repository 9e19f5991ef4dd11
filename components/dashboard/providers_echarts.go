package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "320px"
	// DefaultEChartsAssetsHost is where the page loads the ECharts runtime and themes from.
	DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

var sharedChartCache = NewChartCache(5 * time.Minute)

// ThemeResolver selects a chart theme per widget definition.
type ThemeResolver func(def WidgetDefinition) string

// ChartRequest carries everything needed to draw one widget chart.
type ChartRequest struct {
	ChartID    string
	Definition WidgetDefinition
	Series     MetricSeries
	Categories CategorySet
	Selected   string
}

// ChartRenderer renders widget charts into embeddable go-echarts snippets.
type ChartRenderer struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache. Passing nil disables caching.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) ChartRendererOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartThemeResolver resolves themes dynamically per widget.
func WithChartThemeResolver(resolver ThemeResolver) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		if host != "" {
			r.assetsHost = ensureTrailingSlash(host)
		}
	}
}

// NewChartRenderer builds a renderer with the shared render cache.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{
		cache:      sharedChartCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// AssetsHost returns the host the page must load echarts.min.js from.
func (r *ChartRenderer) AssetsHost() string {
	return r.assetsHost
}

// Theme returns the theme used for a definition.
func (r *ChartRenderer) Theme(def WidgetDefinition) string {
	if r.themeResolver != nil {
		if theme := r.themeResolver(def); theme != "" {
			return theme
		}
	}
	if r.theme != "" {
		return r.theme
	}
	return types.ThemeWesteros
}

// Render draws the chart and returns its HTML element and script.
func (r *ChartRenderer) Render(req ChartRequest) (string, error) {
	renderFn := func() (string, error) {
		return r.render(req)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", req.ChartID, req.Definition.Chart.Kind, req.Selected, configHash(map[string]any{
		"series":     req.Series,
		"categories": req.Categories,
		"chart":      req.Definition.Chart,
	}))
	return r.cache.GetOrRender(key, renderFn)
}

func (r *ChartRenderer) render(req ChartRequest) (string, error) {
	spec := req.Definition.Chart
	switch spec.Kind {
	case ChartPie, ChartPolarArea:
		return r.renderPie(req)
	case ChartBar:
		return r.renderBar(req)
	case ChartLine:
		return r.renderLine(req)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart kind: %s", spec.Kind)
	}
}

func (r *ChartRenderer) renderPie(req ChartRequest) (string, error) {
	spec := req.Definition.Chart
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(req, "item")...)
	pie.AddSeries(seriesName(spec), toPieData(r.projectPoints(req)))
	series := []charts.SeriesOpts{}
	if spec.Kind == ChartPolarArea {
		series = append(series, charts.WithPieChartOpts(opts.PieChart{
			Radius:   []string{"15%", "70%"},
			RoseType: "area",
		}))
	}
	if label, ok := labelOptions(spec); ok {
		series = append(series, charts.WithLabelOpts(label))
	}
	if len(series) > 0 {
		pie.SetSeriesOptions(series...)
	}
	return renderSnippet(pie), nil
}

func (r *ChartRenderer) renderBar(req ChartRequest) (string, error) {
	spec := req.Definition.Chart
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.axisChartOptions(req)...)
	if spec.layout() == LayoutComparison {
		bar.SetXAxis(spec.Labels)
		for _, category := range req.Categories {
			points, _ := req.Series.Points(category.Key)
			bar.AddSeries(category.Label, toBarData(points))
		}
	} else {
		points := r.projectPoints(req)
		bar.SetXAxis(axisLabels(spec, points))
		bar.AddSeries(seriesName(spec), toBarData(points))
	}
	if label, ok := labelOptions(spec); ok {
		bar.SetSeriesOptions(charts.WithLabelOpts(label))
	}
	return renderSnippet(bar), nil
}

func (r *ChartRenderer) renderLine(req ChartRequest) (string, error) {
	spec := req.Definition.Chart
	line := charts.NewLine()
	line.SetGlobalOptions(r.axisChartOptions(req)...)
	if spec.layout() == LayoutComparison {
		line.SetXAxis(spec.Labels)
		for _, category := range req.Categories {
			points, _ := req.Series.Points(category.Key)
			line.AddSeries(category.Label, toLineData(points))
		}
	} else {
		points := r.projectPoints(req)
		line.SetXAxis(axisLabels(spec, points))
		line.AddSeries(seriesName(spec), toLineData(points))
	}
	series := []charts.SeriesOpts{}
	if spec.Smooth {
		series = append(series, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}
	if label, ok := labelOptions(spec); ok {
		series = append(series, charts.WithLabelOpts(label))
	}
	if len(series) > 0 {
		line.SetSeriesOptions(series...)
	}
	return renderSnippet(line), nil
}

// projectPoints picks the points a single-series chart displays.
func (r *ChartRenderer) projectPoints(req ChartRequest) []Point {
	if req.Definition.Chart.layout() == LayoutAggregate {
		points := make([]Point, 0, len(req.Categories))
		for _, category := range req.Categories {
			point := Point{Label: category.Label}
			if values, ok := req.Series.Points(category.Key); ok && len(values) > 0 {
				point.Value = values[0].Value
			}
			points = append(points, point)
		}
		return points
	}
	points, _ := req.Series.Points(req.Selected)
	return points
}

func (r *ChartRenderer) globalChartOptions(req ChartRequest, trigger string) []charts.GlobalOpts {
	spec := req.Definition.Chart
	height := spec.Height
	if height == "" {
		height = defaultChartHeight
	}
	initOpts := opts.Initialization{
		Theme:  r.Theme(req.Definition),
		Width:  "100%",
		Height: height,
	}
	if req.ChartID != "" {
		initOpts.ChartID = req.ChartID
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	legend := opts.Legend{Show: opts.Bool(spec.Legend != "none")}
	if spec.Legend == "bottom" {
		legend.Bottom = "0"
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(legend),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(spec.Tooltip != "none"), Trigger: trigger}),
	}
	if spec.Subtitle != "" {
		global = append(global, charts.WithTitleOpts(opts.Title{Subtitle: spec.Subtitle}))
	}
	if len(spec.Colors) > 0 {
		// go-echarts reverses the palette in place.
		colors := append(opts.Colors(nil), spec.Colors...)
		global = append(global, charts.WithColorsOpts(colors))
	}
	return global
}

func (r *ChartRenderer) axisChartOptions(req ChartRequest) []charts.GlobalOpts {
	global := r.globalChartOptions(req, "axis")
	if min := req.Definition.Chart.YAxisMin; min != nil {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Min: *min}))
	}
	return global
}

func labelOptions(spec ChartSpec) (opts.Label, bool) {
	if !spec.DataLabels {
		return opts.Label{}, false
	}
	label := opts.Label{Show: opts.Bool(true)}
	switch spec.LabelFormatter {
	case "percent":
		label.Formatter = "{d}%"
	case "value":
		label.Formatter = "{c}"
	}
	return label, true
}

func seriesName(spec ChartSpec) string {
	if spec.SeriesName != "" {
		return spec.SeriesName
	}
	return spec.Title
}

func axisLabels(spec ChartSpec, points []Point) []string {
	if len(spec.Labels) > 0 {
		return append([]string(nil), spec.Labels...)
	}
	labels := make([]string, len(points))
	for i, point := range points {
		if point.Label != "" {
			labels[i] = point.Label
		} else {
			labels[i] = fmt.Sprintf("Item %d", i+1)
		}
	}
	return labels
}

func toBarData(points []Point) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
		if point.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.Color}
		}
	}
	return data
}

func toLineData(points []Point) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toPieData(points []Point) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.Value}
		if point.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: point.Color}
		}
	}
	return data
}

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

func renderSnippet(chart snippetRenderer) string {
	snippet := chart.RenderSnippet()
	return snippet.Element + "\n" + snippet.Script
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
