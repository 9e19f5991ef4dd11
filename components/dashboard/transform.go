package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// SurveyPayload is the decoded `surveyData` object of a survey response.
type SurveyPayload map[string]json.RawMessage

// BuildMetricSeries converts a survey payload into the widget's series.
// Categories missing from the payload (or null) receive the widget's fill default.
func BuildMetricSeries(payload SurveyPayload, def WidgetDefinition) (MetricSeries, error) {
	series := make(MetricSeries, len(def.Categories))
	for _, category := range def.Categories {
		raw, ok := payload[category.Key]
		if !ok || isNull(raw) {
			series[category.Key] = fillPoints(def, category)
			continue
		}
		values, err := decodeValues(raw)
		if err != nil {
			return nil, &ParseError{Field: category.Key, Err: err}
		}
		series[category.Key] = labelPoints(def, category, values)
	}
	return series, nil
}

// FillArity returns the number of zero points a FillZeros widget substitutes.
func FillArity(def WidgetDefinition) int {
	if def.Chart.layout() == LayoutAggregate {
		return 1
	}
	return len(def.Chart.Labels)
}

func fillPoints(def WidgetDefinition, category Category) []Point {
	if def.Fill != FillZeros {
		return []Point{}
	}
	values := make([]float64, FillArity(def))
	return labelPoints(def, category, values)
}

func labelPoints(def WidgetDefinition, category Category, values []float64) []Point {
	points := make([]Point, len(values))
	aggregate := def.Chart.layout() == LayoutAggregate
	for i, value := range values {
		point := Point{Value: value}
		switch {
		case aggregate:
			point.Label = category.Label
		case i < len(def.Chart.Labels):
			point.Label = def.Chart.Labels[i]
		default:
			point.Label = fmt.Sprintf("Item %d", i+1)
		}
		if i < len(def.Chart.PointColors) && !aggregate {
			point.Color = def.Chart.PointColors[i]
		}
		points[i] = point
	}
	return points
}

var errNotNumeric = errors.New("value is not numeric")

func decodeValues(raw json.RawMessage) ([]float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		values := make([]float64, 0, len(items))
		for idx, item := range items {
			if isNull(item) {
				values = append(values, 0)
				continue
			}
			value, err := decodeNumber(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}
			values = append(values, value)
		}
		return values, nil
	}
	value, err := decodeNumber(trimmed)
	if err != nil {
		return nil, err
	}
	return []float64{value}, nil
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var number json.Number
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case json.Number:
		number = val
	case string:
		number = json.Number(val)
	default:
		return 0, errNotNumeric
	}
	f, err := strconv.ParseFloat(number.String(), 64)
	if err != nil {
		return 0, errNotNumeric
	}
	return f, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
