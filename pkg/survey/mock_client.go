package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

// MockData seeds deterministic survey responses for tests or local demos.
type MockData struct {
	Surveys  map[string]dashboard.SurveyPayload
	Counters map[string]dashboard.CounterReport
	// Errors fails the named endpoints; the key "counters" fails FetchCounters.
	Errors map[string]error
	// Latency delays every call; cancelled contexts return early.
	Latency time.Duration
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data  MockData
	mu    sync.RWMutex
	calls map[string]int
}

// NewMockClient builds a mock survey client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data, calls: map[string]int{}}
}

// FetchSurvey returns the configured payload for endpoint.
func (c *MockClient) FetchSurvey(ctx context.Context, endpoint string) (dashboard.SurveyPayload, error) {
	if err := c.wait(ctx, endpoint); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.data.Errors[endpoint]; err != nil {
		return nil, err
	}
	payload, ok := c.data.Surveys[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: survey: remote error 404: unknown endpoint %s", dashboard.ErrRemoteStatus, endpoint)
	}
	out := make(dashboard.SurveyPayload, len(payload))
	for key, raw := range payload {
		out[key] = append(json.RawMessage(nil), raw...)
	}
	return out, nil
}

// FetchCounters returns the configured counter reports.
func (c *MockClient) FetchCounters(ctx context.Context) (map[string]dashboard.CounterReport, error) {
	if err := c.wait(ctx, "counters"); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.data.Errors["counters"]; err != nil {
		return nil, err
	}
	out := make(map[string]dashboard.CounterReport, len(c.data.Counters))
	for key, report := range c.data.Counters {
		out[key] = report
	}
	return out, nil
}

// Calls reports how often an endpoint was requested.
func (c *MockClient) Calls(endpoint string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[endpoint]
}

// SetSurvey replaces the payload of one endpoint.
func (c *MockClient) SetSurvey(endpoint string, payload dashboard.SurveyPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Surveys == nil {
		c.data.Surveys = map[string]dashboard.SurveyPayload{}
	}
	c.data.Surveys[endpoint] = payload
}

func (c *MockClient) wait(ctx context.Context, endpoint string) error {
	c.mu.Lock()
	c.calls[endpoint]++
	latency := c.data.Latency
	c.mu.Unlock()
	if latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: survey: http request: %w", dashboard.ErrTransport, err)
		}
		return nil
	}
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: survey: http request: %w", dashboard.ErrTransport, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// DemoData builds fixtures covering every definition, so a dashboard renders without a live API.
func DemoData(defs []dashboard.WidgetDefinition) MockData {
	data := MockData{
		Surveys:  map[string]dashboard.SurveyPayload{},
		Counters: map[string]dashboard.CounterReport{},
	}
	for _, def := range defs {
		switch def.Source {
		case dashboard.SourceCounter:
			data.Counters[def.Endpoint] = demoCounter(def)
		default:
			data.Surveys[def.Endpoint] = demoSurvey(def)
		}
	}
	return data
}

func demoSurvey(def dashboard.WidgetDefinition) dashboard.SurveyPayload {
	payload := dashboard.SurveyPayload{}
	arity := dashboard.FillArity(def)
	aggregate := def.Chart.Layout == dashboard.LayoutAggregate
	for ci, category := range def.Categories {
		if aggregate {
			payload[category.Key] = json.RawMessage(strconv.Itoa((ci + 1) * 3))
			continue
		}
		values := make([]int, arity)
		for i := range values {
			values[i] = (i+1)*(ci+2) + len(def.Endpoint)
		}
		raw, _ := json.Marshal(values)
		payload[category.Key] = raw
	}
	return payload
}

var demoCounterNames = map[string][2]string{
	"summary":  {"Due Tasks", "Completed"},
	"overdue":  {"Tasks", "From yesterday"},
	"issues":   {"Open", "Closed today"},
	"features": {"Proposals", "Implemented"},
}

func demoCounter(def dashboard.WidgetDefinition) dashboard.CounterReport {
	ranges := def.Categories
	if len(ranges) == 0 {
		ranges = dashboard.CounterRanges
	}
	names, ok := demoCounterNames[def.Endpoint]
	if !ok {
		names = [2]string{def.Name, "Completed"}
	}
	report := dashboard.CounterReport{
		Name:        names[0],
		Counts:      map[string]float64{},
		ExtraName:   names[1],
		ExtraCounts: map[string]float64{},
		Ranges:      ranges,
	}
	for i, r := range ranges {
		report.Counts[r.Key] = float64(10*(i+1) + len(def.Code))
		report.ExtraCounts[r.Key] = float64(3 * (i + 1))
	}
	if len(ranges) > 1 {
		report.CurrentRange = ranges[1].Key
	} else if len(ranges) == 1 {
		report.CurrentRange = ranges[0].Key
	}
	return report
}
