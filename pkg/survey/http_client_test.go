package survey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

func TestHTTPClientFetchSurvey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/survey/getdata4" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query parameters, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"surveyData":{"male":[1,2,3,4],"female":[5,6,7,8]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/api/"})
	require.NoError(t, err)
	payload, err := client.FetchSurvey(context.Background(), "getdata4")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3,4]`, string(payload["male"]))
	assert.JSONEq(t, `[5,6,7,8]`, string(payload["female"]))
}

func TestHTTPClientFetchSurveyWithoutSurveyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	payload, err := client.FetchSurvey(context.Background(), "getdata")
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestHTTPClientErrorClasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/survey/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/survey/garbage":
			_, _ = w.Write([]byte(`<html>`))
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.FetchSurvey(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboard.ErrRemoteStatus))
	assert.Contains(t, err.Error(), "500")

	_, err = client.FetchSurvey(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboard.ErrParse))
	assert.Equal(t, "parse", dashboard.ErrorClass(err))
}

func TestHTTPClientHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.FetchSurvey(ctx, "getdata")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboard.ErrTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPClientFetchCounters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultWidgetsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"summary": {
				"ranges": {"DY": "Yesterday", "DT": "Today", "DTM": "Tomorrow"},
				"currentRange": "DT",
				"data": {"name": "Due Tasks", "count": {"DY": 21, "DT": 25, "DTM": 19}, "extra": {"name": "Completed", "count": {"DY": 6, "DT": 7, "DTM": "-"}}}
			},
			"githubIssues": {"overview": {}, "series": []},
			"issues": {
				"ranges": {"DY": "Yesterday", "DT": "Today"},
				"currentRange": "DY",
				"data": {"name": "Open", "count": {"DY": 3, "DT": 4}, "extra": {"name": "Closed today", "count": {"DY": 1, "DT": 2}}}
			}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	reports, err := client.FetchCounters(context.Background())
	require.NoError(t, err)

	// summary carries a mistyped extra count and is skipped, like non-counter entries.
	require.Len(t, reports, 1)
	issues := reports["issues"]
	assert.Equal(t, "Open", issues.Name)
	assert.Equal(t, []string{"DY", "DT"}, issues.Ranges.Keys())
	assert.Equal(t, "DY", issues.CurrentRange)
	assert.Equal(t, float64(4), issues.Counts["DT"])
}

func TestOrderedRangesPreservesDocumentOrder(t *testing.T) {
	var ranges orderedRanges
	require.NoError(t, json.Unmarshal([]byte(`{"z":"Last","a":"First","m":"Middle"}`), &ranges))
	assert.Equal(t, []string{"z", "a", "m"}, dashboard.CategorySet(ranges).Keys())
	assert.Equal(t, []string{"Last", "First", "Middle"}, dashboard.CategorySet(ranges).Labels())

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &ranges))
}

func TestNewHTTPClientValidatesBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	assert.Error(t, err)
	_, err = NewHTTPClient(HTTPConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}
