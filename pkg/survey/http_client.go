package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-wbt-dashboard/components/dashboard"
)

const (
	// DefaultWidgetsPath serves the project widgets payload used by counter widgets.
	DefaultWidgetsPath = "/dashboards/project/widgets"
	defaultTimeout     = 10 * time.Second
	maxErrorBody       = 512
)

// HTTPConfig configures the HTTP survey client.
type HTTPConfig struct {
	BaseURL     string
	WidgetsPath string
	HTTPClient  *http.Client
}

// HTTPClient talks to the survey API via REST endpoints.
type HTTPClient struct {
	baseURL     string
	widgetsPath string
	client      *http.Client
}

// NewHTTPClient builds a client for the live survey API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("survey: base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("survey: invalid base url %q: %w", cfg.BaseURL, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	widgetsPath := cfg.WidgetsPath
	if widgetsPath == "" {
		widgetsPath = DefaultWidgetsPath
	}
	if !strings.HasPrefix(widgetsPath, "/") {
		widgetsPath = "/" + widgetsPath
	}
	return &HTTPClient{
		baseURL:     base,
		widgetsPath: widgetsPath,
		client:      httpClient,
	}, nil
}

// BaseURL returns the normalized API base URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type surveyEnvelope struct {
	SurveyData dashboard.SurveyPayload `json:"surveyData"`
}

// FetchSurvey implements dashboard.SurveySource via `GET /survey/<endpoint>`.
// A response without surveyData yields an empty payload, so every category takes its fill default.
func (c *HTTPClient) FetchSurvey(ctx context.Context, endpoint string) (dashboard.SurveyPayload, error) {
	endpoint = strings.Trim(endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("survey: endpoint is required")
	}
	var envelope surveyEnvelope
	if err := c.get(ctx, "/survey/"+url.PathEscape(endpoint), &envelope); err != nil {
		return nil, err
	}
	if envelope.SurveyData == nil {
		return dashboard.SurveyPayload{}, nil
	}
	return envelope.SurveyData, nil
}

// FetchCounters implements dashboard.CounterSource using the project widgets payload.
// Entries that are not counter shaped are skipped.
func (c *HTTPClient) FetchCounters(ctx context.Context) (map[string]dashboard.CounterReport, error) {
	var raw map[string]json.RawMessage
	if err := c.get(ctx, c.widgetsPath, &raw); err != nil {
		return nil, err
	}
	return DecodeCounters(raw), nil
}

func (c *HTTPClient) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("survey: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: survey: http request: %w", dashboard.ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = io.CopyN(&buf, resp.Body, maxErrorBody)
		return fmt.Errorf("%w: survey: remote error %d: %s", dashboard.ErrRemoteStatus, resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: survey: read response: %w", dashboard.ErrTransport, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &dashboard.ParseError{Err: fmt.Errorf("survey: decode response: %w", err)}
	}
	return nil
}
