// Package openaq is a minimal client for the OpenAQ v3 REST API: it lists the
// sensors of a location and reads their recent daily measurements.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

const (
	DefaultBaseURL = "https://api.openaq.org/v3"

	// CologneLocationID is the monitoring site this service reports on.
	CologneLocationID int64 = 2162203

	MeasurementsLimit = 10
	WindowDays        = 5

	apiKeyHeader = "X-API-Key"
	maxErrorBody = 64 << 10
)

// Observer receives the outcome of every upstream request. status is the HTTP
// status code, or 0 when the request failed before a response arrived.
type Observer interface {
	ObserveUpstream(endpoint string, status int, d time.Duration)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	observer Observer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window is the time range measurements are requested for.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowEnding returns the trailing window of WindowDays ending at now.
func WindowEnding(now time.Time) Window {
	now = now.UTC()
	return Window{From: now.AddDate(0, 0, -WindowDays), To: now}
}

type sensorsResponse struct {
	Results []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

type measurementsResponse struct {
	Results []struct {
		Period struct {
			DatetimeFrom struct {
				UTC string `json:"utc"`
			} `json:"datetimeFrom"`
		} `json:"period"`
		Parameter struct {
			Name  string `json:"name"`
			Units string `json:"units"`
		} `json:"parameter"`
		Value float64 `json:"value"`
	} `json:"results"`
}

// SensorIDs lists the sensors installed at a location in upstream order.
func (c *Client) SensorIDs(ctx context.Context, locationID int64) ([]int64, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := "/locations/" + strconv.FormatInt(locationID, 10) + "/sensors"
	var body sensorsResponse
	status, text, err := c.get(ctx, "sensors", endpoint, nil, &body)
	if err != nil {
		return nil, &FetchError{Op: OpSensors, Err: err}
	}
	if status != http.StatusOK {
		return nil, &StatusError{Op: OpSensors, StatusCode: status, Body: text}
	}

	ids := make([]int64, 0, len(body.Results))
	for _, s := range body.Results {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// DailyMeasurements reads up to MeasurementsLimit daily aggregates for a sensor
// inside w, tagged with sensorID.
func (c *Client) DailyMeasurements(ctx context.Context, sensorID int64, w Window) ([]types.Measurement, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := "/sensors/" + strconv.FormatInt(sensorID, 10) + "/measurements/daily"
	query := url.Values{}
	query.Set("limit", strconv.Itoa(MeasurementsLimit))
	query.Set("datetime_from", w.From.UTC().Format(time.RFC3339))
	query.Set("datetime_to", w.To.UTC().Format(time.RFC3339))

	var body measurementsResponse
	status, text, err := c.get(ctx, "measurements_daily", endpoint, query, &body)
	if err != nil {
		return nil, &FetchError{Op: OpMeasurements, SensorID: sensorID, Err: err}
	}
	if status != http.StatusOK {
		return nil, &StatusError{Op: OpMeasurements, SensorID: sensorID, StatusCode: status, Body: text}
	}

	out := make([]types.Measurement, 0, len(body.Results))
	for _, m := range body.Results {
		out = append(out, types.Measurement{
			SensorID:  sensorID,
			Date:      m.Period.DatetimeFrom.UTC,
			Parameter: m.Parameter.Name,
			Value:     m.Value,
			Unit:      m.Parameter.Units,
		})
	}
	return out, nil
}

// get performs one GET. On 200 the body is decoded into dst; on any other
// status the raw body text is returned instead.
func (c *Client) get(ctx context.Context, name, path string, query url.Values, dst any) (int, string, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(name, 0, time.Since(start))
		return 0, "", err
	}
	defer resp.Body.Close()
	c.observe(name, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return 0, "", fmt.Errorf("read error body: %w", err)
		}
		return resp.StatusCode, string(b), nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return 0, "", fmt.Errorf("decode %s response: %w", name, err)
	}
	return resp.StatusCode, "", nil
}

func (c *Client) observe(name string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(name, status, d)
	}
}
