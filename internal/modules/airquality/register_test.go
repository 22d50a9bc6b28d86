package airquality

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ali-sehran/air-quality-dashboard/internal/config"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches []types.Batch
}

func (p *recordingPublisher) Publish(_ context.Context, b types.Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, b)
	return nil
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v3/locations/2162203/sensors", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[{"id":7},{"id":8}]}`)
	})
	mux.HandleFunc("GET /v3/sensors/7/measurements/daily", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[
			{"period":{"datetimeFrom":{"utc":"2024-05-01T00:00:00Z"}},"parameter":{"name":"pm25","units":"µg/m³"},"value":4.2},
			{"period":{"datetimeFrom":{"utc":"2024-05-02T00:00:00Z"}},"parameter":{"name":"pm25","units":"µg/m³"},"value":5.1}
		]}`)
	})
	mux.HandleFunc("GET /v3/sensors/8/measurements/daily", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL, key string) config.Config {
	return config.Config{
		OpenAQAPIKey:      key,
		OpenAQBaseURL:     baseURL,
		OpenAQTimeout:     2 * time.Second,
		OpenAQConcurrency: 2,
	}
}

func TestRegisterFeature_AirQuality(t *testing.T) {
	upstream := newUpstream(t)
	pub := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	RegisterFeature(r, testConfig(upstream.URL+"/v3", "key"), nil, pub, logger)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/airquality", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d; want 3: %s", len(got), rec.Body.String())
	}
	if got[0]["sensor_id"] != float64(7) || got[0]["date"] != "2024-05-01T00:00:00Z" {
		t.Errorf("entry 0 = %v", got[0])
	}
	if got[1]["value"] != 5.1 {
		t.Errorf("entry 1 = %v", got[1])
	}
	want := "Failed to retrieve measurements for sensor 8. Status: 429, rate limited\n"
	if got[2]["error"] != want {
		t.Errorf("entry 2 error = %q; want %q", got[2]["error"], want)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("published batches = %d; want 1", len(pub.batches))
	}
	if n := len(pub.batches[0].Measurements); n != 2 {
		t.Errorf("published measurements = %d; want 2", n)
	}
}

func TestRegisterFeature_MissingAPIKey(t *testing.T) {
	upstream := newUpstream(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	RegisterFeature(r, testConfig(upstream.URL+"/v3", ""), nil, nil, logger)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/airquality", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Unable to fetch data" {
		t.Errorf("error = %q; want %q", body["error"], "Unable to fetch data")
	}
}
