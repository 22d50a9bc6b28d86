package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ali-sehran/air-quality-dashboard/internal/metrics"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/openaq"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

// SensorSource is the upstream the service reads from; *openaq.Client satisfies it.
type SensorSource interface {
	SensorIDs(ctx context.Context, locationID int64) ([]int64, error)
	DailyMeasurements(ctx context.Context, sensorID int64, w openaq.Window) ([]types.Measurement, error)
}

// Publisher receives the measurements of every successful run. It is called
// before Fetch returns, so it must not wait on a broker; see AsyncPublisher.
type Publisher interface {
	Publish(ctx context.Context, batch types.Batch) error
}

type Service struct {
	source      SensorSource
	locationID  int64
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
	publisher   Publisher
	deadline    time.Duration
}

type Option func(*Service)

// WithConcurrency bounds how many sensors are fetched at once. 1 (the default)
// fetches them one after another.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithDeadline bounds a whole Fetch run. Zero means no bound beyond ctx.
func WithDeadline(d time.Duration) Option {
	return func(s *Service) { s.deadline = d }
}

func NewService(source SensorSource, locationID int64, opts ...Option) *Service {
	s := &Service{
		source:      source,
		locationID:  locationID,
		concurrency: 1,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch resolves the location's sensors and collects their recent daily
// measurements into one flat list. A failure to resolve sensors fails the whole
// run; a failure for a single sensor becomes an error entry at that sensor's
// position and the run continues.
func (s *Service) Fetch(ctx context.Context) (types.Result, error) {
	start := time.Now()
	window := openaq.WindowEnding(s.now())

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	ids, err := s.source.SensorIDs(ctx, s.locationID)
	if err != nil {
		s.metrics.ObserveIngestion("error", time.Since(start))
		return types.Result{}, err
	}
	s.logger.Debug("sensors resolved", "location_id", s.locationID, "count", len(ids))

	perSensor := make([][]types.Entry, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			perSensor[i] = s.fetchSensor(ctx, id, window)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		s.metrics.ObserveIngestion("error", time.Since(start))
		return types.Result{}, fmt.Errorf("fetch measurements: %w", err)
	}

	entries := make([]types.Entry, 0, len(ids)*openaq.MeasurementsLimit)
	for _, es := range perSensor {
		entries = append(entries, es...)
	}

	result := types.Result{
		LocationID: s.locationID,
		From:       window.From,
		To:         window.To,
		Entries:    entries,
	}
	s.metrics.ObserveIngestion("ok", time.Since(start))
	s.logger.Info("air quality fetched",
		"location_id", s.locationID,
		"sensors", len(ids),
		"entries", len(entries),
		"failures", result.Failures(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.publish(ctx, result)
	return result, nil
}

func (s *Service) fetchSensor(ctx context.Context, sensorID int64, w openaq.Window) []types.Entry {
	ms, err := s.source.DailyMeasurements(ctx, sensorID, w)
	if err != nil {
		s.metrics.SensorFailed()
		s.logger.Warn("sensor measurements failed", "sensor_id", sensorID, "error", err)
		return []types.Entry{types.ErrorEntry(sensorID, err)}
	}
	out := make([]types.Entry, 0, len(ms))
	for _, m := range ms {
		out = append(out, types.MeasurementEntry(m))
	}
	return out
}

func (s *Service) publish(ctx context.Context, result types.Result) {
	if s.publisher == nil {
		return
	}
	batch := types.Batch{
		LocationID:   result.LocationID,
		From:         result.From,
		To:           result.To,
		FetchedAt:    s.now().UTC(),
		Measurements: result.Measurements(),
	}
	if err := s.publisher.Publish(ctx, batch); err != nil {
		s.logger.Warn("publish measurements failed", "location_id", result.LocationID, "error", err)
	}
}
