package airquality

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/ali-sehran/air-quality-dashboard/internal/config"
	"github.com/ali-sehran/air-quality-dashboard/internal/metrics"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/controller"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/openaq"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/service"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/views"
)

// NewFeatureService builds the ingestion service for the Cologne location.
// publisher may be nil, in which case results are not published.
func NewFeatureService(cfg config.Config, m *metrics.Metrics, publisher service.Publisher, logger *slog.Logger) *service.Service {
	client := openaq.NewClient(openaq.Config{
		BaseURL: cfg.OpenAQBaseURL,
		APIKey:  cfg.OpenAQAPIKey,
		Timeout: cfg.OpenAQTimeout,
	}, openaq.WithObserver(m))

	opts := []service.Option{
		service.WithConcurrency(cfg.OpenAQConcurrency),
		service.WithDeadline(cfg.OpenAQFetchTimeout),
		service.WithMetrics(m),
		service.WithLogger(logger.With("module", "airquality")),
	}
	if publisher != nil {
		opts = append(opts, service.WithPublisher(publisher))
	}
	return service.NewService(client, openaq.CologneLocationID, opts...)
}

func RegisterFeature(r chi.Router, cfg config.Config, m *metrics.Metrics, publisher service.Publisher, logger *slog.Logger) {
	svc := NewFeatureService(cfg, m, publisher, logger)
	airQualityController := controller.NewAirQualityController(svc, views.CologneName)
	airQualityController.RegisterRoutes(r)
}
