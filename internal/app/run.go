package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ali-sehran/air-quality-dashboard/internal/config"
	"github.com/ali-sehran/air-quality-dashboard/internal/httpapi"
	"github.com/ali-sehran/air-quality-dashboard/internal/metrics"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/service"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/views"
	"github.com/ali-sehran/air-quality-dashboard/internal/mqtt"
)

const (
	publishQueueSize = 8
	publishTimeout   = 5 * time.Second
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"openaqBaseURL", cfg.OpenAQBaseURL,
		"openaqTimeout", cfg.OpenAQTimeout,
		"openaqConcurrency", cfg.OpenAQConcurrency,
		"openaqFetchTimeout", cfg.OpenAQFetchTimeout,
		"openaqAPIKeySet", cfg.OpenAQAPIKey != "",
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)
	if cfg.OpenAQAPIKey == "" {
		slog.Warn("OPENAQ_API_KEY is not set; every air quality request will fail")
	}

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var publisher service.Publisher
	var mqttPublisher *mqtt.Publisher
	var asyncPublisher *service.AsyncPublisher
	if cfg.MQTTEnabled() {
		mqttPublisher = mqtt.NewPublisher(cfg, slog.Default())

		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := mqttPublisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing, publisher keeps retrying)", "error", err)
		}
		asyncPublisher = service.NewAsyncPublisher(mqttPublisher, slog.Default(), publishQueueSize, publishTimeout)
		publisher = asyncPublisher
	}

	router := httpapi.NewRouter(registry, m)
	airquality.RegisterFeature(router, cfg, m, publisher, slog.Default())

	srv := httpapi.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if asyncPublisher != nil {
		if err := asyncPublisher.Close(shutdownCtx); err != nil {
			slog.Warn("mqtt publish queue not drained", "error", err)
		}
	}
	if mqttPublisher != nil {
		slog.Info("mqtt disconnecting")
		mqttPublisher.Disconnect()
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
