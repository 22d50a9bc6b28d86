package controller

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

// Fetcher runs one ingestion; *service.Service satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) (types.Result, error)
}

type AirQualityController interface {
	RegisterRoutes(r chi.Router)
}

type airQualityControllerImpl struct {
	fetcher      Fetcher
	locationName string
}

func NewAirQualityController(fetcher Fetcher, locationName string) AirQualityController {
	return &airQualityControllerImpl{fetcher: fetcher, locationName: locationName}
}

func (c *airQualityControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleDashboard)
	r.Get("/api/airquality", c.handleAirQuality)
}
