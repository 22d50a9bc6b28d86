package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/views"
	"github.com/ali-sehran/air-quality-dashboard/internal/utils"
)

const fetchFailedMessage = "Unable to fetch data"

func (c *airQualityControllerImpl) handleAirQuality(w http.ResponseWriter, r *http.Request) {
	result, err := c.fetcher.Fetch(r.Context())
	if err != nil {
		slog.Error("air quality: fetch failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fetchFailedMessage)
		return
	}

	entries := result.Entries
	if entries == nil {
		entries = []types.Entry{}
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (c *airQualityControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := c.fetcher.Fetch(r.Context())
	if err != nil {
		slog.Error("dashboard: fetch failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, fetchFailedMessage)
		return
	}

	data := views.BuildDashboard(c.locationName, result.Entries)
	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("dashboard: write response failed", "error", err)
	}
}
