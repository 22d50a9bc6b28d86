package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ali-sehran/air-quality-dashboard/internal/utils"
)

// handleHealthz reports liveness only; it never calls the upstream API.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(r chi.Router) {
	r.Get("/healthz", handleHealthz)
}
