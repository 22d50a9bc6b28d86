package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"github.com/ali-sehran/air-quality-dashboard/internal/config"
)

// writeMargin leaves room to encode and send the response after a run that
// used its whole deadline.
const writeMargin = 15 * time.Second

// NewServer wraps h with permissive CORS: browsers on any origin may call the API.
func NewServer(cfg config.Config, h http.Handler) *http.Server {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
	)
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           cors(h),
		ReadHeaderTimeout: 5 * time.Second,
		// Ingestion is bounded by OpenAQFetchTimeout, so a run that hits its
		// deadline still gets its JSON 500 out before the write deadline.
		WriteTimeout: cfg.OpenAQFetchTimeout + writeMargin,
		IdleTimeout:  60 * time.Second,
	}
}
