package http

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// RegisterHealth mounts GET /healthz. A nil pinger always reports ok.
func RegisterHealth(mux *http.ServeMux, pinger Pinger, logger interfaces.Logger) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				if logger != nil {
					logger.WithContext(r.Context()).Error("http.health.failed", "error", err)
				}
				writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "Database unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
}
