package handler

import (
	"net/http"
	"time"

	"github.com/coastaloak/livedeck/internal/middleware"
	"github.com/coastaloak/livedeck/internal/service"
	"github.com/jmoiron/sqlx"
)

type healthHandler struct {
	db            *sqlx.DB
	marketService *service.MarketService
}

func NewHealthHandler(db *sqlx.DB, marketService *service.MarketService) *healthHandler {
	return &healthHandler{
		db:            db,
		marketService: marketService,
	}
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": middleware.AppVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Deps probes each dependency live, bypassing caches. Degraded feeds do not
// make the service unhealthy; the deck falls back to pinned figures.
func (h *healthHandler) Deps(w http.ResponseWriter, r *http.Request) {
	deps := h.marketService.ProbeLive(r.Context())
	deps["db"] = h.db.PingContext(r.Context()) == nil

	respondJSON(w, http.StatusOK, map[string]any{
		"ok":   deps["db"],
		"deps": deps,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
