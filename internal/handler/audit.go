package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/service"
)

type auditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *auditHandler {
	return &auditHandler{auditService: auditService}
}

// Recent returns the newest audit records. Every issuance and consumption
// attempt leaves a row here; operators and tests read this to confirm it.
func (h *auditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	recs, err := h.auditService.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("audit read failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	if recs == nil {
		recs = []*model.AuditRecord{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"rows": recs})
}
