package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/service"
)

type marketHandler struct {
	marketService *service.MarketService
	bankService   *service.BankService
}

func NewMarketHandler(marketService *service.MarketService, bankService *service.BankService) *marketHandler {
	return &marketHandler{
		marketService: marketService,
		bankService:   bankService,
	}
}

// audience validates the audience gate; unknown values fall back to LP,
// the most restricted tier.
func audience(r *http.Request) string {
	switch a := r.URL.Query().Get("audience"); a {
	case "GP", "Internal":
		return a
	default:
		return "LP"
	}
}

func (h *marketHandler) Rates(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.marketService.Rates(r.Context())
	if err != nil {
		slog.Error("rates fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch rates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ffr":      snapshot.FFR,
		"ffr_date": snapshot.FFRDate,
		"t5":       snapshot.T5,
		"t10":      snapshot.T10,
		"t30":      snapshot.T30,
		"asOf":     snapshot.AsOf,
		"sources":  snapshot.Sources,
		"audience": audience(r),
	})
}

func (h *marketHandler) Maturities(w http.ResponseWriter, r *http.Request) {
	rows := h.marketService.Maturities(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"rows":     rows,
		"asOf":     time.Now().UTC().Format(time.RFC3339),
		"source":   "mock",
		"audience": audience(r),
	})
}

func (h *marketHandler) Footnotes(w http.ResponseWriter, r *http.Request) {
	fns, err := h.marketService.Footnotes(r.Context())
	if err != nil {
		slog.Error("footnote list failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list footnotes")
		return
	}
	if fns == nil {
		fns = []*model.Footnote{}
	}

	respondJSON(w, http.StatusOK, fns)
}

func (h *marketHandler) Banks(w http.ResponseWriter, r *http.Request) {
	rows := h.bankService.List(r.Context(), r.URL.Query().Get("region"), r.URL.Query().Get("btype"))
	if rows == nil {
		rows = []model.Bank{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *marketHandler) BankByID(w http.ResponseWriter, r *http.Request) {
	bank, err := h.bankService.ByID(r.PathValue("id"))
	if errors.Is(err, service.ErrBankNotFound) {
		respondError(w, http.StatusNotFound, "bank not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":       bank.ID,
		"name":     bank.Name,
		"exposure": bank.Exposure,
		"creShare": bank.CREShare,
		"asOf":     time.Now().UTC().Format(time.RFC3339),
		"source":   "mock",
	})
}
