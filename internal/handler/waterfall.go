package handler

import (
	"encoding/json"
	"net/http"

	"github.com/coastaloak/livedeck/internal/service"
)

type waterfallHandler struct {
	waterfallService *service.WaterfallService
}

func NewWaterfallHandler(waterfallService *service.WaterfallService) *waterfallHandler {
	return &waterfallHandler{waterfallService: waterfallService}
}

type waterfallRequest struct {
	Terms     service.WaterfallTerms `json:"terms"`
	Cashflows []float64              `json:"cashflows"`
}

func (h *waterfallHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req waterfallRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.waterfallService.Calculate(req.Terms, req.Cashflows)
	respondJSON(w, http.StatusOK, result)
}
