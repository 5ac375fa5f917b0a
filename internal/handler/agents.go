package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coastaloak/livedeck/internal/agent"
)

type agentsHandler struct {
	registry     *agent.Registry
	orchestrator *agent.Orchestrator
}

func NewAgentsHandler(registry *agent.Registry, orchestrator *agent.Orchestrator) *agentsHandler {
	return &agentsHandler{
		registry:     registry,
		orchestrator: orchestrator,
	}
}

func (h *agentsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"agents": h.registry.List()})
}

func (h *agentsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.orchestrator.Execute(r.Context(), req)
	if err != nil {
		slog.Error("agent dispatch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "agent dispatch failed")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
