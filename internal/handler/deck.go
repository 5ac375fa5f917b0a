package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/service"
	"github.com/coastaloak/livedeck/internal/storage"
	"github.com/coastaloak/livedeck/internal/validation"
)

type deckHandler struct {
	tokenService *service.TokenService
	deckService  *service.DeckService
	emailService *service.EmailService
	auditService *service.AuditService
	archive      storage.Archive
}

func NewDeckHandler(tokenService *service.TokenService, deckService *service.DeckService, emailService *service.EmailService, auditService *service.AuditService, archive storage.Archive) *deckHandler {
	return &deckHandler{
		tokenService: tokenService,
		deckService:  deckService,
		emailService: emailService,
		auditService: auditService,
		archive:      archive,
	}
}

type requestTokenRequest struct {
	Subject string `json:"subject"`
	Email   string `json:"email"` // legacy field name, same meaning
}

type requestTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Watermark string `json:"watermark"`
}

// RequestToken issues a single-use download credential. The full token
// appears in this response exactly once; delivery beyond that is the
// caller's problem (optionally email, out of band).
func (h *deckHandler) RequestToken(w http.ResponseWriter, r *http.Request) {
	var req requestTokenRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = strings.TrimSpace(req.Email)
	}
	err = validation.ValidateSubject(subject)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cred, err := h.tokenService.Issue(r.Context(), subject)
	if err != nil {
		slog.Error("token issuance failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	// Out-of-band delivery is best-effort; issuance already succeeded.
	if strings.Contains(subject, "@") && h.emailService.Enabled() {
		err = h.emailService.SendDownloadLink(subject, cred.Token)
		if err != nil {
			slog.Warn("download link email failed", "error", err)
		}
	}

	respondJSON(w, http.StatusOK, requestTokenResponse{
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt.UTC().Format(time.RFC3339),
		Watermark: fmt.Sprintf("%s | %s", subject, time.Now().UTC().Format(time.RFC3339)),
	})
}

// Download redeems a token and serves the watermarked export. Exactly one
// request per token ever reaches the success path; the error mapping keeps
// "already used" textually distinct from "invalid token".
func (h *deckHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "token query parameter is required")
		return
	}

	cred, err := h.tokenService.Consume(r.Context(), token)
	if err != nil {
		h.denyDownload(w, err)
		return
	}

	export, err := h.deckService.Export(r.Context(), cred.Subject)
	if err != nil {
		slog.Error("deck export failed", "error", err, "subject", cred.Subject)
		respondError(w, http.StatusInternalServerError, "failed to render deck")
		return
	}

	h.auditService.Record(model.AuditDeckExported, service.AuditPrefix(token), cred.Subject,
		fmt.Sprintf("asOf %s", export.AsOf))

	if h.archive != nil {
		go h.archiveExport(export)
	}

	// No PDF engine is linked; serve the HTML rendition and say so.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-PDF-Mode", "fallback")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.HTML))
}

func (h *deckHandler) denyDownload(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownToken):
		respondError(w, http.StatusNotFound, "invalid token")
	case errors.Is(err, service.ErrTokenUsed):
		respondError(w, http.StatusForbidden, "token already used")
	case errors.Is(err, service.ErrTokenExpired):
		respondError(w, http.StatusForbidden, "token expired")
	default:
		slog.Error("token consumption failed", "error", err)
		respondError(w, http.StatusInternalServerError, "temporarily unable to verify token")
	}
}

func (h *deckHandler) archiveExport(export *model.DeckExport) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("exports/%d_%s", time.Now().UnixNano(), export.Filename)
	err := h.archive.Save(ctx, key, strings.NewReader(export.HTML), "text/html; charset=utf-8")
	if err != nil {
		slog.Warn("export archive failed", "key", key, "error", err)
	}
}

// ExecSummaryHTML renders the public preview (no credential required).
func (h *deckHandler) ExecSummaryHTML(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = "viewer@example.com"
	}

	export, err := h.deckService.ExecSummary(r.Context(), email)
	if err != nil {
		slog.Error("exec summary render failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render summary")
		return
	}

	h.auditService.Record(model.AuditExecSummaryRendered, "", email, fmt.Sprintf("asOf %s", export.AsOf))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(export.HTML))
}

// ExecSummaryPDF would stream a PDF; without an engine it serves the HTML
// rendition with the fallback marker header.
func (h *deckHandler) ExecSummaryPDF(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = "viewer@example.com"
	}

	export, err := h.deckService.ExecSummary(r.Context(), email)
	if err != nil {
		slog.Error("exec summary render failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to render summary")
		return
	}

	h.auditService.Record(model.AuditExecSummaryRendered, "", email, fmt.Sprintf("asOf %s", export.AsOf))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-PDF-Mode", "fallback")
	_, _ = w.Write([]byte(export.HTML))
}
