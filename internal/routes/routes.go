package routes

import (
	"net/http"

	"github.com/coastaloak/livedeck/internal/app"
	"github.com/coastaloak/livedeck/internal/handler"
	"github.com/coastaloak/livedeck/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	deck := handler.NewDeckHandler(app.TokenService, app.DeckService, app.EmailService, app.AuditService, app.Archive)
	audit := handler.NewAuditHandler(app.AuditService)
	market := handler.NewMarketHandler(app.MarketService, app.BankService)
	waterfall := handler.NewWaterfallHandler(app.WaterfallService)
	agents := handler.NewAgentsHandler(app.AgentRegistry, app.Orchestrator)
	health := handler.NewHealthHandler(app.DB, app.MarketService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /healthz/deps", health.Deps)

	// Market data
	mux.HandleFunc("GET /rates", market.Rates)
	mux.HandleFunc("GET /maturities", market.Maturities)
	mux.HandleFunc("GET /footnotes", market.Footnotes)
	mux.HandleFunc("GET /banks", market.Banks)
	mux.HandleFunc("GET /banks/{id}", market.BankByID)

	// Waterfall
	mux.HandleFunc("POST /waterfall/calc", waterfall.Calculate)

	// Single-use deck access (issuance rate limited per IP)
	rateLimiter := middleware.RateLimitIssuance()
	mux.HandleFunc("POST /deck/request", rateLimiter(deck.RequestToken))
	mux.HandleFunc("GET /deck/download", deck.Download)

	// Public preview
	mux.HandleFunc("GET /execsum/html", deck.ExecSummaryHTML)
	mux.HandleFunc("GET /execsum.pdf", deck.ExecSummaryPDF)

	// Audit trail (operator endpoint; open in development)
	requireAdmin := middleware.RequireAdmin(app.Cfg.AdminJWTSecret)
	mux.HandleFunc("GET /audit", requireAdmin(audit.Recent))

	// Agents
	mux.HandleFunc("GET /agents", agents.List)
	mux.HandleFunc("POST /agents/execute", agents.Execute)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Version,
		middleware.RequestLogging,
	)
}
