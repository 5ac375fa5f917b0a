package app

import (
	"context"
	"fmt"

	"github.com/coastaloak/livedeck/internal/agent"
	"github.com/coastaloak/livedeck/internal/config"
	"github.com/coastaloak/livedeck/internal/db"
	"github.com/coastaloak/livedeck/internal/repository"
	"github.com/coastaloak/livedeck/internal/service"
	"github.com/coastaloak/livedeck/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	TokenService     *service.TokenService
	AuditService     *service.AuditService
	MarketService    *service.MarketService
	BankService      *service.BankService
	DeckService      *service.DeckService
	WaterfallService *service.WaterfallService
	EmailService     *service.EmailService
	AgentRegistry    *agent.Registry
	Orchestrator     *agent.Orchestrator
	Archive          storage.Archive
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	credentialRepository := repository.NewCredentialRepository(database)
	auditRepository := repository.NewAuditRepository(database)
	footnoteRepository := repository.NewFootnoteRepository(database)

	// Export archive (optional)
	archive, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize export archive: %v", err)
	}

	// Services
	auditService := service.NewAuditService(auditRepository)
	tokenService := service.NewTokenService(credentialRepository, auditService, cfg.TokenExpiry)
	marketService := service.NewMarketService(footnoteRepository, cfg.FredAPIKey, cfg.FeedCacheTTL, cfg.FeedHTTPTimeout)
	bankService := service.NewBankService(footnoteRepository)
	deckService := service.NewDeckService(marketService, cfg.AppName, cfg.ContentPath)
	waterfallService := service.NewWaterfallService()
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	err = marketService.SeedFootnotes(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to seed footnotes: %v", err)
	}

	// Agent registry: constructed once here, read-only afterwards, handed
	// to handlers by reference.
	registry := agent.NewRegistry(
		agent.NewDataStewardAgent(marketService),
		agent.NewQuantAgent(waterfallService),
		agent.NewDebtAgent(),
		agent.NewLegalRiskAgent(),
	)
	orchestrator := agent.NewOrchestrator(registry, marketService)

	return &App{
		Cfg:              cfg,
		DB:               database,
		TokenService:     tokenService,
		AuditService:     auditService,
		MarketService:    marketService,
		BankService:      bankService,
		DeckService:      deckService,
		WaterfallService: waterfallService,
		EmailService:     emailService,
		AgentRegistry:    registry,
		Orchestrator:     orchestrator,
		Archive:          archive,
	}, nil
}

func (a *App) Close() error {
	if a.AuditService != nil {
		a.AuditService.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
