package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/config"
	"github.com/algonote-ai/sheet-engine/pkg/database"
	"github.com/algonote-ai/sheet-engine/pkg/handlers"
	"github.com/algonote-ai/sheet-engine/pkg/leetcode"
	"github.com/algonote-ai/sheet-engine/pkg/llm"
	"github.com/algonote-ai/sheet-engine/pkg/logging"
	"github.com/algonote-ai/sheet-engine/pkg/middleware"
	"github.com/algonote-ai/sheet-engine/pkg/repositories"
	"github.com/algonote-ai/sheet-engine/pkg/services"
	"github.com/algonote-ai/sheet-engine/pkg/workspace"
	"github.com/algonote-ai/sheet-engine/pkg/youtube"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	// Run migrations through database/sql, then open the pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// External service clients
	chatClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	youtubeClient := youtube.NewClient(youtube.Config{
		BaseURL:  cfg.YouTube.BaseURL,
		APIKey:   cfg.YouTube.APIKey,
		PageSize: cfg.YouTube.PageSize,
	}, logger)

	leetcodeClient := leetcode.NewClient(leetcode.Config{
		GraphQLURL: cfg.Catalog.GraphQLURL,
		Timeout:    time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
	}, logger)

	workspaceClient := workspace.NewClient(workspace.Config{
		FileServiceURL:    cfg.Workspace.FileServiceURL,
		ProblemServiceURL: cfg.Workspace.ProblemServiceURL,
		Timeout:           time.Duration(cfg.Workspace.TimeoutSeconds) * time.Second,
	}, logger)

	// Repositories
	sheetRepo := repositories.NewSheetRepository(db)
	problemRepo := repositories.NewSheetProblemRepository(db)

	// Services
	identifier := services.NewProblemIdentifier(
		chatClient,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		logger)
	importService := services.NewImportService(
		youtubeClient,
		identifier,
		leetcodeClient,
		sheetRepo,
		problemRepo,
		services.ImportPolicy{
			MinConfidence:          cfg.Import.MinConfidence,
			MinimalEntryConfidence: cfg.Import.MinimalEntryConfidence,
			MaxConcurrent:          cfg.Import.MaxConcurrent,
		},
		logger)
	sheetService := services.NewSheetService(sheetRepo, problemRepo, logger)
	materializeService := services.NewMaterializeService(sheetRepo, problemRepo, workspaceClient, logger)

	// Handlers
	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	sheetHandler := handlers.NewSheetHandler(importService, sheetService, materializeService, logger)
	sheetHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting sheet-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newLogger builds the root logger: human-readable in local development,
// JSON in deployed environments.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
