package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"sunset/internal/auth"
	"sunset/internal/bundle"
	"sunset/internal/compose"
	"sunset/internal/config"
	"sunset/internal/domain/repositories"
	siteRepo "sunset/internal/domain/repositories/site"
	"sunset/internal/handler"
	"sunset/internal/middleware"
	"sunset/internal/ratelimit"
	"sunset/internal/render"
	"sunset/internal/repository/memory"
	"sunset/internal/repository/postgres"
	postgresSite "sunset/internal/repository/postgres/site"
	serviceSite "sunset/internal/service/site"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create the JWT verifier. Without a JWKS endpoint the dev environments
	// fall back to a static verifier; production never does.
	var jwtVerifier auth.JWTVerifier
	var err error
	if cfg.JWKSURL != "" {
		jwtVerifier, err = auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
	} else {
		if cfg.Environment == "prod" {
			log.Fatalf("JWKS_URL is required in production")
		}
		jwtVerifier = auth.NewStaticVerifier("dev-user", logger)
	}
	defer jwtVerifier.Close()

	// Load the stack configuration (styling CDN, entry conventions,
	// external runtime packages)
	stack, err := config.LoadStackConfig(cfg.StackConfigPath)
	if err != nil {
		log.Fatalf("Failed to load stack config: %v", err)
	}

	// Create repositories. A configured DATABASE_URL selects Postgres; dev
	// environments without one run on the in-memory store.
	ctx := context.Background()
	var (
		projectRepo  siteRepo.ProjectRepository
		revisionRepo siteRepo.RevisionRepository
		fileRepo     siteRepo.FileRepository
		versionRepo  siteRepo.FileVersionRepository
		txManager    repositories.TransactionManager
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", 25,
			"min_conns", 5,
		)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		projectRepo = postgresSite.NewProjectRepository(repoConfig)
		revisionRepo = postgresSite.NewRevisionRepository(repoConfig)
		fileRepo = postgresSite.NewFileRepository(repoConfig)
		versionRepo = postgresSite.NewFileVersionRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool)
	} else {
		if cfg.Environment == "prod" {
			log.Fatalf("DATABASE_URL is required in production")
		}
		logger.Warn("no DATABASE_URL configured, using in-memory store")

		store := memory.NewStore()
		projectRepo = store.Projects()
		revisionRepo = store.Revisions()
		fileRepo = store.Files()
		versionRepo = store.FileVersions()
		txManager = store
	}

	// Generation rate limiter (per-user fixed window)
	limiter := ratelimit.New(config.RateLimitMaxCalls, config.RateLimitWindow)
	defer limiter.Stop()

	// Composition engines
	builder := bundle.NewBuilder(stack, cfg.NodeModulesDir, logger)
	sandbox := render.NewSandbox(cfg.DebugRetainBundles, logger)
	bundler := compose.NewBundleComposer(versionRepo, builder, sandbox, stack, logger)
	includes := compose.NewHTMLComposer(versionRepo, stack, logger)

	// Services
	allocator := serviceSite.NewRevisionAllocator(revisionRepo, logger)
	generationService := serviceSite.NewGenerationService(allocator, projectRepo, fileRepo, versionRepo, txManager, logger)
	composeService := serviceSite.NewComposeService(bundler, includes, revisionRepo, logger)

	// Handlers
	generateHandler := handler.NewGenerateHandler(generationService, limiter, logger)
	previewHandler := handler.NewPreviewHandler(composeService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Generation routes
	mux.HandleFunc("POST /api/projects/{id}/generate", generateHandler.Generate)
	mux.HandleFunc("GET /api/projects/{id}/context", generateHandler.ContextFiles)

	// Composition routes
	mux.HandleFunc("GET /api/projects/{id}/preview", previewHandler.Preview)
	mux.HandleFunc("GET /api/projects/{id}/bundle.js", previewHandler.BundleJS)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.AuthMiddleware(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
