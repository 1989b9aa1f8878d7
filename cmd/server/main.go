package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blogwriter/internal/auth"
	"blogwriter/internal/config"
	"blogwriter/internal/handler"
	"blogwriter/internal/middleware"
	"blogwriter/internal/repository/gitrepo"
	serviceArticle "blogwriter/internal/service/article"
	"blogwriter/internal/service/article/markup"
	"blogwriter/internal/service/article/media"
	"blogwriter/internal/service/article/schema"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// shellClientID is the subject of the token handed to the desktop shell.
const shellClientID = "desktop-shell"

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging to stdout and a rotated log file
	var out io.Writer = os.Stdout
	logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
	if err != nil {
		log.Printf("file logging disabled: %v", err)
	} else {
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg, out)
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"strict_markup", cfg.StrictMarkup,
		"minify_svg", cfg.MinifySVG,
	)

	// Local API authentication
	secret := cfg.APISecret
	if secret == "" {
		if secret, err = auth.GenerateSecret(); err != nil {
			log.Fatalf("Failed to generate API secret: %v", err)
		}
		logger.Info("generated ephemeral API secret")
	}
	tokens, err := auth.NewTokenManager([]byte(secret), config.TokenLifetime, logger)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}
	token, err := tokens.IssueToken(shellClientID)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	if err := auth.WriteTokenFile(cfg.TokenFile, token); err != nil {
		log.Fatalf("Failed to write token file: %v", err)
	}
	logger.Info("token written", "path", cfg.TokenFile)

	// Core components
	validator, err := schema.New()
	if err != nil {
		log.Fatalf("Failed to compile article schema: %v", err)
	}
	engine := markup.New()

	var pipelineOpts []media.Option
	if cfg.MinifySVG {
		pipelineOpts = append(pipelineOpts, media.WithMinify())
	}
	pipeline := media.NewPipeline(media.Limits{
		MaxBytes: config.DefaultMaxEmbeddedSVGBytes,
		MaxNodes: config.DefaultMaxSVGNodeCount,
	}, logger, pipelineOpts...)

	// Create repositories
	workspaceRepo := gitrepo.NewWorkspaceRepository(cfg.PreferencesPath, logger)
	articleRepo := gitrepo.NewArticleRepository(logger)

	// Create services
	workspaceService := serviceArticle.NewWorkspaceService(workspaceRepo, logger)
	articleService := serviceArticle.NewArticleService(workspaceRepo, articleRepo, validator, engine, serviceArticle.Options{
		StrictMarkup: cfg.StrictMarkup,
		MinifySVG:    cfg.MinifySVG,
	}, logger)

	// Create handlers
	markupHandler := handler.NewMarkupHandler(engine, validator, logger)
	svgHandler := handler.NewSVGHandler(pipeline, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	articleHandler := handler.NewArticleHandler(articleService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Stateless core routes
	mux.HandleFunc("POST /api/markup/deserialize", markupHandler.Deserialize)
	mux.HandleFunc("POST /api/markup/serialize", markupHandler.Serialize)
	mux.HandleFunc("POST /api/validate", markupHandler.Validate)
	mux.HandleFunc("POST /api/svg/sanitize", svgHandler.Sanitize)
	mux.HandleFunc("POST /api/svg/encode", svgHandler.Encode)
	mux.HandleFunc("POST /api/svg/embed", svgHandler.Embed)

	// Workspace routes
	mux.HandleFunc("POST /api/workspaces", workspaceHandler.CreateWorkspace)
	mux.HandleFunc("POST /api/workspaces/open", workspaceHandler.OpenWorkspace)
	mux.HandleFunc("GET /api/workspaces/recent", workspaceHandler.ListRecent)
	mux.HandleFunc("GET /api/workspaces/files", workspaceHandler.ListFiles)

	// Article session routes
	mux.HandleFunc("POST /api/articles", articleHandler.CreateArticle)
	mux.HandleFunc("POST /api/articles/open", articleHandler.OpenArticle) // Must come before {id} routes
	mux.HandleFunc("GET /api/articles/{id}", articleHandler.GetArticle)
	mux.HandleFunc("DELETE /api/articles/{id}", articleHandler.CloseArticle)
	mux.HandleFunc("GET /api/articles/{id}/markup", articleHandler.GetMarkup)
	mux.HandleFunc("PUT /api/articles/{id}/markup", articleHandler.PutMarkup)
	mux.HandleFunc("PATCH /api/articles/{id}/metadata", articleHandler.UpdateMetadata)
	mux.HandleFunc("POST /api/articles/{id}/images", articleHandler.EmbedImage)
	mux.HandleFunc("POST /api/articles/{id}/save", articleHandler.SaveArticle)
	mux.HandleFunc("GET /api/articles/{id}/export", articleHandler.ExportArticle)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(tokens)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})
	h = corsHandler.Handler(h)

	// Create HTTP server, bound to loopback only
	server := &http.Server{
		Addr:         "127.0.0.1:" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // git commits on slow disks
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if err := os.Remove(cfg.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to remove token file", "error", err)
	}
}
