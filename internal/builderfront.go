package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitesmith/builder-front/internal/auth"
	"github.com/sitesmith/builder-front/internal/config"
	"github.com/sitesmith/builder-front/internal/cookie"
	"github.com/sitesmith/builder-front/internal/crypto"
	"github.com/sitesmith/builder-front/internal/dashboard"
	jsonwriter "github.com/sitesmith/builder-front/internal/json"
	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/oidc"
	"github.com/sitesmith/builder-front/internal/postgrest"
	"github.com/sitesmith/builder-front/internal/server"
	"github.com/sitesmith/builder-front/internal/session"
	"github.com/sitesmith/builder-front/internal/user"
)

// BuilderFront represents the complete auth front application
type BuilderFront struct {
	config     config.Config
	httpServer *server.HTTPServer
}

// NewBuilderFront creates the application with all dependencies built
func NewBuilderFront(ctx context.Context, cfg config.Config) (*BuilderFront, error) {
	log.LogInfoWithFields("builderfront", "Building auth front application", map[string]any{
		"issuer": cfg.OIDCIssuer,
		"env":    cfg.Env,
	})

	encryptor, err := crypto.NewAESEncryptor([]byte(cfg.AuthSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create session encryptor: %w", err)
	}

	sessions := session.NewStore(encryptor, cfg.IsProduction())
	returnTo := cookie.NewReturnToCookie([]byte(cfg.AuthSecret), cfg.IsProduction())

	oidcClient := oidc.New(oidc.Config{
		IssuerURL:    cfg.OIDCIssuer,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: string(cfg.OIDCClientSecret),
		RedirectURI:  cfg.OIDCRedirectURI,
		Scopes:       cfg.Scopes(),
	})

	users, projects := setupPersistence(cfg)

	handlers, err := auth.NewHandlers(cfg, oidcClient, sessions, returnTo, users)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth handlers: %w", err)
	}

	mux := buildHTTPHandler(handlers, projects)

	return &BuilderFront{
		config:     cfg,
		httpServer: server.NewHTTPServer(mux, cfg.Addr),
	}, nil
}

// Run starts the application and blocks until shutdown
func (b *BuilderFront) Run() error {
	log.LogInfoWithFields("builderfront", "Starting auth front application", map[string]any{
		"addr": b.config.Addr,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := b.httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var shutdownReason string
	select {
	case sig := <-sigChan:
		shutdownReason = fmt.Sprintf("signal %v", sig)
		log.LogInfoWithFields("builderfront", "Received shutdown signal", map[string]any{
			"signal": sig.String(),
		})
	case err := <-errChan:
		shutdownReason = fmt.Sprintf("error: %v", err)
		log.LogErrorWithFields("builderfront", "Shutting down due to error", map[string]any{
			"error": err.Error(),
		})
	}

	log.LogInfoWithFields("builderfront", "Starting graceful shutdown", map[string]any{
		"reason":  shutdownReason,
		"timeout": "30s",
	})
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := b.httpServer.Stop(shutdownCtx); err != nil {
		log.LogErrorWithFields("builderfront", "HTTP server shutdown error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.LogInfoWithFields("builderfront", "Application shutdown complete", map[string]any{
		"reason": shutdownReason,
	})
	return nil
}

// setupPersistence selects the user repository and project source. With a
// PostgREST endpoint configured both are backed by it; otherwise users live
// in memory, which only makes sense together with the dev login.
func setupPersistence(cfg config.Config) (user.Repository, *dashboard.Projects) {
	if cfg.PostgRESTURL != "" {
		log.LogInfoWithFields("storage", "Using PostgREST persistence", map[string]any{
			"url": cfg.PostgRESTURL,
		})
		client := postgrest.New(cfg.PostgRESTURL, string(cfg.PostgRESTAPIKey))
		return user.NewPostgRESTRepository(client), dashboard.NewProjects(client)
	}

	log.LogInfoWithFields("storage", "Using in-memory persistence", map[string]any{})
	return user.NewMemoryRepository(), nil
}

// buildHTTPHandler creates the complete HTTP handler with all routing and
// middleware
func buildHTTPHandler(handlers *auth.Handlers, projects *dashboard.Projects) http.Handler {
	mux := http.NewServeMux()

	authLogger := server.NewLoggerMiddleware("auth")
	apiLogger := server.NewLoggerMiddleware("api")
	recoverMW := server.NewRecoverMiddleware("http")

	authMiddleware := []server.MiddlewareFunc{authLogger, recoverMW}
	apiMiddleware := []server.MiddlewareFunc{apiLogger, recoverMW}

	mux.Handle("/healthz", server.NewHealthHandler())

	mux.Handle("GET /auth/{provider}", server.ChainMiddleware(http.HandlerFunc(handlers.LoginHandler), authMiddleware...))
	mux.Handle("POST /auth/dev", server.ChainMiddleware(http.HandlerFunc(handlers.DevLoginHandler), authMiddleware...))
	mux.Handle("POST /auth/{provider}", server.ChainMiddleware(http.HandlerFunc(handlers.LoginHandler), authMiddleware...))
	mux.Handle("GET /auth/{provider}/callback", server.ChainMiddleware(http.HandlerFunc(handlers.CallbackHandler), authMiddleware...))

	if projects != nil {
		projectHandlers := dashboard.NewHandlers(projects)
		mux.Handle("GET /api/projects", server.ChainMiddleware(handlers.RequireUser(http.HandlerFunc(projectHandlers.ListProjectsHandler)), apiMiddleware...))
	}

	// API clients get JSON errors, not the default plain-text 404
	mux.Handle("/api/", server.ChainMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonwriter.WriteNotFound(w, "Not found")
	}), apiMiddleware...))

	log.LogInfoWithFields("server", "Auth front server initialized", nil)
	return mux
}
