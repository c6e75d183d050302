package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/halayachts/hala-api/config"
	httpx "github.com/halayachts/hala-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
	// ErrCh receives the listener error if the server stops unexpectedly.
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(buildRouterServices(appCfg, cfg.Services, cfg.DB, logger))
	return startServer(logger, handler, appCfg.HTTP, cfg.ErrCh)
}

func buildRouterServices(cfg *config.AppConfig, svc ServiceContainer, db *sql.DB, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		Cookies: httpx.CookieSettings{
			Domain: cfg.HTTP.CookieDomain,
			Secure: cfg.IsProduction(),
		},
		ErrorDetails: !cfg.IsProduction(),
		Throttle: httpx.ThrottleConfig{
			Requests: cfg.HTTP.IntakeRateLimit,
			Window:   cfg.HTTP.IntakeRateWindow,
		},
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Logger:       logger,
	}

	// Typed nil pointers would defeat the router's nil checks.
	if svc.Auth != nil {
		rs.Auth = svc.Auth
	}
	if svc.Contacts != nil {
		rs.Contacts = svc.Contacts
	}
	if svc.Bookings != nil {
		rs.Bookings = svc.Bookings
	}
	if svc.Newsletter != nil {
		rs.Newsletter = svc.Newsletter
	}
	if svc.Yachts != nil {
		rs.Yachts = svc.Yachts
	}
	if svc.Uploads != nil {
		rs.Uploads = svc.Uploads
	}
	if db != nil {
		rs.Health = db
	}
	if cfg.Storage.Provider == config.StorageLocal {
		rs.UploadsRoot = cfg.Storage.LocalRoot
	}
	if cfg.Observability.Metrics.Enabled {
		rs.MetricsPath = cfg.Observability.Metrics.Path
	}
	return rs
}

func startServer(logger *slog.Logger, handler http.Handler, cfg config.HTTPConfig, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, shutdownWaitTimeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
