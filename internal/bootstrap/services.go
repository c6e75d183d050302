package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halayachts/hala-api/config"
	"github.com/halayachts/hala-api/internal/adapters/smtp"
	"github.com/halayachts/hala-api/internal/adapters/storage"
	"github.com/halayachts/hala-api/internal/data"
	"github.com/halayachts/hala-api/internal/ports"
	"github.com/halayachts/hala-api/internal/service"
	"github.com/halayachts/hala-api/internal/service/notifier"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth       *service.AdminAuthService
	Contacts   *service.ContactService
	Bookings   *service.BookingService
	Newsletter *service.NewsletterService
	Yachts     *service.YachtService
	Uploads    *service.UploadService
	Notifier   *notifier.Service
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Contacts    *data.ContactRepo
	Bookings    *data.BookingRepo
	Subscribers *data.SubscriberRepo
	Yachts      *data.YachtRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Contacts:    data.NewContactRepo(db),
		Bookings:    data.NewBookingRepo(db),
		Subscribers: data.NewSubscriberRepo(db),
		Yachts:      data.NewYachtRepo(db),
	}
}

// NewServices builds every service the HTTP API needs.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require config")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		Production:  cfg.IsProduction(),
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		RedisPrefix: cfg.Redis.KeyPrefix,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	store, err := buildStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	notify := notifier.New(notifier.Options{
		Mailer: buildMailer(cfg.Mail, logger),
		Recipients: notifier.Recipients{
			Contact:    cfg.Mail.Recipients.Contact,
			Booking:    cfg.Mail.Recipients.Booking,
			Newsletter: cfg.Mail.Recipients.Newsletter,
		},
		Logger: logger,
	})

	repos := buildRepositories(deps.DB)
	return ServiceContainer{
		Auth: auth,
		Contacts: service.NewContactService(service.ContactServiceOptions{
			Repo:     repos.Contacts,
			Notifier: notify,
			Logger:   logger,
		}),
		Bookings: service.NewBookingService(service.BookingServiceOptions{
			Repo:     repos.Bookings,
			Notifier: notify,
			Logger:   logger,
		}),
		Newsletter: service.NewNewsletterService(service.NewsletterServiceOptions{
			Repo:     repos.Subscribers,
			Notifier: notify,
			Logger:   logger,
		}),
		Yachts: service.NewYachtService(service.YachtServiceOptions{
			Repo:     repos.Yachts,
			Cache:    buildCatalogCache(cfg.Redis, deps.RedisClient, logger),
			CacheTTL: cfg.Redis.CatalogTTL,
			Logger:   logger,
		}),
		Uploads: service.NewUploadService(service.UploadServiceOptions{
			Storage: store,
			Logger:  logger,
		}),
		Notifier: notify,
	}, nil
}

// buildCatalogCache returns the Redis catalog cache when enabled, or nil.
//
//nolint:ireturn // a nil interface disables caching in the service.
func buildCatalogCache(cfg config.RedisConfig, client redis.UniversalClient, logger *slog.Logger) ports.CacheRepository {
	if !cfg.CacheCatalog {
		return nil
	}
	if client == nil {
		logger.Warn("REDIS_CACHE_CATALOG set without a redis client; catalog cache disabled")
		return nil
	}
	logger.Info("yacht catalog cache enabled", "ttl", cfg.CatalogTTL)
	return data.NewRedisCacheRepo(client, cfg.KeyPrefix)
}

// buildMailer maps mail configuration onto the SMTP adapter. An unconfigured
// mailer is returned as is; the notifier skips delivery in that case.
func buildMailer(cfg config.MailConfig, logger *slog.Logger) *smtp.Mailer {
	if !cfg.Configured() {
		logger.Warn("SMTP not configured; notification emails are disabled")
	}
	return smtp.New(smtp.Options{
		Config: smtp.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			Username:    cfg.User,
			Password:    cfg.Password,
			FromEmail:   cfg.FromEmail,
			FromName:    cfg.FromName,
			ImplicitTLS: cfg.UseImplicitTLS(),
			Timeout:     cfg.Timeout,
			RetryLimit:  cfg.RetryLimit,
		},
		Logger: logger,
	})
}

// buildStorage selects the upload storage provider.
//
//nolint:ireturn // the provider is selected by configuration.
func buildStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (ports.StorageProvider, error) {
	switch cfg.Provider {
	case config.StorageS3:
		p, err := storage.NewS3Provider(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("build s3 storage: %w", err)
		}
		logger.Info("upload storage configured", "provider", "s3", "bucket", cfg.S3.Bucket)
		return p, nil
	default:
		logger.Info("upload storage configured", "provider", "local", "root", cfg.LocalRoot)
		return storage.NewLocalProvider(cfg.LocalRoot), nil
	}
}

// ServiceOrchestrationConfig contains the dependencies for running the API.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a signal or
// a server error, then shuts down gracefully.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		DB:       cfg.DB,
		Logger:   logger,
		ErrCh:    errCh,
	})

	return waitForShutdown(shutdownConfig{
		errCh:      errCh,
		httpServer: server,
		notifier:   cfg.Services.Notifier,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	errCh      <-chan error
	httpServer *http.Server
	notifier   *notifier.Service
	logger     *slog.Logger
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the HTTP server, then waits for in-flight notification emails.
func gracefulStop(cfg shutdownConfig) error {
	if err := ShutdownHTTPServer(ShutdownConfig{
		Context: context.Background(),
		Server:  cfg.httpServer,
		Logger:  cfg.logger,
	}); err != nil {
		return err
	}

	if cfg.notifier != nil {
		done := make(chan struct{})
		go func() {
			cfg.notifier.Wait()
			close(done)
		}()
		waitForService(done, "notifier", cfg.logger)
	}
	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
