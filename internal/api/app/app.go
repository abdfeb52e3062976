package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anchorhq/anchor/internal/api/email"
	httpapi "github.com/anchorhq/anchor/internal/api/http"
	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/internal/api/store/drivers/sqlite"
	"github.com/anchorhq/anchor/pkg/authx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	provider authx.Provider
	sender   email.Sender
	metrics  *metrics.APIMetrics

	// Services
	identityService   *service.IdentityService
	invitationService *service.InvitationService
	tenantService     *service.TenantService
	clientService     *service.ClientService
	policyService     *service.PolicyService
	timelineService   *service.TimelineService
	taskService       *service.TaskService
	digestService     *service.DigestService
	digestScheduler   *service.DigestScheduler

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "anchor-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.NewAPIMetrics(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.provider = authx.NewClient(cfg.AuthURL, cfg.AuthServiceKey)
	app.sender = email.NewAPISender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom)

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.digestScheduler.Start()

	app.logger.Info("api service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the digest scheduler
	app.digestScheduler.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	app.identityService = &service.IdentityService{
		Provider: app.provider,
		Store:    app.db,
	}

	app.invitationService = &service.InvitationService{
		Store:       app.db,
		Provider:    app.provider,
		FrontendURL: app.cfg.FrontendURL,
	}

	app.tenantService = &service.TenantService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db}
	app.policyService = &service.PolicyService{Store: app.db}
	app.timelineService = &service.TimelineService{Store: app.db}
	app.taskService = &service.TaskService{Store: app.db}

	app.digestService = &service.DigestService{
		Store:   app.db,
		Sender:  app.sender,
		Metrics: app.metrics,
		Logger:  app.logger,
	}

	loc, err := time.LoadLocation(app.cfg.DigestTimezone)
	if err != nil {
		return fmt.Errorf("invalid digest timezone %q: %w", app.cfg.DigestTimezone, err)
	}
	app.digestScheduler = service.NewDigestScheduler(
		app.digestService,
		app.logger,
		app.cfg.DigestHour,
		loc,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	// Wire services to router
	router.IdentityService = app.identityService
	router.InvitationService = app.invitationService
	router.TenantService = app.tenantService
	router.ClientService = app.clientService
	router.PolicyService = app.policyService
	router.TimelineService = app.timelineService
	router.TaskService = app.taskService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
