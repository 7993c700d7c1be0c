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

	httpapi "github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/http"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/mailx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	tokens *service.TokenIssuer

	// Services
	authService         *service.AuthService
	deviceService       *service.DeviceService
	userService         *service.UserService
	limiter             *service.ConnectionLimiter
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "bloggers-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
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
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
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
	tokenCfg, err := InitTokenConfig(app.cfg, app.logger)
	if err != nil {
		return err
	}
	cipher, err := InitCipher(app.cfg, app.logger)
	if err != nil {
		return err
	}
	hasher, err := InitHasher(app.cfg, app.logger)
	if err != nil {
		return err
	}

	app.tokens, err = service.NewTokenIssuer(tokenCfg, cipher, app.db)
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		Tokens:          app.tokens,
		Hasher:          hasher,
		Mailer:          app.mailer(),
		PublicURL:       app.cfg.PublicURL,
		ConfirmationTTL: app.cfg.ConfirmationCodeTTL,
		RecoveryTTL:     app.cfg.RecoveryCodeTTL,
	}
	app.deviceService = &service.DeviceService{Store: app.db, Tokens: app.tokens}
	app.userService = &service.UserService{Store: app.db, Hasher: hasher}
	app.limiter = &service.ConnectionLimiter{
		Store:       app.db,
		Window:      app.cfg.RateLimitWindow,
		MaxRequests: app.cfg.RateLimitMaxRequests,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.ConnectionRetention,
	)
	return nil
}

func (app *Application) mailer() mailx.Sender {
	if app.cfg.ResendAPIKey == "" {
		app.logger.Warn("RESEND_API_KEY not set, emails are only logged")
		return &mailx.LogSender{Logger: app.logger}
	}
	return mailx.NewResendSender(app.cfg.ResendAPIKey, app.cfg.EmailFrom)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	clientIP := httpx.IPKeyExtractor
	if app.cfg.TrustProxyHeaders {
		clientIP = httpx.ForwardedIPKeyExtractor
	}

	router := httpapi.NewRouter(httpapi.Options{
		ClientIP:        clientIP,
		RateLimitWindow: app.cfg.RateLimitWindow,
		CookieSecure:    app.cfg.CookieSecure,
		AdminLogin:      app.cfg.AdminLogin,
		AdminPassword:   app.cfg.AdminPassword,
		CORSOrigins:     app.cfg.CORSOrigins,
	}, BuildVersion, app.db, app.logger)

	// Wire services to router
	router.Tokens = app.tokens
	router.AuthService = app.authService
	router.DeviceService = app.deviceService
	router.UserService = app.userService
	router.Limiter = app.limiter
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
