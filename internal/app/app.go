// Package app initializes and runs the main application service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/ainotes/internal/auth"
	"github.com/patric-chuzhbe/ainotes/internal/config"
	"github.com/patric-chuzhbe/ainotes/internal/db/jsondb"
	"github.com/patric-chuzhbe/ainotes/internal/db/memorystorage"
	"github.com/patric-chuzhbe/ainotes/internal/db/postgresdb"
	"github.com/patric-chuzhbe/ainotes/internal/db/storage"
	"github.com/patric-chuzhbe/ainotes/internal/hasher"
	"github.com/patric-chuzhbe/ainotes/internal/logger"
	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/router"
	"github.com/patric-chuzhbe/ainotes/internal/service"
)

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the notes service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - setting up authentication, the service layer and the router
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	signingSecretKey, err := app.cfg.SigningSecret()
	if err != nil {
		return nil, err
	}

	theAuth := auth.New(
		app.db,
		app.cfg.AuthCookieName,
		signingSecretKey,
		app.cfg.AuthCookieTTL,
	)

	svc := service.New(
		app.db,
		hasher.New(app.cfg.BcryptCost),
		theAuth,
		app.cfg.AuthTokenTTL,
		app.cfg.AuthCookieTTL,
	)

	app.httpHandler = router.New(app.db, svc, theAuth)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Saving database and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		), nil

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
