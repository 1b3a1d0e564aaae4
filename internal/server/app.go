// Package server initializes and runs the application server: it wires the
// database, object storage, token issuer and HTTP boundary together and
// handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dsmirnovs/clipvault/internal/filex"
	"github.com/dsmirnovs/clipvault/internal/logging"
	"github.com/dsmirnovs/clipvault/internal/server/assets"
	"github.com/dsmirnovs/clipvault/internal/server/auth"
	"github.com/dsmirnovs/clipvault/internal/server/config"
	"github.com/dsmirnovs/clipvault/internal/server/httpapi"
	"github.com/dsmirnovs/clipvault/internal/server/shared/db"
	"github.com/dsmirnovs/clipvault/internal/server/users"
	"github.com/dsmirnovs/clipvault/internal/server/videos"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	httpSrv *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	uploadDir, err := filex.EnsureSubDir(cfg.UploadTempDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init error: %w", err)
	}

	issuer := auth.NewIssuer(
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	store := assets.NewS3Store(cfg)
	coordinator := assets.NewCoordinator(store, manager.Users(), logger)

	userService := users.NewService(manager.Users(), issuer, store, coordinator, logger)
	videoService := videos.NewService(manager.Videos(), store, logger)

	httpSrv := httpapi.NewServer(cfg, logger, issuer, userService, videoService, uploadDir)

	return &App{config: cfg, logger: logger, manager: manager, httpSrv: httpSrv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server failed", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.httpSrv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
	}

	wg.Wait()

	if err := app.manager.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}

	app.logger.Info(context.Background(), "app stopped")
}
