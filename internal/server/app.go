// Package server initializes and runs the competition server: it wires the
// storage, services and HTTP surface together, starts the scheduled
// ingestion loop and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avolkovs/teamcomp/internal/cryptox"
	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/archive"
	"github.com/avolkovs/teamcomp/internal/server/auth"
	"github.com/avolkovs/teamcomp/internal/server/config"
	"github.com/avolkovs/teamcomp/internal/server/history"
	"github.com/avolkovs/teamcomp/internal/server/leaderboard"
	"github.com/avolkovs/teamcomp/internal/server/metrics"
	"github.com/avolkovs/teamcomp/internal/server/provider"
	"github.com/avolkovs/teamcomp/internal/server/repositories"
	"github.com/avolkovs/teamcomp/internal/server/rest"
	"github.com/avolkovs/teamcomp/internal/server/roster"
	"github.com/avolkovs/teamcomp/internal/server/stats"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	rm      repositories.Manager
	metrics *metrics.Metrics

	stats       *stats.Service
	roster      *roster.Service
	history     *history.Service
	leaderboard *leaderboard.Service
	handlers    *rest.Handlers
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := repositories.NewPostgresManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	passwordHash, err := auth.HashPassword(c.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("admin credential error: %w", err)
	}
	admin := auth.NewAdmin(c.AdminUser, passwordHash, []byte(c.SecretKey), c.TokenValidityDuration)

	m := metrics.New()
	providerClient := provider.NewHTTPClient(c.ProviderBaseURL, c.ProviderTimeout, logger)
	uploader := archive.NewS3Uploader(archive.Config{
		BaseEndpoint: c.S3BaseEndpoint,
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
	}, logger)

	box := cryptox.NewBox([]byte(c.SecretKey))
	statsSvc := stats.NewService(rm, providerClient, stats.NewGate(), box, logger, m, c.IngestWorkers)
	rosterSvc := roster.NewService(rm, providerClient, statsSvc, box, logger)
	historySvc := history.NewService(rm, logger)
	leaderboardSvc := leaderboard.NewService(rm, statsSvc, uploader, logger)

	return &App{
		config:      c,
		logger:      logger,
		rm:          rm,
		metrics:     m,
		stats:       statsSvc,
		roster:      rosterSvc,
		history:     historySvc,
		leaderboard: leaderboardSvc,
		handlers:    rest.NewHandlers(admin, statsSvc, rosterSvc, historySvc, leaderboardSvc, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: rest.NewRouter(app.handlers, app.metrics),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runIngestLoop triggers a full ingestion cycle on the configured interval
// until the context is canceled.
func (app *App) runIngestLoop(ctx context.Context) {
	ticker := time.NewTicker(app.config.IngestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.stats.RunCycle(ctx); err != nil {
				app.logger.Error(ctx, "ingest cycle failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.rm.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migration error", "error", err.Error())
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runIngestLoop(ctx)
	}()

	wg.Wait()

	if err := app.rm.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
