// Package server initializes and runs the tenantdb server: it opens the
// managed connection pool, applies migrations, schedules session cleanup,
// and serves the health and metrics endpoints until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tenantdb/internal/logging"
	"github.com/dmitrijs2005/tenantdb/internal/server/config"
	"github.com/dmitrijs2005/tenantdb/internal/server/database"
	"github.com/dmitrijs2005/tenantdb/internal/server/janitor"
	"github.com/dmitrijs2005/tenantdb/internal/server/metrics"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tenantdb/internal/server/services"
	"github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/tenantdb/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	manager        *database.Manager
	accountService *services.AccountService
	janitor        *janitor.Janitor
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	manager, err := database.NewManager(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	// Migrations run over a database/sql bridge onto the managed pool.
	db := stdlib.OpenDBFromPool(manager.Pool())
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = manager.Close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}
	_ = db.Close()

	as := services.NewAccountService(manager, rm, c)

	j := janitor.NewJanitor(c.CleanupSchedule, as, logger)

	return &App{config: c, logger: logger, manager: manager, accountService: as, janitor: j}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.manager)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := metrics.NewServer(app.config.MetricsAddr, app.logger, app.manager)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.janitor.Start(); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.janitor.Stop()

	if err := app.manager.Close(context.Background()); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
