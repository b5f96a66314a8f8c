// Package server wires configuration, storage, services and transports into
// a runnable application: the REST API with its event stream, and the gRPC
// health endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/auth"
	"github.com/kinganjia/backend/internal/server/config"
	"github.com/kinganjia/backend/internal/server/events"
	"github.com/kinganjia/backend/internal/server/httpapi"
	"github.com/kinganjia/backend/internal/server/integrity"
	"github.com/kinganjia/backend/internal/server/repositories/repomanager"
	"github.com/kinganjia/backend/internal/server/services"
	"github.com/kinganjia/backend/internal/timex"

	gs "github.com/kinganjia/backend/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router *gin.Engine
}

// NewApp connects to PostgreSQL, applies migrations and builds the router.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	deps, err := buildDeps(c, dbx.NewSQLRunner(db, nil), rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	deps.Ready = db.PingContext

	gin.SetMode(gin.ReleaseMode)
	return &App{config: c, logger: logger, db: db, router: httpapi.NewRouter(deps)}, nil
}

// buildDeps assembles the services on top of any transaction runner and
// repository manager.
func buildDeps(c *config.Config, tx dbx.TxRunner, repos repomanager.RepositoryManager, logger logging.Logger) (httpapi.Deps, error) {
	codec, err := auth.NewCodec(c.TokenFormat, []byte(c.SecretKey))
	if err != nil {
		return httpapi.Deps{}, err
	}
	tokens, err := auth.NewTokenManager(codec, c.TokenLifetime, logger)
	if err != nil {
		return httpapi.Deps{}, err
	}
	hasher, err := auth.NewPasswordHasher(c.PasswordHasher, c.BcryptCost)
	if err != nil {
		return httpapi.Deps{}, err
	}

	hub := events.NewHub(events.DefaultBuffer, logger)
	b := &services.Backend{
		TX:               tx,
		Repos:            repos,
		DeletePolicy:     integrity.Policy(c.DeletePolicy),
		EnforceOwnership: c.EnforceOwnership,
		Events:           hub,
		Now:              timex.UTCNow,
		Log:              logger,
	}

	var storage services.Presigner
	if c.S3Bucket != "" {
		storage = services.NewStorageService(c)
	}

	users := services.NewUserService(b, hasher)
	return httpapi.Deps{
		Auth:    services.NewAuthService(b, users, tokens, hasher),
		Users:   users,
		Claims:  services.NewClaimService(b),
		Images:  services.NewImageService(b, storage),
		Stream:  events.NewStream(hub, logger),
		Metrics: httpapi.NewMetrics(),
		Now:     timex.UTCNow,
		Log:     logger,
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
		Addr:              app.config.HTTPAddr,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.db.PingContext, 0)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or a server fails, then
// closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
