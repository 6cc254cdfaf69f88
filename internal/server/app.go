// Package server wires the secretvault server together: storage, token
// revocation, rate limiting, auditing, services and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/secretvault/internal/cryptox"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/audit"
	"github.com/dmitrijs2005/secretvault/internal/server/auth"
	"github.com/dmitrijs2005/secretvault/internal/server/config"
	"github.com/dmitrijs2005/secretvault/internal/server/ratelimit"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretvault/internal/server/revocation"
	"github.com/dmitrijs2005/secretvault/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/secretvault/internal/server/grpc"
)

// Replaced in tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
	newS3Archive = func(ctx context.Context, c audit.S3Config) (audit.Sink, error) {
		return audit.NewS3Archive(ctx, c)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	audit   *audit.Async
	sweeper *revocation.Sweeper
	server  *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	if err := app.init(ctx); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	if c.RevocationBackend == config.BackendRedis || c.RateLimitBackend == config.BackendRedis {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis init error: %w", err)
		}
	}

	var store revocation.Store
	switch c.RevocationBackend {
	case config.BackendMemory:
		store = revocation.NewMemory(c.RevocationSweepInterval)
	case config.BackendRedis:
		store = revocation.NewRedis(app.redis, c.RedisPrefix+"revoked:")
	default:
		store = rm.RevokedTokens(db)
	}
	if c.RevocationBackend != config.BackendRedis {
		app.sweeper = revocation.NewSweeper(store, c.RevocationSweepInterval, app.logger)
	}

	var limiter ratelimit.Limiter
	switch c.RateLimitBackend {
	case config.BackendRedis:
		limiter = ratelimit.NewRedis(app.redis, c.RevealMaxAttempts, c.RevealWindow, c.RedisPrefix+"rl:")
	default:
		limiter = ratelimit.NewMemory(c.RevealMaxAttempts, c.RevealWindow)
	}

	sinks := audit.Multi{audit.NewPostgresSink(rm.AuditLog(db))}
	if c.AuditS3Enabled {
		archive, err := newS3Archive(ctx, audit.S3Config{
			Region:       c.S3Region,
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return fmt.Errorf("s3 init error: %w", err)
		}
		sinks = append(sinks, archive)
	}
	app.audit = audit.NewAsync(sinks, c.AuditWriteTimeout, app.logger)

	engine := cryptox.NewEngine(cryptox.KDFParams{Time: c.KDFTime, Memory: c.KDFMemoryKiB, Threads: c.KDFThreads})
	tokens := auth.NewTokenManager([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, store, app.logger)

	us := services.NewUserService(db, rm, tokens, app.audit, app.logger)
	ps := services.NewSecurityProfileService(db, rm, app.audit, app.logger, c.AnswerHashCost)
	gate := services.NewDisclosureGate(db, rm, limiter, engine, ps, app.audit, app.logger)
	vs := services.NewVaultService(db, rm, engine, gate, app.audit, app.logger)

	app.server = gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, us, vs, ps)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) (stop func()) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains pending audit writes and closes connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx)
	})
	if app.sweeper != nil {
		g.Go(func() error {
			app.sweeper.Run(gctx)
			return nil
		})
	}

	err := g.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

func (app *App) close() {
	if app.audit != nil {
		app.audit.Wait()
	}

	var errs []error
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Warn(context.Background(), "close failed", "error", err)
	}
}
