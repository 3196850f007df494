package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pashto-learning-app/backend/internal/application/auth"
	"github.com/pashto-learning-app/backend/internal/application/users"
	"github.com/pashto-learning-app/backend/internal/audit"
	"github.com/pashto-learning-app/backend/internal/config"
	"github.com/pashto-learning-app/backend/internal/domain"
	"github.com/pashto-learning-app/backend/internal/infrastructure/db/postgres"
	"github.com/pashto-learning-app/backend/internal/infrastructure/memory"
	rabbitmq_pub "github.com/pashto-learning-app/backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/pashto-learning-app/backend/internal/infrastructure/redis"
	"github.com/pashto-learning-app/backend/internal/infrastructure/security"
	"github.com/pashto-learning-app/backend/internal/infrastructure/seed"
	"github.com/pashto-learning-app/backend/internal/logger"
	http_handlers "github.com/pashto-learning-app/backend/internal/transport/http/handlers"
	"github.com/pashto-learning-app/backend/internal/transport/http/middleware"
	"github.com/pashto-learning-app/backend/internal/transport/http/response"
	"github.com/pashto-learning-app/backend/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB   func(ctx context.Context, dsn string, debug bool) (*sql.DB, error)
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(url, exchange string) (Publisher, error)
}

type Publisher interface {
	auth.EventPublisher
	Close() error
}

// userStore is what both services and the readiness probe need from storage.
type userStore interface {
	auth.UserRepo
	List(ctx context.Context) ([]domain.User, error)
	Ping(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	ctx := context.Background()
	log := logger.Logger

	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) store
	var store userStore
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory user store; data is lost on restart")
		store = memory.NewUserRepo()

	default:
		db, err := deps.NewDB(ctx, cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return fail(err)
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if cfg.DBAutoMigrate && deps.Migrate != nil {
			if err := deps.Migrate(ctx, db); err != nil {
				return fail(fmt.Errorf("migrate: %w", err))
			}
			log.Info().Msg("database migrated")
		}
		store = postgres.NewUserRepo(db)
	}

	// 2) redis (best-effort)
	var limiter middleware.RateLimiter
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else {
			log.Info().Msg("redis connected")
			limiter = redis.NewFixedWindowLimiter(c)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) publisher
	pub, err := newPublisher(deps, cfg)
	if err != nil {
		return fail(err)
	}
	cleanupFns = append(cleanupFns, func() { _ = pub.Close() })

	// 4) security
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens := security.NewJWTIssuer(security.JWTConfig{
		Issuer:        cfg.JWTIssuer,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		EmailSecret:   cfg.EmailSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		EmailTTL:      cfg.VerifyEmailTokenTTL,
	})

	// seed (dev only)
	if cfg.IsDev() {
		seed.Users(ctx, store, hasher, seed.DevAccounts, log)
	}

	// 5) services
	authSvc := auth.NewService(store, hasher, tokens, pub, auth.Config{
		VerifyEmailBaseURL: cfg.VerifyEmailBaseURL(),
	}).WithAudit(audit.New(log).Hook())
	usersSvc := users.NewService(store, hasher)

	// 6) handlers + middleware
	rl := func(key string, limit int, window time.Duration) router.Middleware {
		return middleware.RateLimit(limiter, middleware.FixedWindowConfig{
			RouteKey: key,
			Limit:    limit,
			Window:   window,
		}, response.WriteError)
	}

	mux, err := router.New(router.Deps{
		Health:  http_handlers.NewHealthHandler(store),
		Auth:    http_handlers.NewAuthHandler(authSvc),
		Users:   http_handlers.NewUsersHandler(usersSvc),
		Metrics: promhttp.Handler(),

		TrustProxyHeaders: cfg.TrustProxyHeaders,
		CORSMW:            middleware.CORS(cfg.CORSAllowedOrigins),
		SecurityMW:        middleware.SecurityHeaders(!cfg.IsDev()),

		RequestIDMW: middleware.RequestID,
		AccessLogMW: middleware.AccessLog,
		MetricsMW:   middleware.Metrics,

		AuthMW:     middleware.Auth(tokens, response.WriteError),
		AdminMW:    middleware.RequireAtLeast(string(domain.RoleAdmin), response.WriteError),
		VerifiedMW: middleware.RequireEmailVerified(store, response.WriteError),

		RLRegister: rl("auth.register", 3, time.Minute),
		RLLogin:    rl("auth.login", 5, time.Minute),
		RLRefresh:  rl("auth.refresh", 10, time.Minute),
	})
	if err != nil {
		return fail(err)
	}

	// 7) server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

// newPublisher falls back to logging the verification link in dev. Outside
// dev a missing or unreachable broker is fatal.
func newPublisher(deps Deps, cfg *config.Config) (Publisher, error) {
	var err error
	switch {
	case cfg.RabbitURL == "":
		err = errors.New("RABBIT_URL not set")
	case deps.NewPublisher == nil:
		err = errors.New("no publisher configured")
	default:
		var pub Publisher
		pub, err = deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err == nil {
			logger.Logger.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbitmq connected")
			return pub, nil
		}
	}

	if !cfg.IsDev() {
		return nil, fmt.Errorf("rabbitmq: %w", err)
	}
	logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
	return memory.NewNoopPublisher(logger.Logger), nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(ctx context.Context, dsn string, debug bool) (*sql.DB, error) {
			return config.NewDB(ctx, dsn, debug, logger.Logger)
		},
		Migrate:  postgres.Migrate,
		NewRedis: redis.New,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
