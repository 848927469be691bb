package daemon

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matheus3301/inbox/internal/api"
	"github.com/matheus3301/inbox/internal/bus"
	"github.com/matheus3301/inbox/internal/cache"
	"github.com/matheus3301/inbox/internal/config"
	"github.com/matheus3301/inbox/internal/copilot"
	"github.com/matheus3301/inbox/internal/gateway"
	"github.com/matheus3301/inbox/internal/inbox"
	"github.com/matheus3301/inbox/internal/lock"
	"github.com/matheus3301/inbox/internal/logging"
	"github.com/matheus3301/inbox/internal/profile"
	"github.com/matheus3301/inbox/internal/selection"
	"github.com/matheus3301/inbox/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedisPasswordEnv holds the Redis password when the redis backend is used.
const RedisPasswordEnv = "INBOX_REDIS_PASSWORD"

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	SocketPath string // optional override for testing; empty = use default
	Config     *config.Config
	Debug      bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	if p.Config == nil {
		p.Config = config.Default()
	}
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideBackend,
			provideCache,
			provideSeed,
			provideInbox,
			provideGateway,
			provideController,
			provideBroker,
			api.NewInboxService,
			api.NewCopilotService,
			api.NewRefineService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if p.Debug {
		level = zapcore.DebugLevel
	}
	return logging.New(profile.LogPath(p.Profile), p.Profile, level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideBackend opens the configured cache backend. It depends on the lock
// so the database is never opened by two daemons.
func provideBackend(lc fx.Lifecycle, p Params, _ *lock.Lock, logger *zap.Logger) (cache.Backend, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var backend cache.Backend
	switch p.Config.Cache.Backend {
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     p.Config.Cache.RedisAddr,
			Password: os.Getenv(RedisPasswordEnv),
			DB:       p.Config.Cache.RedisDB,
			Prefix:   p.Config.Cache.RedisPrefix,
			TTL:      p.Config.Cache.RedisTTL.Duration,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("cache backend ready", zap.String("backend", "redis"), zap.String("addr", p.Config.Cache.RedisAddr))
		backend = r
	case "memory":
		logger.Info("cache backend ready", zap.String("backend", "memory"))
		backend = cache.NewMemory()
	default:
		db, err := openStore(ctx, profile.CachePath(p.Profile), logger)
		if err != nil {
			return nil, err
		}
		backend = db
	}

	if c, ok := backend.(io.Closer); ok {
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return c.Close() }})
	}
	return backend, nil
}

func openStore(ctx context.Context, path string, logger *zap.Logger) (*store.DB, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}

	entries, err := db.EntryCount(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	histories, err := db.Keys(ctx, cache.HistoryKeyPrefix)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("cache backend ready",
		zap.String("backend", "sqlite"),
		zap.String("path", path),
		zap.Int64("entries", entries),
		zap.Int("copilot_histories", len(histories)))
	return db, nil
}

func provideCache(backend cache.Backend, logger *zap.Logger) *cache.Adapter {
	return cache.New(backend, logger.Named("cache"))
}

func provideSeed(p Params) ([]inbox.Thread, error) {
	if p.Config.Inbox.SeedFile != "" {
		return inbox.LoadSeed(p.Config.Inbox.SeedFile)
	}
	return inbox.DefaultSeed()
}

func provideInbox(b *bus.Bus, c *cache.Adapter, logger *zap.Logger, seed []inbox.Thread) (*inbox.Store, error) {
	return inbox.Open(context.Background(), b, c, logger.Named("inbox"), seed)
}

// provideGateway builds the configured backend. A hosted provider without an
// API key falls back to canned replies so the console stays usable offline.
func provideGateway(p Params, logger *zap.Logger) (gateway.Client, error) {
	cfg := p.Config.Gateway.ClientConfig()
	if cfg.Provider != "canned" && cfg.APIKey == "" {
		logger.Warn("no API key configured, using canned replies",
			zap.String("provider", cfg.Provider),
			zap.String("env", p.Config.Gateway.KeyEnv()))
		cfg.Provider = "canned"
	}
	g, err := gateway.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("gateway ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))
	return g, nil
}

func provideController(g gateway.Client, store *inbox.Store, c *cache.Adapter, b *bus.Bus, logger *zap.Logger) *copilot.Controller {
	return copilot.New(g, store, c, b, logger.Named("copilot"))
}

func provideBroker(g gateway.Client, logger *zap.Logger) *selection.Broker {
	return selection.NewBroker(g, logger.Named("selection"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, ctl *copilot.Controller, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			// Answers still in flight are written to the cache before it closes.
			if err := ctl.Drain(ctx); err != nil {
				logger.Warn("copilot calls still in flight at shutdown", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
