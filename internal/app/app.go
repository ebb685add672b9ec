// Package app wires configuration, iiko services and the Telegram transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/api"
	"github.com/KirillkoTankisto/iiko-bot/internal/config"
	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/handlers"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/metrics"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/telegram"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/access"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/olap"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/servers"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/shifts"
	"github.com/KirillkoTankisto/iiko-bot/internal/session"
)

const shutdownTimeout = 5 * time.Second

// App wires configuration, iiko clients, state storage and metrics into the
// conversation engine and the one-shot report commands.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	metrics         *metrics.Recorder
	shutdownMetrics func(context.Context) error

	client   *api.Client
	sessions *session.Manager
	shifts   *shifts.Service
	olap     *olap.Service
	registry *servers.Registry
	access   *access.Service

	redis *redis.Client
	store conversation.Store
}

// Option configures optional App settings.
type Option func(*options)

type options struct {
	exportMetrics bool
}

// WithoutMetricsExport keeps instruments local. One-shot CLI commands use
// it so they never dial the OTLP collector.
func WithoutMetricsExport() Option {
	return func(o *options) {
		o.exportMetrics = false
	}
}

// New builds every service from cfg.
//
// Parameters:
// - ctx: bounds metrics exporter setup
// - cfg: validated configuration
// - configPath: the file the allow-list is written back to
// - logger: base logger; nil disables logging
// - opts: optional settings such as WithoutMetricsExport
//
// Returns:
// - *App: the wired application, to be released with Close
// - error: when metrics or the server registry cannot be set up
func New(ctx context.Context, cfg config.Config, configPath string, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{exportMetrics: true}
	for _, opt := range opts {
		opt(&o)
	}

	shutdown := func(context.Context) error { return nil }
	rec := metrics.NewNoopRecorder()
	if o.exportMetrics {
		var err error
		shutdown, err = metrics.Setup(ctx, metrics.Config{
			Endpoint: cfg.Metrics.Endpoint,
			Insecure: cfg.Metrics.Insecure,
			Interval: cfg.Metrics.Interval,
		})
		if err != nil {
			return nil, fmt.Errorf("setup metrics: %w", err)
		}
		rec, err = metrics.NewRecorder()
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("create metrics recorder: %w", err)
		}
	}

	serverList := make([]model.Server, 0, len(cfg.IIKO.Servers))
	for _, s := range cfg.IIKO.Servers {
		serverList = append(serverList, model.Server{Name: s.Name, Address: s.Address})
	}
	registry, err := servers.NewRegistry(serverList)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("create server registry: %w", err)
	}

	client := api.NewClient(
		cfg.IIKO.RequestTimeout,
		api.WithMaxRetries(uint64(cfg.IIKO.MaxRetries)),
		api.WithLogger(logger.Named("iiko")),
		api.WithMetrics(rec),
	)

	a := &App{
		cfg:             cfg,
		logger:          logger,
		metrics:         rec,
		shutdownMetrics: shutdown,
		client:          client,
		sessions: session.NewManager(client, cfg.IIKO.TokenTTL,
			session.WithLogger(logger.Named("session")),
			session.WithMetrics(rec),
		),
		shifts:   shifts.NewService(client, time.Now),
		olap:     olap.NewService(client, time.Now),
		registry: registry,
		access:   access.NewService(cfg.Access.Accounts, cfg.Access.Admins, config.NewAccountsWriter(configPath)),
	}
	return a, nil
}

func (a *App) credentials() model.Credentials {
	return model.Credentials{Login: a.cfg.IIKO.Login, Password: a.cfg.IIKO.Pass}
}

func (a *App) openStore(ctx context.Context) (conversation.Store, error) {
	storeType := conversation.StoreType(a.cfg.Store.Type)
	opts := []conversation.StoreOption{conversation.WithTTL(a.cfg.Store.TTL)}

	if storeType == conversation.StoreTypeRedis {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Store.Redis.Addr,
			Password: a.cfg.Store.Redis.Password,
			DB:       a.cfg.Store.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", a.cfg.Store.Redis.Addr, err)
		}
		opts = append(opts, conversation.WithRedisClient(a.redis))
	}

	return conversation.NewStore(storeType, opts...)
}

// Run serves the bot until ctx is done.
func (a *App) Run(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open conversation store: %w", err)
	}
	a.store = store

	var engine *handlers.Handler
	tg, err := telegram.NewClient(telegram.Config{
		Token:       a.cfg.Bot.Token,
		PollTimeout: a.cfg.Bot.PollTimeout,
		Workers:     a.cfg.Bot.Workers,
		Debug:       a.cfg.Bot.Debug,
	}, a.logger.Named("telegram"), func(ctx context.Context, in handlers.Inbound) {
		engine.Handle(ctx, in)
	})
	if err != nil {
		return fmt.Errorf("create telegram client: %w", err)
	}

	engine, err = handlers.NewHandler(handlers.Deps{
		Sender:      tg,
		Store:       store,
		Sessions:    a.sessions,
		Shifts:      a.shifts,
		Olap:        a.olap,
		Registry:    a.registry,
		Access:      a.access,
		Credentials: a.credentials(),
		Logger:      a.logger.Named("engine"),
		Metrics:     a.metrics,
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	if err := tg.RegisterCommands(); err != nil {
		a.logger.Warn("register bot commands", zap.Error(err))
	}

	a.logger.Info("bot started",
		zap.String("server", a.registry.Current().Name),
		zap.String("store", a.cfg.Store.Type),
		zap.Int("workers", a.cfg.Bot.Workers),
	)
	return tg.Start(ctx)
}

// Close logs out of every iiko server and releases the store and exporters.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.sessions.ReleaseAll(ctx)

	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.shutdownMetrics(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
	}
	return errors.Join(errs...)
}
