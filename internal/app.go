package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"room-chat/auth"
	"room-chat/contract"
	"room-chat/infrastructure/api"
	"room-chat/infrastructure/ws"
	"room-chat/observability"
	"room-chat/repositories"
	"room-chat/runtime"
	"room-chat/search"
	"room-chat/services"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App owns every long-lived component of the server.
type App struct {
	log          *slog.Logger
	cfg          Config
	db           *badger.DB
	index        *search.Index
	orchestrator *runtime.Orchestrator
	limiter      *api.RateLimiter
	ws           *ws.Handler
	handler      http.Handler
	chat         *services.ChatService
	auth         *services.AuthService
	wg           sync.WaitGroup
	cancel       context.CancelFunc
}

type Option func(*options)

type options struct {
	hasherParams auth.Params
	registerer   prometheus.Registerer
	gatherer     prometheus.Gatherer
}

// WithHasherParams lowers the argon2 cost, for tests.
func WithHasherParams(params auth.Params) Option {
	return func(o *options) { o.hasherParams = params }
}

// WithRegistry uses its own prometheus registry instead of the default one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(o *options) {
		o.registerer = registry
		o.gatherer = registry
	}
}

// NewApp opens the storage and wires the services, the transport and the workers.
func NewApp(log *slog.Logger, cfg Config, opts ...Option) (*App, error) {
	o := options{
		hasherParams: auth.DefaultParams,
		registerer:   prometheus.DefaultRegisterer,
		gatherer:     prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	charReplacement, err := CharacterRune(cfg.CharacterReplacement)
	if err != nil {
		return nil, err
	}

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	index, err := search.Open(cfg.BlugeFilepath, log.With("component", "search"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("search index opening failed: %w", err)
	}

	// The default registry already carries the go runtime collector.
	if o.registerer != prometheus.DefaultRegisterer {
		o.registerer.MustRegister(collectors.NewGoCollector())
	}
	metrics := observability.NewCollector(o.registerer)
	monitor, err := observability.NewMonitoringManager()
	if err != nil {
		log.Warn("Process monitoring disabled", "error", err)
		monitor = nil
	}

	registry := runtime.NewRegistry(log.With("component", "registry"))
	orchestrator, err := runtime.NewOrchestrator(log, runtime.Config{
		SinkTimeout:          cfg.SinkTimeout,
		RestartInterval:      cfg.RestartInterval,
		MetricInterval:       cfg.MetricInterval,
		LatencyThreshold:     cfg.LatencyThreshold,
		TelemetryBufferSize:  cfg.TelemetryBufferSize,
		LowCapacityThreshold: cfg.LowCapacityThreshold,
		ModerationEnabled:    cfg.ModerationEnabled,
		CharReplacement:      charReplacement,
		CensoredWords:        SplitList(cfg.CensoredWords),
	}, registry, metrics, monitor, search.NewIndexSink(index, log.With("component", "index_sink")))
	if err != nil {
		_ = index.Close()
		_ = db.Close()
		return nil, err
	}

	uow := repositories.NewUnitOfWork(db, log.With("component", "store"), repositories.DefaultMaxRetries)
	rooms := repositories.NewRoomRepository()
	members := repositories.NewMembershipRepository()
	messages := repositories.NewMessageRepository(log.With("component", "messages"))
	users := repositories.NewUserRepository()

	chat := services.NewChatService(log.With("component", "chat"), services.ChatConfig{
		MaxContentLength:  cfg.MaxContentLength,
		DefaultPageSize:   cfg.DefaultPageSize,
		MaxPageSize:       min(cfg.MaxPageSize, services.MaxPageSize),
		PresenceOnConnect: cfg.PresenceOnConnect,
	}, uow,
		services.NewRoomRegistry(rooms, members, messages, users),
		messages,
		services.NewPermissionEvaluator(rooms, members, cfg.StrictMessageRead),
		registry, orchestrator.Broadcaster(), orchestrator.Sequencer(), index)
	if moderator := orchestrator.Moderator(); moderator != nil {
		chat.WithModeration(moderator, orchestrator.Telemetry())
	}

	authService := services.NewAuthService(log.With("component", "auth"), uow, users,
		auth.NewArgon2Hasher(o.hasherParams),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AuthTokenDuration),
		index)

	wsHandler := ws.NewHandler(log, ws.Config{
		BufferSize:     cfg.ConnectionBufferSize,
		Heartbeat:      ws.Heartbeat{Interval: cfg.HeartbeatInterval, Timeout: cfg.HeartbeatTimeout},
		OriginPatterns: SplitList(cfg.AllowedOrigins),
	}, chat, authService, metrics)

	limiter := api.NewRateLimiter(api.RateLimiterConfig{PerMinute: cfg.RateLimitPerMinute, Burst: cfg.RateLimitBurst})
	deps := api.RouterDeps{
		Log:            log,
		Auth:           authService,
		Chat:           chat,
		RateLimiter:    limiter,
		Metrics:        metrics,
		MetricsHandler: observability.Handler(o.gatherer),
		WebSocket:      wsHandler,
	}
	if monitor != nil {
		deps.Health = monitor
	}

	return &App{
		log:          log,
		cfg:          cfg,
		db:           db,
		index:        index,
		orchestrator: orchestrator,
		limiter:      limiter,
		ws:           wsHandler,
		handler:      api.NewRouter(deps),
		chat:         chat,
		auth:         authService,
	}, nil
}

func (a *App) Handler() http.Handler { return a.handler }

// Start rebuilds the search index when it lives in memory, then runs the
// background workers until Shutdown.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.BlugeFilepath == "" {
		users, err := a.auth.ReindexUsers(ctx)
		if err != nil {
			return fmt.Errorf("user reindex failed: %w", err)
		}
		messages, err := a.chat.ReindexMessages(ctx)
		if err != nil {
			return fmt.Errorf("message reindex failed: %w", err)
		}
		a.log.Info("Search index rebuilt", "users", users, "messages", messages)
	}

	ctx, a.cancel = context.WithCancel(ctx)
	backgrounds := []contract.Worker{a.limiter}
	for _, w := range backgrounds {
		a.wg.Add(1)
		go func(w contract.Worker) {
			defer a.wg.Done()
			if err := w.Run(ctx); err != nil {
				a.log.Error("Background worker stopped", "worker", contract.GetWorkerName(w), "error", err)
			}
		}(w)
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.orchestrator.Start(ctx); err != nil {
			a.log.Error("Orchestrator failed", "error", err)
		}
	}()
	return nil
}

// Shutdown closes the live connections first so their departure is still
// published, then stops the workers and closes the storage.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.ws.Shutdown(ctx); err != nil {
		a.log.Warn("Live connections did not close in time", "error", err)
	}
	a.orchestrator.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	var firstErr error
	if err := a.index.Close(); err != nil {
		firstErr = err
	}
	a.log.Info("Closing BadgerDB...")
	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
