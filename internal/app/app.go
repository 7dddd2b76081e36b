package app

import (
	"context"
	"fmt"
	"net"

	"github.com/yungbote/qrcodes-backend/internal/data/db"
	httpx "github.com/yungbote/qrcodes-backend/internal/http"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/envutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Server   *httpx.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log, cfg.Metrics.Enabled, cfg.Metrics.ScrapeEvery)

	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(dbs.DB(), log)
	serviceset, err := wireServices(log, cfg, reposet, clients, hub)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, hub, metrics)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       hub,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background work: the cross-replica SSE forwarder and the
// metrics collectors.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Log.Info("SSE forwarder started", "channel", a.Cfg.Redis.Channel)
	}
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB.DB())
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	return nil
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, net.JoinHostPort("", a.Cfg.Server.Port))
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
