package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/Black-And-White-Club/quote-bot/config"
	"github.com/Black-And-White-Club/quote-bot/internal/database"
	"github.com/Black-And-White-Club/quote-bot/internal/eventbus"
	natsutil "github.com/Black-And-White-Club/quote-bot/internal/nats"
	"github.com/Black-And-White-Club/quote-bot/internal/observability"
)

// ServiceName identifies the bot in logs, traces and metrics.
const ServiceName = "quote-bot"

// App holds the long-lived resources of the bot.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router

	ScoreboardModule *scoreboard.Module

	platformConn *nats.Conn
	wg           sync.WaitGroup
}

// New builds the application from cfg. Logs go to w. chat may be nil, in
// which case the platform is reached over NATS when an address is
// configured.
func New(ctx context.Context, cfg *config.Config, w io.Writer, chat scoreboard.Platform) (*App, error) {
	obs, err := observability.Init(observability.Config{
		ServiceName:    ServiceName,
		Environment:    cfg.Observability.Environment,
		MetricsAddress: cfg.Observability.MetricsAddress,
		LogLevel:       cfg.Observability.LogLevel,
	}, w)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(ctx, db, logger); err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	bus, err := eventbus.New(eventbus.Config{
		Driver:    cfg.EventBus.Driver,
		URL:       cfg.EventBus.URL,
		JetStream: cfg.EventBus.JetStream,
		NKeySeed:  cfg.EventBus.NKeySeed,
	}, logger)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	if chat == nil && cfg.Platform.NATSURL != "" {
		conn, err := natsutil.Connect(natsutil.Config{
			URL:      cfg.Platform.NATSURL,
			Name:     ServiceName + "-platform",
			NKeySeed: cfg.EventBus.NKeySeed,
		}, logger)
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("failed to connect to platform: %w", err)
		}
		app.platformConn = conn
		chat = platform.NewNATSClient(conn, cfg.Platform.RequestTimeout, cfg.Platform.RequestsPerSecond, logger)
	}
	if chat == nil {
		logger.WarnContext(ctx, "No platform configured; name lookups and history are unavailable")
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	app.Router = router

	module, err := scoreboard.NewScoreboardModule(ctx, obs, bus, router, ctx, db, chat, cfg.Scoreboard.PageGroups)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to initialize scoreboard module: %w", err)
	}
	app.ScoreboardModule = module

	return app, nil
}

// Run serves events until ctx is cancelled, then shuts down.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	a.Observability.Start(ctx)

	a.wg.Add(1)
	go a.ScoreboardModule.Run(ctx, &a.wg)

	logger.InfoContext(ctx, "Quote bot running")
	err := a.Router.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closeErr := a.Close(shutdownCtx); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// Running is closed once every handler is subscribed.
func (a *App) Running() chan struct{} {
	return a.Router.Running()
}

// Close stops the module and releases every resource.
func (a *App) Close(ctx context.Context) error {
	logger := a.Observability.Logger
	logger.InfoContext(ctx, "Shutting down quote bot")

	var errs []error
	if a.ScoreboardModule != nil {
		if err := a.ScoreboardModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.wg.Wait()

	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metrics server: %w", err))
	}
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeResources() error {
	var errs []error
	if a.EventBus != nil {
		if err := a.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
		a.EventBus = nil
	}
	if a.platformConn != nil {
		a.platformConn.Close()
		a.platformConn = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
		a.DB = nil
	}
	return errors.Join(errs...)
}
