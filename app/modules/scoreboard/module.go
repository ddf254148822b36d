package scoreboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	quoteservice "github.com/Black-And-White-Club/quote-bot/app/modules/quote/application"
	scoreboardservice "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/application"
	scoreboardhandlers "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/handlers"
	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	scoreboardrouter "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/router"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/Black-And-White-Club/quote-bot/internal/eventbus"
	"github.com/Black-And-White-Club/quote-bot/internal/observability"
)

// Platform is what the module needs from the chat platform.
type Platform interface {
	platform.DirectoryProvider
	platform.History
}

// Module represents the scoreboard module.
type Module struct {
	ScoreboardService scoreboardservice.Service
	ScoreboardRouter  *scoreboardrouter.ScoreboardRouter
	cancelFunc        context.CancelFunc
	observability     *observability.Observability
}

// NewScoreboardModule creates and initializes a new scoreboard module.
func NewScoreboardModule(
	ctx context.Context,
	obs *observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	chat Platform,
	pageGroups int,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "scoreboard.NewScoreboardModule initializing")

	repo := scoreboarddb.NewRepository(db)
	quotes := quoteservice.NewQuoteService(chat, logger)
	service := scoreboardservice.NewScoreboardService(repo, quotes, chat, logger, obs.Metrics, tracer, db, pageGroups)
	handlers := scoreboardhandlers.NewScoreboardHandlers(service, quotes, logger, tracer)

	scoreboardRouter := scoreboardrouter.NewScoreboardRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.Metrics,
		obs.Registry,
	)
	if err := scoreboardRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure scoreboard router: %w", err)
	}

	return &Module{
		ScoreboardService: service,
		ScoreboardRouter:  scoreboardRouter,
		observability:     obs,
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting scoreboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Scoreboard module goroutine stopped")
}

// Close shuts down the scoreboard module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping scoreboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.ScoreboardRouter != nil {
		if err := m.ScoreboardRouter.Close(); err != nil {
			logger.Error("Error closing ScoreboardRouter from module", "error", err)
			return fmt.Errorf("error closing ScoreboardRouter: %w", err)
		}
	}

	logger.Info("Scoreboard module stopped")
	return nil
}
