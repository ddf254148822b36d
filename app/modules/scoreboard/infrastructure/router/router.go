package scoreboardrouter

import (
	"context"
	"log/slog"
	"time"

	scoreboardevents "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain/events"
	scoreboardhandlers "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/handlers"
	"github.com/Black-And-White-Club/quote-bot/internal/eventbus"
	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// ScoreboardRouter handles Watermill handler registration for scoreboard events.
type ScoreboardRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewScoreboardRouter creates a new ScoreboardRouter. registry may be nil
// to skip router metrics.
func NewScoreboardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	handlerMetrics handlerwrapper.Metrics,
	registry prometheus.Registerer,
) *ScoreboardRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "quotebot", "router")
		metricsBuilder = &b
	}

	return &ScoreboardRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up middleware and registers the handlers.
func (r *ScoreboardRouter) Configure(_ context.Context, handlers scoreboardhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.Metrics
}

// registerHandlers wires topics to handler methods. Message lifecycle events
// share one topic and therefore one handler, which keeps per-message order.
func (r *ScoreboardRouter) registerHandlers(handlers scoreboardhandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, scoreboardevents.MessageLifecycleV1, handlers.HandleMessageEvent)
	registerHandler(deps, scoreboardevents.ChannelDeletedV1, handlers.HandleChannelDeleted)
	registerHandler(deps, scoreboardevents.ScoreboardDisplayMovedV1, handlers.HandleScoreboardDisplayMoved)
	registerHandler(deps, scoreboardevents.ScoreRequestedV1, handlers.HandleScoreRequest)
	registerHandler(deps, scoreboardevents.LeaderboardRequestedV1, handlers.HandleLeaderboardRequest)
	registerHandler(deps, scoreboardevents.ScoreboardCreateRequestedV1, handlers.HandleScoreboardCreateRequest)
	registerHandler(deps, scoreboardevents.ScoreboardDeleteRequestedV1, handlers.HandleScoreboardDeleteRequest)
	registerHandler(deps, scoreboardevents.RandomQuoteRequestedV1, handlers.HandleRandomQuoteRequest)
	registerHandler(deps, scoreboardevents.MessageCheckRequestedV1, handlers.HandleMessageCheckRequest)

	r.logger.Info("Scoreboard module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler
// registration. Outgoing messages are published on the topic in their
// metadata.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "scoreboard." + topic
	wrapped := handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, deps.metrics, handler)

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		nil,
		func(msg *message.Message) ([]*message.Message, error) {
			out, err := wrapped(msg)
			if err != nil {
				return nil, err
			}
			if err := eventbus.PublishTagged(deps.publisher, out...); err != nil {
				return nil, err
			}
			return nil, nil
		},
	)
}

// Close stops the router.
func (r *ScoreboardRouter) Close() error {
	return r.Router.Close()
}
