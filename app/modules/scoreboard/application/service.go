package scoreboardservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	quoteservice "github.com/Black-And-White-Club/quote-bot/app/modules/quote/application"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/Black-And-White-Club/quote-bot/internal/observability"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ScoreboardService"

// ScoreboardService implements the Service interface.
type ScoreboardService struct {
	repo       scoreboarddb.Repository
	quotes     quoteservice.Service
	history    platform.History
	logger     *slog.Logger
	metrics    observability.Metrics
	tracer     trace.Tracer
	db         *bun.DB
	pageGroups int

	// pick returns a random index in [0, n).
	pick func(n int) int
}

// NewScoreboardService creates a new ScoreboardService. history may be nil,
// which disables SetupScoreboard backfill and RandomQuote.
func NewScoreboardService(
	repo scoreboarddb.Repository,
	quotes quoteservice.Service,
	history platform.History,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	pageGroups int,
) *ScoreboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if pageGroups < 1 {
		pageGroups = scoreboarddomain.DefaultPageGroups
	}
	return &ScoreboardService{
		repo:       repo,
		quotes:     quotes,
		history:    history,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		pageGroups: pageGroups,
		pick:       rand.IntN,
	}
}

var _ Service = (*ScoreboardService)(nil)

// isExpectedFailure reports errors that describe the request rather than a
// broken dependency.
func isExpectedFailure(err error) bool {
	return errors.Is(err, ErrScoreboardExists) ||
		errors.Is(err, ErrScoreboardNotFound) ||
		errors.Is(err, ErrNoQuotes)
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ScoreboardService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.DebugContext(ctx, "Operation triggered",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		if isExpectedFailure(err) {
			s.logger.WarnContext(ctx, "Operation returned failure result",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("reason", err.Error()),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
			}
			return result, wrappedErr
		}

		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *ScoreboardService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// requireScoreboard loads the channel scoreboard or fails with
// ErrScoreboardNotFound.
func (s *ScoreboardService) requireScoreboard(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddb.Scoreboard, error) {
	sb, err := s.repo.GetScoreboard(ctx, db, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scoreboard: %w", err)
	}
	if sb == nil {
		return nil, ErrScoreboardNotFound
	}
	return sb, nil
}
