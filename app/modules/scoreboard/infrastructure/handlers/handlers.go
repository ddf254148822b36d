package scoreboardhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	quoteservice "github.com/Black-And-White-Club/quote-bot/app/modules/quote/application"
	scoreboardservice "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/application"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	scoreboardevents "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain/events"
	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ScoreboardHandlers implements the Handlers interface.
type ScoreboardHandlers struct {
	service scoreboardservice.Service
	quotes  quoteservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewScoreboardHandlers creates a new ScoreboardHandlers instance.
func NewScoreboardHandlers(
	service scoreboardservice.Service,
	quotes quoteservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ScoreboardHandlers{
		service: service,
		quotes:  quotes,
		logger:  logger,
		tracer:  tracer,
	}
}

// podium converts a summary into display lines.
func podium(top []scoreboarddomain.RankedScore) []scoreboardevents.PodiumEntry {
	entries := make([]scoreboardevents.PodiumEntry, 0, len(top))
	for _, r := range top {
		entries = append(entries, scoreboardevents.PodiumEntry{
			Title:    scoreboarddomain.RankTitle(r.Rank),
			MemberID: r.MemberID,
			Score:    r.Score,
			Rank:     r.Rank,
		})
	}
	return entries
}

// scoreboardUpdated builds the display refresh for channelID, or nothing if
// the channel has no scoreboard.
func (h *ScoreboardHandlers) scoreboardUpdated(ctx context.Context, channelID string) ([]handlerwrapper.Result, error) {
	summary, err := h.service.Summary(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.ScoreboardUpdatedV1,
		Payload: &scoreboardevents.ScoreboardUpdatedPayloadV1{
			ChannelID:        summary.ChannelID,
			DisplayMessageID: summary.DisplayMessageID,
			Podium:           podium(summary.Top),
		},
	}}, nil
}

// failure answers a command with a user-facing reason. Expected service
// failures become failure events; anything else is returned for redelivery.
func failure(topic, channelID, requestorID string, err error) ([]handlerwrapper.Result, error) {
	var reason string
	switch {
	case errors.Is(err, scoreboardservice.ErrScoreboardNotFound):
		reason = "There is no scoreboard in this channel."
	case errors.Is(err, scoreboardservice.ErrScoreboardExists):
		reason = "This channel already has a scoreboard."
	case errors.Is(err, scoreboardservice.ErrNoQuotes):
		reason = "There are no quotes in this channel yet."
	case errors.Is(err, scoreboardservice.ErrNoHistory):
		reason = "Channel history is not available."
	default:
		return nil, fmt.Errorf("%s: %w", topic, err)
	}
	return []handlerwrapper.Result{{
		Topic: topic,
		Payload: &scoreboardevents.FailurePayloadV1{
			ChannelID:   channelID,
			RequestorID: requestorID,
			Reason:      reason,
		},
	}}, nil
}
