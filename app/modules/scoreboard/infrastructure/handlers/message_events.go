package scoreboardhandlers

import (
	"context"
	"errors"
	"log/slog"

	scoreboardservice "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/application"
	scoreboardevents "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain/events"
	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
	"go.opentelemetry.io/otel/attribute"
)

// HandleMessageEvent reconciles the ledger for a created, edited or deleted
// message and refreshes the display when the ledger moved.
func (h *ScoreboardHandlers) HandleMessageEvent(ctx context.Context, payload *scoreboardevents.MessageEventPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoreboardHandlers.HandleMessageEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.type", string(payload.Type)),
		attribute.String("message.id", payload.Message.ID),
	)

	msg := payload.Message
	if msg.ID == "" || msg.ChannelID == "" {
		h.logger.WarnContext(ctx, "Message event without ids dropped", slog.String("type", string(payload.Type)))
		return nil, nil
	}

	var (
		changed bool
		err     error
	)
	switch payload.Type {
	case scoreboardevents.MessageCreated:
		changed, err = h.service.RecordMessageCreated(ctx, msg)
	case scoreboardevents.MessageEdited:
		changed, err = h.service.RecordMessageEdited(ctx, msg)
	case scoreboardevents.MessageDeleted:
		changed, err = h.service.RecordMessageDeleted(ctx, msg.ChannelID, msg.ID)
	default:
		h.logger.WarnContext(ctx, "Unknown message event type",
			slog.String("type", string(payload.Type)),
			slog.String("message_id", msg.ID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	return h.scoreboardUpdated(ctx, msg.ChannelID)
}

// HandleChannelDeleted drops the scoreboard of a channel that no longer exists.
func (h *ScoreboardHandlers) HandleChannelDeleted(ctx context.Context, payload *scoreboardevents.ChannelDeletedPayloadV1) ([]handlerwrapper.Result, error) {
	_, err := h.service.RemoveScoreboard(ctx, payload.ChannelID)
	if errors.Is(err, scoreboardservice.ErrScoreboardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	h.logger.InfoContext(ctx, "Scoreboard removed with its channel", slog.String("channel_id", payload.ChannelID))
	return nil, nil
}

// HandleScoreboardDisplayMoved records the new display message of a
// scoreboard. Moves for channels without a scoreboard are ignored.
func (h *ScoreboardHandlers) HandleScoreboardDisplayMoved(ctx context.Context, payload *scoreboardevents.ScoreboardDisplayMovedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload.ChannelID == "" || payload.DisplayMessageID == "" {
		h.logger.WarnContext(ctx, "Display move without ids dropped")
		return nil, nil
	}
	err := h.service.SetScoreboardMessage(ctx, payload.ChannelID, payload.DisplayMessageID)
	if errors.Is(err, scoreboardservice.ErrScoreboardNotFound) {
		return nil, nil
	}
	return nil, err
}
