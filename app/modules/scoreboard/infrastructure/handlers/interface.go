package scoreboardhandlers

import (
	"context"

	scoreboardevents "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain/events"
	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
)

// Handlers defines the contract for scoreboard event handlers.
type Handlers interface {
	HandleMessageEvent(ctx context.Context, payload *scoreboardevents.MessageEventPayloadV1) ([]handlerwrapper.Result, error)
	HandleChannelDeleted(ctx context.Context, payload *scoreboardevents.ChannelDeletedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreboardDisplayMoved(ctx context.Context, payload *scoreboardevents.ScoreboardDisplayMovedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreRequest(ctx context.Context, payload *scoreboardevents.ScoreRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleLeaderboardRequest(ctx context.Context, payload *scoreboardevents.LeaderboardRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreboardCreateRequest(ctx context.Context, payload *scoreboardevents.ScoreboardCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreboardDeleteRequest(ctx context.Context, payload *scoreboardevents.ScoreboardDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRandomQuoteRequest(ctx context.Context, payload *scoreboardevents.RandomQuoteRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleMessageCheckRequest(ctx context.Context, payload *scoreboardevents.MessageCheckRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
