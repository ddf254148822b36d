package scoreboardhandlers

import (
	"context"
	"log/slog"

	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	scoreboardevents "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain/events"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
)

// HandleScoreRequest answers with one member's score and rank. An empty
// member means the requestor.
func (h *ScoreboardHandlers) HandleScoreRequest(ctx context.Context, payload *scoreboardevents.ScoreRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	memberID := payload.RequestorID
	if payload.Member != "" {
		id, ok := h.quotes.ResolveGuildMember(ctx, payload.GuildID, payload.Member, payload.RequestorID)
		if !ok {
			h.logger.InfoContext(ctx, "Score requested for unknown member", slog.String("member", payload.Member))
			return []handlerwrapper.Result{{
				Topic: scoreboardevents.ScoreRetrievalFailedV1,
				Payload: &scoreboardevents.FailurePayloadV1{
					ChannelID:   payload.ChannelID,
					RequestorID: payload.RequestorID,
					Reason:      "Could not find exactly one member named " + payload.Member + ".",
				},
			}}, nil
		}
		memberID = id
	}

	ranked, err := h.service.GetRankedScore(ctx, payload.ChannelID, memberID)
	if err != nil {
		return failure(scoreboardevents.ScoreRetrievalFailedV1, payload.ChannelID, payload.RequestorID, err)
	}

	return []handlerwrapper.Result{{
		Topic: scoreboardevents.ScoreRetrievedV1,
		Payload: &scoreboardevents.ScoreRetrievedPayloadV1{
			ChannelID:   payload.ChannelID,
			RequestorID: payload.RequestorID,
			MemberID:    ranked.MemberID,
			Score:       ranked.Score,
			Rank:        ranked.Rank,
			RankOrdinal: scoreboarddomain.OrdinalSuffix(ranked.Rank),
		},
	}}, nil
}

// HandleLeaderboardRequest answers with every page of the leaderboard.
func (h *ScoreboardHandlers) HandleLeaderboardRequest(ctx context.Context, payload *scoreboardevents.LeaderboardRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	pages, err := h.service.GetPagedLeaderboard(ctx, payload.ChannelID)
	if err != nil {
		return failure(scoreboardevents.LeaderboardRetrievalFailedV1, payload.ChannelID, payload.RequestorID, err)
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.LeaderboardRetrievedV1,
		Payload: &scoreboardevents.LeaderboardRetrievedPayloadV1{
			ChannelID:   payload.ChannelID,
			RequestorID: payload.RequestorID,
			Pages:       pages,
		},
	}}, nil
}

// HandleScoreboardCreateRequest sets up a scoreboard from the channel history.
func (h *ScoreboardHandlers) HandleScoreboardCreateRequest(ctx context.Context, payload *scoreboardevents.ScoreboardCreateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	channel := platform.Channel{ID: payload.ChannelID, GuildID: payload.GuildID}
	scored, err := h.service.SetupScoreboard(ctx, channel, payload.DisplayMessageID)
	if err != nil {
		return failure(scoreboardevents.ScoreboardCreationFailedV1, payload.ChannelID, "", err)
	}

	top, err := h.service.TopMembers(ctx, payload.ChannelID, scoreboarddomain.TopMembersLimit)
	if err != nil {
		return nil, err
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.ScoreboardCreatedV1,
		Payload: &scoreboardevents.ScoreboardCreatedPayloadV1{
			ChannelID:        payload.ChannelID,
			DisplayMessageID: payload.DisplayMessageID,
			ScoredMessages:   scored,
			Podium:           podium(top),
		},
	}}, nil
}

// HandleScoreboardDeleteRequest tears down a scoreboard on request.
func (h *ScoreboardHandlers) HandleScoreboardDeleteRequest(ctx context.Context, payload *scoreboardevents.ScoreboardDeleteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	displayID, err := h.service.RemoveScoreboard(ctx, payload.ChannelID)
	if err != nil {
		return failure(scoreboardevents.ScoreboardDeletionFailedV1, payload.ChannelID, "", err)
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.ScoreboardDeletedV1,
		Payload: &scoreboardevents.ScoreboardDeletedPayloadV1{
			ChannelID:        payload.ChannelID,
			DisplayMessageID: displayID,
		},
	}}, nil
}

// HandleRandomQuoteRequest picks a quote for the guessing game.
func (h *ScoreboardHandlers) HandleRandomQuoteRequest(ctx context.Context, payload *scoreboardevents.RandomQuoteRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	channel := platform.Channel{ID: payload.ChannelID, GuildID: payload.GuildID}
	messageID, tuple, err := h.service.RandomQuote(ctx, channel)
	if err != nil {
		return failure(scoreboardevents.RandomQuoteRetrievalFailedV1, payload.ChannelID, payload.RequestorID, err)
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.RandomQuoteRetrievedV1,
		Payload: &scoreboardevents.RandomQuoteRetrievedPayloadV1{
			ChannelID:   payload.ChannelID,
			RequestorID: payload.RequestorID,
			MessageID:   messageID,
			Quote:       tuple,
		},
	}}, nil
}

// HandleMessageCheckRequest reports the quotes one message yields.
func (h *ScoreboardHandlers) HandleMessageCheckRequest(ctx context.Context, payload *scoreboardevents.MessageCheckRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	tuples, err := h.service.CheckMessage(ctx, payload.Message)
	if err != nil {
		return nil, err
	}
	return []handlerwrapper.Result{{
		Topic: scoreboardevents.MessageCheckedV1,
		Payload: &scoreboardevents.MessageCheckedPayloadV1{
			RequestorID: payload.RequestorID,
			MessageID:   payload.Message.ID,
			Tuples:      tuples,
		},
	}}, nil
}
