package scoreboardevents

import (
	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
)

// Inbound platform events. Create, edit and delete share one topic so that
// events for the same message are consumed in publish order.
const (
	MessageLifecycleV1 = "quotes.message.v1"
	ChannelDeletedV1   = "quotes.channel.deleted.v1"

	// ScoreboardDisplayMovedV1 is published by the display layer after it
	// reposts the pinned podium under a new message id.
	ScoreboardDisplayMovedV1 = "quotes.scoreboard.display.moved.v1"
)

// Command requests and their replies.
const (
	ScoreRequestedV1       = "quotes.score.requested.v1"
	ScoreRetrievedV1       = "quotes.score.retrieved.v1"
	ScoreRetrievalFailedV1 = "quotes.score.retrieval.failed.v1"

	LeaderboardRequestedV1       = "quotes.leaderboard.requested.v1"
	LeaderboardRetrievedV1       = "quotes.leaderboard.retrieved.v1"
	LeaderboardRetrievalFailedV1 = "quotes.leaderboard.retrieval.failed.v1"

	ScoreboardCreateRequestedV1 = "quotes.scoreboard.create.requested.v1"
	ScoreboardCreatedV1         = "quotes.scoreboard.created.v1"
	ScoreboardCreationFailedV1  = "quotes.scoreboard.creation.failed.v1"

	ScoreboardDeleteRequestedV1 = "quotes.scoreboard.delete.requested.v1"
	ScoreboardDeletedV1         = "quotes.scoreboard.deleted.v1"
	ScoreboardDeletionFailedV1  = "quotes.scoreboard.deletion.failed.v1"

	RandomQuoteRequestedV1       = "quotes.random.requested.v1"
	RandomQuoteRetrievedV1       = "quotes.random.retrieved.v1"
	RandomQuoteRetrievalFailedV1 = "quotes.random.retrieval.failed.v1"

	MessageCheckRequestedV1 = "quotes.message.check.requested.v1"
	MessageCheckedV1        = "quotes.message.checked.v1"
)

// ScoreboardUpdatedV1 tells the display layer to refresh the pinned podium.
const ScoreboardUpdatedV1 = "quotes.scoreboard.updated.v1"

// MessageEventType discriminates lifecycle events on MessageLifecycleV1.
type MessageEventType string

const (
	MessageCreated MessageEventType = "created"
	MessageEdited  MessageEventType = "edited"
	MessageDeleted MessageEventType = "deleted"
)

// MessageEventPayloadV1 carries one message lifecycle event. Deleted events
// only need Message.ID and Message.ChannelID.
type MessageEventPayloadV1 struct {
	Type    MessageEventType `json:"type"`
	Message platform.Message `json:"message"`
}

// ChannelDeletedPayloadV1 is published when the platform removes a channel.
type ChannelDeletedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id,omitempty"`
}

// ScoreboardDisplayMovedPayloadV1 points a scoreboard at its new display
// message.
type ScoreboardDisplayMovedPayloadV1 struct {
	ChannelID        string `json:"channel_id"`
	DisplayMessageID string `json:"display_message_id"`
}

// PodiumEntry is one line of the scoreboard display.
type PodiumEntry struct {
	Title    string `json:"title"`
	MemberID string `json:"member_id"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// ScoreboardUpdatedPayloadV1 is the refreshed podium of a channel.
type ScoreboardUpdatedPayloadV1 struct {
	ChannelID        string        `json:"channel_id"`
	DisplayMessageID string        `json:"display_message_id"`
	Podium           []PodiumEntry `json:"podium"`
}

// ScoreRequestedPayloadV1 asks for one member's score. Member is a mention,
// "me" or a display name.
type ScoreRequestedPayloadV1 struct {
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	RequestorID string `json:"requestor_id"`
	Member      string `json:"member"`
}

// ScoreRetrievedPayloadV1 answers ScoreRequestedPayloadV1.
type ScoreRetrievedPayloadV1 struct {
	ChannelID   string `json:"channel_id"`
	RequestorID string `json:"requestor_id"`
	MemberID    string `json:"member_id"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
	RankOrdinal string `json:"rank_ordinal"`
}

// LeaderboardRequestedPayloadV1 asks for every page of a channel leaderboard.
type LeaderboardRequestedPayloadV1 struct {
	ChannelID   string `json:"channel_id"`
	RequestorID string `json:"requestor_id"`
}

// LeaderboardRetrievedPayloadV1 holds all precomputed pages; the display
// layer flips between them without asking again.
type LeaderboardRetrievedPayloadV1 struct {
	ChannelID   string                  `json:"channel_id"`
	RequestorID string                  `json:"requestor_id"`
	Pages       []scoreboarddomain.Page `json:"pages"`
}

// ScoreboardCreateRequestedPayloadV1 asks to set up a scoreboard.
// DisplayMessageID is the message the display layer will keep updated.
type ScoreboardCreateRequestedPayloadV1 struct {
	ChannelID        string `json:"channel_id"`
	GuildID          string `json:"guild_id"`
	DisplayMessageID string `json:"display_message_id"`
}

// ScoreboardCreatedPayloadV1 answers a successful setup.
type ScoreboardCreatedPayloadV1 struct {
	ChannelID        string        `json:"channel_id"`
	DisplayMessageID string        `json:"display_message_id"`
	ScoredMessages   int           `json:"scored_messages"`
	Podium           []PodiumEntry `json:"podium"`
}

// ScoreboardDeleteRequestedPayloadV1 asks to tear down a scoreboard.
type ScoreboardDeleteRequestedPayloadV1 struct {
	ChannelID string `json:"channel_id"`
}

// ScoreboardDeletedPayloadV1 tells the display layer which message to remove.
type ScoreboardDeletedPayloadV1 struct {
	ChannelID        string `json:"channel_id"`
	DisplayMessageID string `json:"display_message_id"`
}

// RandomQuoteRequestedPayloadV1 asks for a random quote of a channel.
type RandomQuoteRequestedPayloadV1 struct {
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	RequestorID string `json:"requestor_id"`
}

// RandomQuoteRetrievedPayloadV1 answers RandomQuoteRequestedPayloadV1.
type RandomQuoteRetrievedPayloadV1 struct {
	ChannelID   string                 `json:"channel_id"`
	RequestorID string                 `json:"requestor_id"`
	MessageID   string                 `json:"message_id"`
	Quote       quotedomain.QuoteTuple `json:"quote"`
}

// MessageCheckRequestedPayloadV1 asks which quotes a single message yields.
type MessageCheckRequestedPayloadV1 struct {
	RequestorID string           `json:"requestor_id"`
	Message     platform.Message `json:"message"`
}

// MessageCheckedPayloadV1 answers MessageCheckRequestedPayloadV1.
type MessageCheckedPayloadV1 struct {
	RequestorID string                   `json:"requestor_id"`
	MessageID   string                   `json:"message_id"`
	Tuples      []quotedomain.QuoteTuple `json:"tuples"`
}

// FailurePayloadV1 is shared by every *.failed.v1 topic.
type FailurePayloadV1 struct {
	ChannelID   string `json:"channel_id"`
	RequestorID string `json:"requestor_id,omitempty"`
	Reason      string `json:"reason"`
}
