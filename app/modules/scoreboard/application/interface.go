package scoreboardservice

import (
	"context"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
)

// Service owns the per-channel quote ledger.
type Service interface {
	// IncrementMemberScores adds each member's count to the channel ledger,
	// creating counters as needed.
	IncrementMemberScores(ctx context.Context, channelID string, freq scoreboarddomain.FrequencyMap) error

	// DecrementMemberScores subtracts each member's count, never below zero.
	// Members without a counter are skipped.
	DecrementMemberScores(ctx context.Context, channelID string, freq scoreboarddomain.FrequencyMap) error

	// RecordMessageCreated credits the quotees of a new message. changed
	// reports whether the ledger moved.
	RecordMessageCreated(ctx context.Context, msg platform.Message) (changed bool, err error)

	// RecordMessageEdited reconciles the ledger with the edited content.
	RecordMessageEdited(ctx context.Context, msg platform.Message) (changed bool, err error)

	// RecordMessageDeleted takes back what a deleted message credited.
	RecordMessageDeleted(ctx context.Context, channelID, messageID string) (changed bool, err error)

	// SetupScoreboard creates the channel scoreboard and backfills it from
	// the channel history. It returns the number of scored messages found.
	SetupScoreboard(ctx context.Context, channel platform.Channel, displayMessageID string) (int, error)

	// RemoveScoreboard deletes the scoreboard with everything it owns and
	// returns the id of its display message.
	RemoveScoreboard(ctx context.Context, channelID string) (string, error)

	// SetScoreboardMessage points the scoreboard at a new display message.
	SetScoreboardMessage(ctx context.Context, channelID, messageID string) error

	// GetRankedScore returns a member's score and competition rank.
	GetRankedScore(ctx context.Context, channelID, memberID string) (scoreboarddomain.RankedScore, error)

	// GetPagedLeaderboard materializes every leaderboard page at once.
	GetPagedLeaderboard(ctx context.Context, channelID string) ([]scoreboarddomain.Page, error)

	// TopMembers returns the best limit members with their ranks.
	TopMembers(ctx context.Context, channelID string, limit int) ([]scoreboarddomain.RankedScore, error)

	// Summary returns the display state of the channel, or nil when the
	// channel has no scoreboard.
	Summary(ctx context.Context, channelID string) (*scoreboarddomain.Summary, error)

	// RandomQuote picks a random attributed quote of the channel.
	RandomQuote(ctx context.Context, channel platform.Channel) (string, quotedomain.QuoteTuple, error)

	// CheckMessage lists the attributed quotes of one message without
	// touching the ledger.
	CheckMessage(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error)
}
