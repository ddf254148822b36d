package scoreboarddb

import (
	"context"

	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for scoreboard persistence.
// Every method takes the bun.IDB to run on; nil means the repository's own
// connection, a bun.Tx joins the caller's transaction.
//
// Error semantics:
//   - Lookups return (nil, nil) when the record does not exist
//   - ErrNoRowsAffected: UPDATE/DELETE matched no rows
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// GetScoreboard retrieves the scoreboard of a channel.
	GetScoreboard(ctx context.Context, db bun.IDB, channelID string) (*Scoreboard, error)

	// CreateScoreboard inserts a scoreboard. Fails if the channel already has one.
	CreateScoreboard(ctx context.Context, db bun.IDB, scoreboard *Scoreboard) error

	// UpdateScoreboardMessage points the scoreboard at a new display message.
	// Returns ErrNoRowsAffected if the channel has no scoreboard.
	UpdateScoreboardMessage(ctx context.Context, db bun.IDB, channelID, messageID string) error

	// DeleteScoreboard removes a scoreboard with all its member scores and
	// scored messages. Run it in a transaction to make the cascade atomic.
	// Returns ErrNoRowsAffected if the channel has no scoreboard.
	DeleteScoreboard(ctx context.Context, db bun.IDB, channelID string) error

	// GetMemberScore retrieves one member's counter.
	GetMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string) (*scoreboarddomain.MemberScore, error)

	// IncrementMemberScore adds amount to a member's counter, creating the
	// row at amount when absent. Atomic per row.
	IncrementMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error

	// DecrementMemberScore subtracts min(amount, score) from a member's
	// counter. A missing row is left missing. Atomic per row.
	DecrementMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error

	// BulkCreateMemberScores inserts fresh counters for a new scoreboard.
	BulkCreateMemberScores(ctx context.Context, db bun.IDB, channelID string, scores []scoreboarddomain.MemberScore) error

	// CountMembersAbove returns how many members of the channel have a score
	// strictly greater than score.
	CountMembersAbove(ctx context.Context, db bun.IDB, channelID string, score int) (int, error)

	// ListMemberScores returns every counter of the channel ordered by score
	// descending, then member id.
	ListMemberScores(ctx context.Context, db bun.IDB, channelID string) ([]scoreboarddomain.MemberScore, error)

	// TopMemberScores returns the first limit rows of ListMemberScores.
	TopMemberScores(ctx context.Context, db bun.IDB, channelID string, limit int) ([]scoreboarddomain.MemberScore, error)

	// GetScoredMessage retrieves the stored attribution of a message.
	GetScoredMessage(ctx context.Context, db bun.IDB, messageID string) (*scoreboarddomain.ScoredMessage, error)

	// CreateScoredMessage stores the attribution of a message.
	CreateScoredMessage(ctx context.Context, db bun.IDB, msg *scoreboarddomain.ScoredMessage) error

	// UpdateScoredMessage replaces the quotee list of a stored message.
	// Returns ErrNoRowsAffected if the message is not stored.
	UpdateScoredMessage(ctx context.Context, db bun.IDB, msg *scoreboarddomain.ScoredMessage) error

	// DeleteScoredMessage removes a stored attribution. Idempotent.
	DeleteScoredMessage(ctx context.Context, db bun.IDB, messageID string) error

	// BulkCreateScoredMessages stores the attributions found while backfilling.
	BulkCreateScoredMessages(ctx context.Context, db bun.IDB, msgs []scoreboarddomain.ScoredMessage) error

	// RandomScoredMessage picks one stored attribution of the channel.
	RandomScoredMessage(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddomain.ScoredMessage, error)
}
