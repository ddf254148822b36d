package scoreboarddb

import (
	"strings"
	"time"

	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/uptrace/bun"
)

// quoteeSeparator joins quotee ids in scored_messages.quotees. Member ids
// are numeric snowflakes and never contain it.
const quoteeSeparator = ";"

// Scoreboard is the aggregation root of a channel's ledger.
type Scoreboard struct {
	bun.BaseModel `bun:"table:scoreboards,alias:sb"`

	ChannelID string    `bun:"channel_id,pk,type:varchar(20)"`
	GuildID   string    `bun:"guild_id,notnull,default:'',type:varchar(20)"`
	MessageID string    `bun:"message_id,notnull,default:'',type:varchar(20)"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// MemberScore is one (channel, member) counter. Score never drops below zero.
type MemberScore struct {
	bun.BaseModel `bun:"table:member_scores,alias:ms"`

	ChannelID string    `bun:"channel_id,pk,type:varchar(20)"`
	MemberID  string    `bun:"member_id,pk,type:varchar(20)"`
	Score     int       `bun:"score,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// ScoredMessage stores the attribution of one message. Quotees holds the
// ordered ids joined with quoteeSeparator.
type ScoredMessage struct {
	bun.BaseModel `bun:"table:scored_messages,alias:smsg"`

	MessageID string    `bun:"message_id,pk,type:varchar(20)"`
	ChannelID string    `bun:"channel_id,notnull,type:varchar(20)"`
	Quotees   string    `bun:"quotees,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func joinQuotees(ids []string) string {
	return strings.Join(ids, quoteeSeparator)
}

func splitQuotees(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, quoteeSeparator)
}

// toDomainMessage converts the stored row to the domain value.
func toDomainMessage(m *ScoredMessage) *scoreboarddomain.ScoredMessage {
	if m == nil {
		return nil
	}
	return &scoreboarddomain.ScoredMessage{
		MessageID: m.MessageID,
		ChannelID: m.ChannelID,
		Quotees:   splitQuotees(m.Quotees),
	}
}

// toMessageRow converts the domain value to its stored row.
func toMessageRow(m *scoreboarddomain.ScoredMessage) *ScoredMessage {
	return &ScoredMessage{
		MessageID: m.MessageID,
		ChannelID: m.ChannelID,
		Quotees:   joinQuotees(m.Quotees),
	}
}

func toDomainScores(rows []MemberScore) []scoreboarddomain.MemberScore {
	out := make([]scoreboarddomain.MemberScore, len(rows))
	for i, r := range rows {
		out[i] = scoreboarddomain.MemberScore{MemberID: r.MemberID, Score: r.Score}
	}
	return out
}
