package scoreboardservice

import (
	"context"
	"fmt"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/uptrace/bun"
)

// randomQuoteAttempts bounds how many stored messages RandomQuote tries
// before giving up on a channel whose quotes were deleted upstream.
const randomQuoteAttempts = 3

// GetRankedScore implements Service. A member without a counter has score 0
// and ranks behind everybody who was quoted.
func (s *ScoreboardService) GetRankedScore(ctx context.Context, channelID, memberID string) (scoreboarddomain.RankedScore, error) {
	return withTelemetry(s, ctx, "GetRankedScore", memberID, func(ctx context.Context) (scoreboarddomain.RankedScore, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (scoreboarddomain.RankedScore, error) {
			if _, err := s.requireScoreboard(ctx, db, channelID); err != nil {
				return scoreboarddomain.RankedScore{}, err
			}

			ranked := scoreboarddomain.RankedScore{MemberID: memberID}
			row, err := s.repo.GetMemberScore(ctx, db, channelID, memberID)
			if err != nil {
				return scoreboarddomain.RankedScore{}, fmt.Errorf("failed to get member score: %w", err)
			}
			if row != nil {
				ranked.Score = row.Score
			}

			above, err := s.repo.CountMembersAbove(ctx, db, channelID, ranked.Score)
			if err != nil {
				return scoreboarddomain.RankedScore{}, fmt.Errorf("failed to count members above: %w", err)
			}
			ranked.Rank = above + 1
			return ranked, nil
		})
	})
}

// GetPagedLeaderboard implements Service.
func (s *ScoreboardService) GetPagedLeaderboard(ctx context.Context, channelID string) ([]scoreboarddomain.Page, error) {
	return withTelemetry(s, ctx, "GetPagedLeaderboard", channelID, func(ctx context.Context) ([]scoreboarddomain.Page, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]scoreboarddomain.Page, error) {
			if _, err := s.requireScoreboard(ctx, db, channelID); err != nil {
				return nil, err
			}
			scores, err := s.repo.ListMemberScores(ctx, db, channelID)
			if err != nil {
				return nil, fmt.Errorf("failed to list member scores: %w", err)
			}
			return scoreboarddomain.Paginate(scoreboarddomain.GroupByRank(scores), s.pageGroups), nil
		})
	})
}

// TopMembers implements Service.
func (s *ScoreboardService) TopMembers(ctx context.Context, channelID string, limit int) ([]scoreboarddomain.RankedScore, error) {
	return withTelemetry(s, ctx, "TopMembers", channelID, func(ctx context.Context) ([]scoreboarddomain.RankedScore, error) {
		return s.topMembers(ctx, nil, channelID, limit)
	})
}

// topMembers ranks the first limit rows. Rows come sorted by score, so the
// competition rank of each is fully determined by the rows before it.
func (s *ScoreboardService) topMembers(ctx context.Context, db bun.IDB, channelID string, limit int) ([]scoreboarddomain.RankedScore, error) {
	rows, err := s.repo.TopMemberScores(ctx, db, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top member scores: %w", err)
	}

	top := make([]scoreboarddomain.RankedScore, 0, len(rows))
	for _, g := range scoreboarddomain.GroupByRank(rows) {
		for _, memberID := range g.Members {
			top = append(top, scoreboarddomain.RankedScore{MemberID: memberID, Score: g.Score, Rank: g.Rank})
		}
	}
	return top, nil
}

// Summary implements Service.
func (s *ScoreboardService) Summary(ctx context.Context, channelID string) (*scoreboarddomain.Summary, error) {
	return withTelemetry(s, ctx, "Summary", channelID, func(ctx context.Context) (*scoreboarddomain.Summary, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*scoreboarddomain.Summary, error) {
			sb, err := s.repo.GetScoreboard(ctx, db, channelID)
			if err != nil {
				return nil, fmt.Errorf("failed to get scoreboard: %w", err)
			}
			if sb == nil {
				return nil, nil
			}
			top, err := s.topMembers(ctx, db, channelID, scoreboarddomain.TopMembersLimit)
			if err != nil {
				return nil, err
			}
			return &scoreboarddomain.Summary{
				ChannelID:        channelID,
				DisplayMessageID: sb.MessageID,
				Top:              top,
			}, nil
		})
	})
}

// RandomQuote implements Service. The stored attribution only names the
// quotees, so the message is fetched again to recover the quote text.
func (s *ScoreboardService) RandomQuote(ctx context.Context, channel platform.Channel) (string, quotedomain.QuoteTuple, error) {
	type pick struct {
		messageID string
		tuple     quotedomain.QuoteTuple
	}

	result, err := withTelemetry(s, ctx, "RandomQuote", channel.ID, func(ctx context.Context) (pick, error) {
		if _, err := s.requireScoreboard(ctx, nil, channel.ID); err != nil {
			return pick{}, err
		}
		if s.history == nil {
			return pick{}, ErrNoHistory
		}

		for range randomQuoteAttempts {
			stored, err := s.repo.RandomScoredMessage(ctx, nil, channel.ID)
			if err != nil {
				return pick{}, fmt.Errorf("failed to pick scored message: %w", err)
			}
			if stored == nil {
				return pick{}, ErrNoQuotes
			}

			msg, err := s.history.Message(ctx, channel, stored.MessageID)
			if err != nil {
				return pick{}, fmt.Errorf("failed to fetch message %s: %w", stored.MessageID, err)
			}
			if msg == nil {
				continue
			}

			tuples, err := s.quotes.ResolveQuoteTuples(ctx, *msg)
			if err != nil {
				return pick{}, fmt.Errorf("failed to resolve quotes: %w", err)
			}
			if len(tuples) == 0 {
				continue
			}
			return pick{messageID: stored.MessageID, tuple: tuples[s.pick(len(tuples))]}, nil
		}
		return pick{}, ErrNoQuotes
	})
	return result.messageID, result.tuple, err
}

// CheckMessage implements Service.
func (s *ScoreboardService) CheckMessage(ctx context.Context, msg platform.Message) ([]quotedomain.QuoteTuple, error) {
	return withTelemetry(s, ctx, "CheckMessage", msg.ID, func(ctx context.Context) ([]quotedomain.QuoteTuple, error) {
		return s.quotes.ResolveQuoteTuples(ctx, msg)
	})
}
