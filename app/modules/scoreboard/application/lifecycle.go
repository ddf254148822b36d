package scoreboardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// backfillConcurrency bounds the messages resolved in parallel during setup.
const backfillConcurrency = 8

// SetupScoreboard implements Service.
func (s *ScoreboardService) SetupScoreboard(ctx context.Context, channel platform.Channel, displayMessageID string) (int, error) {
	return withTelemetry(s, ctx, "SetupScoreboard", channel.ID, func(ctx context.Context) (int, error) {
		existing, err := s.repo.GetScoreboard(ctx, nil, channel.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to get scoreboard: %w", err)
		}
		if existing != nil {
			return 0, ErrScoreboardExists
		}
		if s.history == nil {
			return 0, ErrNoHistory
		}

		scored, err := s.backfill(ctx, channel)
		if err != nil {
			return 0, err
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (int, error) {
			return s.setupScoreboardLogic(ctx, db, channel, displayMessageID, scored)
		})
	})
}

func (s *ScoreboardService) setupScoreboardLogic(
	ctx context.Context,
	db bun.IDB,
	channel platform.Channel,
	displayMessageID string,
	scored []scoreboarddomain.ScoredMessage,
) (int, error) {
	if err := s.repo.CreateScoreboard(ctx, db, &scoreboarddb.Scoreboard{
		ChannelID: channel.ID,
		GuildID:   channel.GuildID,
		MessageID: displayMessageID,
	}); err != nil {
		return 0, fmt.Errorf("failed to create scoreboard: %w", err)
	}

	var all []string
	for _, m := range scored {
		all = append(all, m.Quotees...)
	}
	freq := scoreboarddomain.FrequencyScore(all)
	scores := make([]scoreboarddomain.MemberScore, 0, len(freq))
	for memberID, score := range freq {
		scores = append(scores, scoreboarddomain.MemberScore{MemberID: memberID, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].MemberID < scores[j].MemberID })

	if err := s.repo.BulkCreateMemberScores(ctx, db, channel.ID, scores); err != nil {
		return 0, fmt.Errorf("failed to create member scores: %w", err)
	}
	if err := s.repo.BulkCreateScoredMessages(ctx, db, scored); err != nil {
		return 0, fmt.Errorf("failed to create scored messages: %w", err)
	}

	s.logger.InfoContext(ctx, "Scoreboard created",
		slog.String("channel_id", channel.ID),
		slog.Int("scored_messages", len(scored)),
		slog.Int("members", len(scores)),
	)
	return len(scored), nil
}

// backfill walks the channel history and returns the attribution of every
// human message that credits at least one member, newest first.
func (s *ScoreboardService) backfill(ctx context.Context, channel platform.Channel) ([]scoreboarddomain.ScoredMessage, error) {
	messages, err := s.history.Messages(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel history: %w", err)
	}

	found := make([][]string, len(messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)
	for i, msg := range messages {
		if msg.AuthorIsBot || !quotedomain.HasQuote(msg.Content) {
			continue
		}
		if msg.ChannelID == "" {
			msg.ChannelID = channel.ID
		}
		if msg.GuildID == "" {
			msg.GuildID = channel.GuildID
		}
		g.Go(func() error {
			quotees, err := s.quotes.ResolveQuotees(gctx, msg)
			if err != nil {
				return fmt.Errorf("failed to resolve quotees of %s: %w", msg.ID, err)
			}
			found[i] = quotees
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scored := make([]scoreboarddomain.ScoredMessage, 0, len(messages))
	for i, quotees := range found {
		if len(quotees) == 0 {
			continue
		}
		scored = append(scored, scoreboarddomain.ScoredMessage{
			MessageID: messages[i].ID,
			ChannelID: channel.ID,
			Quotees:   quotees,
		})
	}
	return scored, nil
}

// RemoveScoreboard implements Service.
func (s *ScoreboardService) RemoveScoreboard(ctx context.Context, channelID string) (string, error) {
	return withTelemetry(s, ctx, "RemoveScoreboard", channelID, func(ctx context.Context) (string, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (string, error) {
			sb, err := s.requireScoreboard(ctx, db, channelID)
			if err != nil {
				return "", err
			}
			if err := s.repo.DeleteScoreboard(ctx, db, channelID); err != nil {
				if errors.Is(err, scoreboarddb.ErrNoRowsAffected) {
					return "", ErrScoreboardNotFound
				}
				return "", fmt.Errorf("failed to delete scoreboard: %w", err)
			}
			return sb.MessageID, nil
		})
	})
}

// SetScoreboardMessage implements Service.
func (s *ScoreboardService) SetScoreboardMessage(ctx context.Context, channelID, messageID string) error {
	_, err := withTelemetry(s, ctx, "SetScoreboardMessage", channelID, func(ctx context.Context) (struct{}, error) {
		err := s.repo.UpdateScoreboardMessage(ctx, nil, channelID, messageID)
		if errors.Is(err, scoreboarddb.ErrNoRowsAffected) {
			return struct{}{}, ErrScoreboardNotFound
		}
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to update scoreboard message: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}
