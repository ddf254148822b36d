package scoreboardservice

import (
	"context"
	"fmt"
	"log/slog"

	quotedomain "github.com/Black-And-White-Club/quote-bot/app/modules/quote/domain"
	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/Black-And-White-Club/quote-bot/app/platform"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// IncrementMemberScores implements Service.
func (s *ScoreboardService) IncrementMemberScores(ctx context.Context, channelID string, freq scoreboarddomain.FrequencyMap) error {
	_, err := withTelemetry(s, ctx, "IncrementMemberScores", channelID, func(ctx context.Context) (struct{}, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.applyFrequency(ctx, db, channelID, freq, true)
		})
	})
	return err
}

// DecrementMemberScores implements Service.
func (s *ScoreboardService) DecrementMemberScores(ctx context.Context, channelID string, freq scoreboarddomain.FrequencyMap) error {
	_, err := withTelemetry(s, ctx, "DecrementMemberScores", channelID, func(ctx context.Context) (struct{}, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.applyFrequency(ctx, db, channelID, freq, false)
		})
	})
	return err
}

// applyFrequency adjusts one counter per member concurrently. Each counter
// update is a single atomic statement, so members never race each other.
func (s *ScoreboardService) applyFrequency(ctx context.Context, db bun.IDB, channelID string, freq scoreboarddomain.FrequencyMap, increment bool) error {
	direction := "decrement"
	if increment {
		direction = "increment"
	}

	g, gctx := errgroup.WithContext(ctx)
	for memberID, amount := range freq {
		if amount <= 0 {
			continue
		}
		g.Go(func() error {
			var err error
			if increment {
				err = s.repo.IncrementMemberScore(gctx, db, channelID, memberID, amount)
			} else {
				err = s.repo.DecrementMemberScore(gctx, db, channelID, memberID, amount)
			}
			if err != nil {
				return fmt.Errorf("failed to %s score of %s: %w", direction, memberID, err)
			}
			if s.metrics != nil {
				s.metrics.RecordLedgerAdjustment(gctx, direction, amount)
			}
			return nil
		})
	}
	return g.Wait()
}

// RecordMessageCreated implements Service. A create for a message that is
// already stored is reconciled like an edit, so redelivery is harmless.
func (s *ScoreboardService) RecordMessageCreated(ctx context.Context, msg platform.Message) (bool, error) {
	return withTelemetry(s, ctx, "RecordMessageCreated", msg.ID, func(ctx context.Context) (bool, error) {
		if msg.AuthorIsBot || !quotedomain.HasQuote(msg.Content) {
			return false, nil
		}
		return s.recordMessage(ctx, msg)
	})
}

// RecordMessageEdited implements Service.
func (s *ScoreboardService) RecordMessageEdited(ctx context.Context, msg platform.Message) (bool, error) {
	return withTelemetry(s, ctx, "RecordMessageEdited", msg.ID, func(ctx context.Context) (bool, error) {
		if msg.AuthorIsBot {
			return false, nil
		}
		return s.recordMessage(ctx, msg)
	})
}

// RecordMessageDeleted implements Service.
func (s *ScoreboardService) RecordMessageDeleted(ctx context.Context, channelID, messageID string) (bool, error) {
	return withTelemetry(s, ctx, "RecordMessageDeleted", messageID, func(ctx context.Context) (bool, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (bool, error) {
			return s.reconcile(ctx, db, channelID, messageID, nil)
		})
	})
}

// recordMessage resolves the quotees of msg outside the transaction, since
// directory lookups can be slow, then reconciles the ledger inside one.
func (s *ScoreboardService) recordMessage(ctx context.Context, msg platform.Message) (bool, error) {
	sb, err := s.repo.GetScoreboard(ctx, nil, msg.ChannelID)
	if err != nil {
		return false, fmt.Errorf("failed to get scoreboard: %w", err)
	}
	if sb == nil {
		return false, nil
	}

	quotees, err := s.quotes.ResolveQuotees(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("failed to resolve quotees: %w", err)
	}

	return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (bool, error) {
		return s.reconcile(ctx, db, msg.ChannelID, msg.ID, quotees)
	})
}

// reconcile moves the ledger from the stored attribution of messageID to
// quotees. Nothing is written when both describe the same multiset.
func (s *ScoreboardService) reconcile(ctx context.Context, db bun.IDB, channelID, messageID string, quotees []string) (bool, error) {
	prev, err := s.repo.GetScoredMessage(ctx, db, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to get scored message: %w", err)
	}

	var prevQuotees []string
	if prev != nil {
		prevQuotees = prev.Quotees
		channelID = prev.ChannelID
	}

	oldFreq := scoreboarddomain.FrequencyScore(prevQuotees)
	newFreq := scoreboarddomain.FrequencyScore(quotees)
	if oldFreq.Equal(newFreq) {
		return false, nil
	}

	if err := s.applyFrequency(ctx, db, channelID, oldFreq, false); err != nil {
		return false, err
	}
	if err := s.applyFrequency(ctx, db, channelID, newFreq, true); err != nil {
		return false, err
	}

	record := &scoreboarddomain.ScoredMessage{
		MessageID: messageID,
		ChannelID: channelID,
		Quotees:   quotees,
	}
	switch {
	case len(quotees) == 0:
		err = s.repo.DeleteScoredMessage(ctx, db, messageID)
	case prev == nil:
		err = s.repo.CreateScoredMessage(ctx, db, record)
	default:
		err = s.repo.UpdateScoredMessage(ctx, db, record)
	}
	if err != nil {
		return false, fmt.Errorf("failed to store attribution: %w", err)
	}

	s.logger.InfoContext(ctx, "Ledger reconciled",
		slog.String("channel_id", channelID),
		slog.String("message_id", messageID),
		slog.Int("removed", oldFreq.Total()),
		slog.Int("added", newFreq.Total()),
	)
	return true, nil
}
