package scoreboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	scoreboarddomain "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM. The queries stay
// within the SQL subset shared by PostgreSQL and SQLite.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scoreboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRowsAffected)
	}
	return nil
}

// --- Scoreboards ---

func (r *Impl) GetScoreboard(ctx context.Context, db bun.IDB, channelID string) (*Scoreboard, error) {
	db = r.resolveDB(db)
	scoreboard := new(Scoreboard)
	err := db.NewSelect().
		Model(scoreboard).
		Where("channel_id = ?", channelID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scoreboarddb.GetScoreboard: %w", err)
	}
	return scoreboard, nil
}

func (r *Impl) CreateScoreboard(ctx context.Context, db bun.IDB, scoreboard *Scoreboard) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	scoreboard.CreatedAt = now
	scoreboard.UpdatedAt = now

	if _, err := db.NewInsert().Model(scoreboard).Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.CreateScoreboard: %w", err)
	}
	return nil
}

func (r *Impl) UpdateScoreboardMessage(ctx context.Context, db bun.IDB, channelID, messageID string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Scoreboard)(nil)).
		Set("message_id = ?", messageID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("channel_id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.UpdateScoreboardMessage: %w", err)
	}
	return checkAffected(res, "scoreboarddb.UpdateScoreboardMessage")
}

func (r *Impl) DeleteScoreboard(ctx context.Context, db bun.IDB, channelID string) error {
	db = r.resolveDB(db)

	if _, err := db.NewDelete().
		Model((*ScoredMessage)(nil)).
		Where("channel_id = ?", channelID).
		Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.DeleteScoreboard: scored messages: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*MemberScore)(nil)).
		Where("channel_id = ?", channelID).
		Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.DeleteScoreboard: member scores: %w", err)
	}

	res, err := db.NewDelete().
		Model((*Scoreboard)(nil)).
		Where("channel_id = ?", channelID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.DeleteScoreboard: %w", err)
	}
	return checkAffected(res, "scoreboarddb.DeleteScoreboard")
}

// --- Member scores ---

func (r *Impl) GetMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string) (*scoreboarddomain.MemberScore, error) {
	db = r.resolveDB(db)
	row := new(MemberScore)
	err := db.NewSelect().
		Model(row).
		Where("channel_id = ?", channelID).
		Where("member_id = ?", memberID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scoreboarddb.GetMemberScore: %w", err)
	}
	return &scoreboarddomain.MemberScore{MemberID: row.MemberID, Score: row.Score}, nil
}

func (r *Impl) IncrementMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("scoreboarddb.IncrementMemberScore: %w", ErrInvalidAmount)
	}
	db = r.resolveDB(db)
	row := &MemberScore{
		ChannelID: channelID,
		MemberID:  memberID,
		Score:     amount,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (channel_id, member_id) DO UPDATE").
		Set("score = ms.score + EXCLUDED.score").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.IncrementMemberScore: %w", err)
	}
	return nil
}

func (r *Impl) DecrementMemberScore(ctx context.Context, db bun.IDB, channelID, memberID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("scoreboarddb.DecrementMemberScore: %w", ErrInvalidAmount)
	}
	db = r.resolveDB(db)

	_, err := db.NewUpdate().
		Model((*MemberScore)(nil)).
		Set("score = CASE WHEN score > ? THEN score - ? ELSE 0 END", amount, amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("channel_id = ?", channelID).
		Where("member_id = ?", memberID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.DecrementMemberScore: %w", err)
	}
	return nil
}

func (r *Impl) BulkCreateMemberScores(ctx context.Context, db bun.IDB, channelID string, scores []scoreboarddomain.MemberScore) error {
	if len(scores) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	rows := make([]MemberScore, len(scores))
	for i, s := range scores {
		rows[i] = MemberScore{
			ChannelID: channelID,
			MemberID:  s.MemberID,
			Score:     s.Score,
			UpdatedAt: now,
		}
	}

	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.BulkCreateMemberScores: %w", err)
	}
	return nil
}

func (r *Impl) CountMembersAbove(ctx context.Context, db bun.IDB, channelID string, score int) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*MemberScore)(nil)).
		Where("channel_id = ?", channelID).
		Where("score > ?", score).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("scoreboarddb.CountMembersAbove: %w", err)
	}
	return count, nil
}

func (r *Impl) ListMemberScores(ctx context.Context, db bun.IDB, channelID string) ([]scoreboarddomain.MemberScore, error) {
	return r.listMemberScores(ctx, db, channelID, 0, "scoreboarddb.ListMemberScores")
}

func (r *Impl) TopMemberScores(ctx context.Context, db bun.IDB, channelID string, limit int) ([]scoreboarddomain.MemberScore, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.listMemberScores(ctx, db, channelID, limit, "scoreboarddb.TopMemberScores")
}

func (r *Impl) listMemberScores(ctx context.Context, db bun.IDB, channelID string, limit int, op string) ([]scoreboarddomain.MemberScore, error) {
	db = r.resolveDB(db)
	var rows []MemberScore
	q := db.NewSelect().
		Model(&rows).
		Where("channel_id = ?", channelID).
		Order("score DESC", "member_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toDomainScores(rows), nil
}

// --- Scored messages ---

func (r *Impl) GetScoredMessage(ctx context.Context, db bun.IDB, messageID string) (*scoreboarddomain.ScoredMessage, error) {
	db = r.resolveDB(db)
	row := new(ScoredMessage)
	err := db.NewSelect().
		Model(row).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scoreboarddb.GetScoredMessage: %w", err)
	}
	return toDomainMessage(row), nil
}

func (r *Impl) CreateScoredMessage(ctx context.Context, db bun.IDB, msg *scoreboarddomain.ScoredMessage) error {
	db = r.resolveDB(db)
	row := toMessageRow(msg)
	row.UpdatedAt = time.Now().UTC()

	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.CreateScoredMessage: %w", err)
	}
	return nil
}

func (r *Impl) UpdateScoredMessage(ctx context.Context, db bun.IDB, msg *scoreboarddomain.ScoredMessage) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*ScoredMessage)(nil)).
		Set("quotees = ?", joinQuotees(msg.Quotees)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("message_id = ?", msg.MessageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.UpdateScoredMessage: %w", err)
	}
	return checkAffected(res, "scoreboarddb.UpdateScoredMessage")
}

func (r *Impl) DeleteScoredMessage(ctx context.Context, db bun.IDB, messageID string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*ScoredMessage)(nil)).
		Where("message_id = ?", messageID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoreboarddb.DeleteScoredMessage: %w", err)
	}
	return nil
}

func (r *Impl) BulkCreateScoredMessages(ctx context.Context, db bun.IDB, msgs []scoreboarddomain.ScoredMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	rows := make([]ScoredMessage, len(msgs))
	for i := range msgs {
		rows[i] = *toMessageRow(&msgs[i])
		rows[i].UpdatedAt = now
	}

	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("scoreboarddb.BulkCreateScoredMessages: %w", err)
	}
	return nil
}

func (r *Impl) RandomScoredMessage(ctx context.Context, db bun.IDB, channelID string) (*scoreboarddomain.ScoredMessage, error) {
	db = r.resolveDB(db)
	row := new(ScoredMessage)
	err := db.NewSelect().
		Model(row).
		Where("channel_id = ?", channelID).
		OrderExpr("random()").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scoreboarddb.RandomScoredMessage: %w", err)
	}
	return toDomainMessage(row), nil
}
