package migrations

import (
	"context"
	"fmt"

	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Adding scoreboard indexes...")
			if _, err := db.NewCreateIndex().
				Model((*scoreboarddb.MemberScore)(nil)).
				Index("member_scores_channel_score_idx").
				Column("channel_id", "score").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create member_scores_channel_score_idx: %w", err)
			}
			if _, err := db.NewCreateIndex().
				Model((*scoreboarddb.ScoredMessage)(nil)).
				Index("scored_messages_channel_idx").
				Column("channel_id").
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create scored_messages_channel_idx: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping scoreboard indexes...")
			for _, idx := range []string{"member_scores_channel_score_idx", "scored_messages_channel_idx"} {
				if _, err := db.NewDropIndex().Index(idx).IfExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to drop %s: %w", idx, err)
				}
			}
			return nil
		},
	)
}
