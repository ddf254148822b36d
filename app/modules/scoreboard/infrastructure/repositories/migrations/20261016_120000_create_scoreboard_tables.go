package migrations

import (
	"context"
	"fmt"

	scoreboarddb "github.com/Black-And-White-Club/quote-bot/app/modules/scoreboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

var scoreboardModels = []any{
	(*scoreboarddb.Scoreboard)(nil),
	(*scoreboarddb.MemberScore)(nil),
	(*scoreboarddb.ScoredMessage)(nil),
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating scoreboard tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for _, model := range scoreboardModels {
					if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("failed to create %T table: %w", model, err)
					}
				}
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping scoreboard tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for i := len(scoreboardModels) - 1; i >= 0; i-- {
					if _, err := tx.NewDropTable().Model(scoreboardModels[i]).IfExists().Exec(ctx); err != nil {
						return fmt.Errorf("failed to drop %T table: %w", scoreboardModels[i], err)
					}
				}
				return nil
			})
		},
	)
}
