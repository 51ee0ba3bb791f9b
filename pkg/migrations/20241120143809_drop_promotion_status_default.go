package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

// SQLite can't alter column constraints in place, so this migration rebuilds
// books. It also makes slug NOT NULL now that every row has been backfilled.
func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		return rebuildBooksTable(ctx, db, booksTableSQL(""))
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return rebuildBooksTable(ctx, db, booksTableSQL("DEFAULT 'None'"))
	}

	Migrations.MustRegister(up, down)
}

func booksTableSQL(promotionDefault string) string {
	return `
		CREATE TABLE books_new (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			book TEXT NOT NULL,
			title TEXT NOT NULL,
			author TEXT,
			"condition" TEXT NOT NULL CHECK ("condition" IN (
				'https://schema.org/NewCondition',
				'https://schema.org/RefurbishedCondition',
				'https://schema.org/DamagedCondition',
				'https://schema.org/UsedCondition'
			)),
			promotion_status TEXT NOT NULL ` + promotionDefault + ` CHECK (promotion_status IN ('None', 'Basic', 'Pro')),
			is_promoted BOOLEAN NOT NULL DEFAULT FALSE,
			slug TEXT NOT NULL
		)
`
}
