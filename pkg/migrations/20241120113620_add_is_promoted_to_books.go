package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE books ADD COLUMN is_promoted BOOLEAN NOT NULL DEFAULT FALSE`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Existing promoted rows keep their tier.
		_, err = db.Exec(`UPDATE books SET is_promoted = (promotion_status != 'None')`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE books DROP COLUMN is_promoted`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
