package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE books ADD COLUMN slug TEXT`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`UPDATE books SET slug = 'book-' || id WHERE slug IS NULL`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_slug ON books (slug)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP INDEX IF EXISTS ux_books_slug`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`ALTER TABLE books DROP COLUMN slug`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
