package migrations

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const booksColumns = `id, created_at, updated_at, book, title, author, "condition", promotion_status, is_promoted, slug`

var booksIndexes = []string{
	`CREATE UNIQUE INDEX ux_books_book ON books (book)`,
	`CREATE UNIQUE INDEX ux_books_slug ON books (slug)`,
	`CREATE INDEX ix_books_title ON books (title COLLATE NOCASE)`,
}

// rebuildBooksTable swaps books for a table created by createSQL (which must
// create books_new) following SQLite's documented table-rebuild procedure.
// Foreign keys are suspended for the swap and checked before commit.
func rebuildBooksTable(ctx context.Context, db *bun.DB, createSQL string) error {
	var fkEnabled int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		return errors.WithStack(err)
	}
	if fkEnabled == 1 {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
			return errors.WithStack(err)
		}
		defer func() {
			_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys=ON")
		}()
	}

	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		stmts := []string{
			createSQL,
			`INSERT INTO books_new (` + booksColumns + `) SELECT ` + booksColumns + ` FROM books`,
			`DROP TABLE books`,
			`ALTER TABLE books_new RENAME TO books`,
		}
		stmts = append(stmts, booksIndexes...)
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.WithStack(err)
			}
		}

		rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
		if err != nil {
			return errors.WithStack(err)
		}
		defer rows.Close()
		if rows.Next() {
			return errors.New("foreign key violations after rebuilding books")
		}
		return errors.WithStack(rows.Err())
	})
}
