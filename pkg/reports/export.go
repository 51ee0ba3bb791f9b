package reports

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/uptrace/bun"
)

// ExportFileName is the name of the file written into the export directory.
const ExportFileName = "books.json"

// ExportedBook is one entry of books.json.
type ExportedBook struct {
	ID         string   `json:"id"`
	Author     *string  `json:"author"`
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Reviews    int      `json:"reviews"`
	Bookmarks  int      `json:"bookmarks"`
	// ActiveUsers are the emails of users who both reviewed and bookmarked
	// the book.
	ActiveUsers []string `json:"activeUsers"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type bookmarkCountRow struct {
	BookID string `bun:"book_id"`
	Count  int    `bun:"count"`
}

type activeUserRow struct {
	BookID string `bun:"book_id"`
	Email  string `bun:"email"`
}

// BuildExport collects every book, oldest first.
func (svc *Service) BuildExport(ctx context.Context) ([]ExportedBook, error) {
	books := []*models.Book{}
	err := svc.db.NewSelect().
		Model(&books).
		ColumnExpr("b.*").
		ColumnExpr("(SELECT COUNT(*) FROM reviews AS r WHERE r.book_id = b.id) AS review_count").
		Relation("BookCategories", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bc.category_id ASC")
		}).
		Relation("BookCategories.Category").
		Order("b.created_at ASC", "b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts := []bookmarkCountRow{}
	err = svc.db.NewSelect().
		TableExpr("bookmarks AS bm").
		ColumnExpr("bm.book_id").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("bm.book_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	bookmarksByBook := make(map[string]int, len(counts))
	for _, c := range counts {
		bookmarksByBook[c.BookID] = c.Count
	}

	active := []activeUserRow{}
	err = svc.db.NewSelect().
		Distinct().
		TableExpr("reviews AS r").
		ColumnExpr("r.book_id").
		ColumnExpr("u.email").
		Join("JOIN bookmarks AS bm ON bm.book_id = r.book_id AND bm.user_id = r.user_id").
		Join("JOIN users AS u ON u.id = r.user_id").
		OrderExpr("r.book_id ASC, u.email ASC").
		Scan(ctx, &active)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	activeByBook := map[string][]string{}
	for _, a := range active {
		activeByBook[a.BookID] = append(activeByBook[a.BookID], a.Email)
	}

	out := make([]ExportedBook, 0, len(books))
	for _, book := range books {
		book.CollectCategories()
		categories := make([]string, 0, len(book.Categories))
		for _, c := range book.Categories {
			categories = append(categories, c.Name)
		}
		activeUsers := activeByBook[book.ID]
		if activeUsers == nil {
			activeUsers = []string{}
		}
		out = append(out, ExportedBook{
			ID:          book.ID,
			Author:      book.Author,
			Title:       book.Title,
			Categories:  categories,
			Reviews:     book.ReviewCount,
			Bookmarks:   bookmarksByBook[book.ID],
			ActiveUsers: activeUsers,
		})
	}
	return out, nil
}

// ExportBooks writes books.json into directory, creating it if needed, and
// returns the file's path.
func (svc *Service) ExportBooks(ctx context.Context, directory string) (string, error) {
	books, err := svc.BuildExport(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(books, "", "    ")
	if err != nil {
		return "", errors.WithStack(err)
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", errors.WithStack(err)
	}
	path := filepath.Join(directory, ExportFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", errors.WithStack(err)
	}
	return path, nil
}
