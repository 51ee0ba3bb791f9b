package bookmarks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/database"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/uptrace/bun"
)

type ListBookmarksOptions struct {
	Limit  *int
	Offset *int
	UserID *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBookmark stores a bookmark. A user can bookmark a book only once.
func (svc *Service) CreateBookmark(ctx context.Context, bookmark *models.Bookmark) error {
	if bookmark.BookmarkedAt.IsZero() {
		bookmark.BookmarkedAt = time.Now()
	}
	if bookmark.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		bookmark.ID = id.String()
	}

	_, err := svc.db.
		NewInsert().
		Model(bookmark).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("Book is already bookmarked.")
		}
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) ListBookmarks(ctx context.Context, opts ListBookmarksOptions) ([]*models.Bookmark, error) {
	b, _, err := svc.listBookmarksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBookmarksWithTotal(ctx context.Context, opts ListBookmarksOptions) ([]*models.Bookmark, int, error) {
	opts.includeTotal = true
	return svc.listBookmarksWithTotal(ctx, opts)
}

func (svc *Service) listBookmarksWithTotal(ctx context.Context, opts ListBookmarksOptions) ([]*models.Bookmark, int, error) {
	bookmarks := []*models.Bookmark{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&bookmarks).
		Relation("Book").
		Order("bm.bookmarked_at DESC", "bm.id ASC")

	if opts.UserID != nil {
		q = q.Where("bm.user_id = ?", *opts.UserID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return bookmarks, total, nil
}

// DeleteBookmark removes one of userID's bookmarks. Other users' bookmarks
// are reported as not found.
func (svc *Service) DeleteBookmark(ctx context.Context, id, userID string) error {
	res, err := svc.db.NewDelete().
		Model((*models.Bookmark)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Bookmark")
	}
	return nil
}
