package reviews

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/database"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveReviewOptions struct {
	ID *string
}

type ListReviewsOptions struct {
	Limit  *int
	Offset *int
	BookID *string
	UserID *string
	// PublishedMonth is YYYY-MM.
	PublishedMonth *string
	MinRating      *int
	// WithUser loads each review's author. Only admin listings set it.
	WithUser bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateReview(ctx context.Context, review *models.Review) error {
	now := time.Now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = review.CreatedAt
	if review.PublishedAt.IsZero() {
		review.PublishedAt = review.CreatedAt
	}
	if review.Rating < models.ReviewRatingMin || review.Rating > models.ReviewRatingMax {
		return errcodes.ValidationError(`"rating" must be between 0 and 5`)
	}

	if review.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		review.ID = id.String()
	}

	_, err := svc.db.
		NewInsert().
		Model(review).
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveReview(ctx context.Context, opts RetrieveReviewOptions) (*models.Review, error) {
	review := &models.Review{}

	q := svc.db.
		NewSelect().
		Model(review)
	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Review")
		}
		return nil, errors.WithStack(err)
	}

	return review, nil
}

func (svc *Service) ListReviews(ctx context.Context, opts ListReviewsOptions) ([]*models.Review, error) {
	r, _, err := svc.listReviewsWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListReviewsWithTotal(ctx context.Context, opts ListReviewsOptions) ([]*models.Review, int, error) {
	opts.includeTotal = true
	return svc.listReviewsWithTotal(ctx, opts)
}

func (svc *Service) listReviewsWithTotal(ctx context.Context, opts ListReviewsOptions) ([]*models.Review, int, error) {
	reviews := []*models.Review{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&reviews).
		Order("r.published_at DESC", "r.id ASC")

	if opts.WithUser {
		q = q.Relation("User")
	}
	if opts.BookID != nil {
		q = q.Where("r.book_id = ?", *opts.BookID)
	}
	if opts.UserID != nil {
		q = q.Where("r.user_id = ?", *opts.UserID)
	}
	if opts.PublishedMonth != nil {
		// Months are UTC, matching how timestamps are stored.
		q = q.Where("strftime('%Y-%m', r.published_at) = ?", *opts.PublishedMonth)
	}
	if opts.MinRating != nil {
		q = q.Where("r.rating >= ?", *opts.MinRating)
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

	return reviews, total, nil
}

func (svc *Service) DeleteReview(ctx context.Context, id string) error {
	res, err := svc.db.NewDelete().
		Model((*models.Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Review")
	}
	return nil
}
