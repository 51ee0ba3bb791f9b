package categories

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/uptrace/bun"
)

// Fixtures are the categories loaded by `shelfctl fixtures`.
var Fixtures = []string{"News", "Science", "History"}

type RetrieveCategoryOptions struct {
	ID *int
}

type ListCategoriesOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateCategoryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateCategory(ctx context.Context, category *models.Category) error {
	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = category.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(category).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveCategory(ctx context.Context, opts RetrieveCategoryOptions) (*models.Category, error) {
	category := &models.Category{}

	q := svc.selectCategories(svc.db.NewSelect().Model(category))
	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}

	return category, nil
}

func (svc *Service) ListCategories(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, error) {
	c, _, err := svc.listCategoriesWithTotal(ctx, opts)
	return c, errors.WithStack(err)
}

func (svc *Service) ListCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	opts.includeTotal = true
	return svc.listCategoriesWithTotal(ctx, opts)
}

func (svc *Service) listCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	categories := []*models.Category{}
	var total int
	var err error

	q := svc.selectCategories(svc.db.NewSelect().Model(&categories)).
		OrderExpr("c.name COLLATE NOCASE ASC").
		Order("c.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("lower(c.name) LIKE ?", "%"+*opts.Search+"%")
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

	return categories, total, nil
}

func (svc *Service) UpdateCategory(ctx context.Context, category *models.Category, opts UpdateCategoryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	category.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(category).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Category")
	}

	return nil
}

// DeleteCategory removes a category and unlinks it from every book. The books
// themselves are kept.
func (svc *Service) DeleteCategory(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.BookCategory)(nil)).Where("category_id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.NewDelete().Model((*models.Category)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Category")
		}
		return nil
	})
}

// LoadFixtures creates each fixture category that doesn't exist yet and
// returns how many were created.
func (svc *Service) LoadFixtures(ctx context.Context) (int, error) {
	created := 0
	for _, name := range Fixtures {
		exists, err := svc.db.NewSelect().
			Model((*models.Category)(nil)).
			Where("name = ?", name).
			Exists(ctx)
		if err != nil {
			return created, errors.WithStack(err)
		}
		if exists {
			continue
		}
		if err := svc.CreateCategory(ctx, &models.Category{Name: name}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (svc *Service) selectCategories(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("c.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_categories AS bc WHERE bc.category_id = c.id) AS book_count")
}
