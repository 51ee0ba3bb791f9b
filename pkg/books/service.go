package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/database"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/uptrace/bun"
)

// writableColumns are replaced wholesale by an update.
var writableColumns = []string{"book", "title", "author", "condition", "promotion_status", "is_promoted", "slug"}

type RetrieveBookOptions struct {
	ID   *string
	Slug *string
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	Title     *string
	Author    *string
	Condition *models.BookCondition
	// OrderTitle is "asc" or "desc". Books are otherwise listed oldest first.
	OrderTitle *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Persist stores an enriched book and returns it as read back from the
// database.
func (svc *Service) Persist(ctx context.Context, book *models.Book, op Operation) (*models.Book, error) {
	var err error
	switch op {
	case OperationCreate:
		err = svc.CreateBook(ctx, book)
	case OperationUpdate:
		err = svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: writableColumns})
	default:
		err = errors.Errorf("unknown operation %q", op)
	}
	if err != nil {
		return nil, err
	}
	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.ID == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		book.ID = id.String()
	}
	if book.Slug == "" {
		book.Slug = DeriveSlug(book.ID)
	}
	if book.PromotionStatus == "" {
		book.PromotionStatus = models.PromotionStatusNone
	}
	book.SyncPromotion()

	_, err := svc.db.
		NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return conflictError(err)
		}
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.selectBooks(svc.db.NewSelect().Model(book))
	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Slug != nil {
		q = q.Where("b.slug = ?", *opts.Slug)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	book.CollectCategories()
	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.selectBooks(svc.db.NewSelect().Model(&books))

	if opts.Title != nil && *opts.Title != "" {
		q = q.Where("lower(b.title) LIKE ? ESCAPE '\\'", containsPattern(*opts.Title))
	}
	if opts.Author != nil && *opts.Author != "" {
		q = q.Where("lower(b.author) LIKE ? ESCAPE '\\'", containsPattern(*opts.Author))
	}
	if opts.Condition != nil {
		q = q.Where("b.condition = ?", *opts.Condition)
	}

	if opts.OrderTitle != nil && strings.EqualFold(*opts.OrderTitle, "desc") {
		q = q.OrderExpr("b.title COLLATE NOCASE DESC")
	} else if opts.OrderTitle != nil {
		q = q.OrderExpr("b.title COLLATE NOCASE ASC")
	}
	q = q.Order("b.created_at ASC", "b.id ASC")

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

	for _, b := range books {
		b.CollectCategories()
	}
	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	book.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return conflictError(err)
		}
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// SetPromotionStatus moves a book to the given tier without touching any
// other field. It is the only way to reach Pro.
func (svc *Service) SetPromotionStatus(ctx context.Context, id string, status models.PromotionStatus) (*models.Book, error) {
	if !status.Valid() {
		return nil, errcodes.ValidationError(`"promotion_status" must be one of the following: "None", "Basic", "Pro"`)
	}

	book := &models.Book{ID: id, PromotionStatus: status}
	book.SyncPromotion()
	if err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"promotion_status", "is_promoted"}}); err != nil {
		return nil, err
	}
	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
}

// DeleteBook removes a book along with its reviews, bookmarks, and category
// links.
func (svc *Service) DeleteBook(ctx context.Context, id string) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*models.Review)(nil),
			(*models.Bookmark)(nil),
			(*models.BookCategory)(nil),
		} {
			_, err := tx.NewDelete().Model(model).Where("book_id = ?", id).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		res, err := tx.NewDelete().Model((*models.Book)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Book")
		}
		return nil
	})
}

// SetCategories replaces the book's categories with categoryIDs.
func (svc *Service) SetCategories(ctx context.Context, id string, categoryIDs []int) (*models.Book, error) {
	categoryIDs = uniqueInts(categoryIDs)

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureBookExists(ctx, tx, id); err != nil {
			return err
		}
		if err := ensureCategoriesExist(ctx, tx, categoryIDs); err != nil {
			return err
		}

		_, err := tx.NewDelete().Model((*models.BookCategory)(nil)).Where("book_id = ?", id).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(categoryIDs) == 0 {
			return nil
		}

		links := make([]*models.BookCategory, len(categoryIDs))
		for i, categoryID := range categoryIDs {
			links[i] = &models.BookCategory{BookID: id, CategoryID: categoryID}
		}
		_, err = tx.NewInsert().Model(&links).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
}

// AddCategory links a category to a book. Adding an existing link is a no-op.
func (svc *Service) AddCategory(ctx context.Context, id string, categoryID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureBookExists(ctx, tx, id); err != nil {
			return err
		}
		if err := ensureCategoriesExist(ctx, tx, []int{categoryID}); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&models.BookCategory{BookID: id, CategoryID: categoryID}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// RemoveCategory unlinks a category from a book.
func (svc *Service) RemoveCategory(ctx context.Context, id string, categoryID int) error {
	res, err := svc.db.NewDelete().
		Model((*models.BookCategory)(nil)).
		Where("book_id = ?", id).
		Where("category_id = ?", categoryID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Book category")
	}
	return nil
}

// selectBooks adds the computed columns and relations every book read uses.
func (svc *Service) selectBooks(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("b.*").
		ColumnExpr("(SELECT CAST(ROUND(AVG(r.rating)) AS INTEGER) FROM reviews AS r WHERE r.book_id = b.id) AS rating").
		ColumnExpr("(SELECT COUNT(*) FROM reviews AS r WHERE r.book_id = b.id) AS review_count").
		Relation("BookCategories", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("bc.category_id ASC")
		}).
		Relation("BookCategories.Category")
}

func ensureBookExists(ctx context.Context, tx bun.Tx, id string) error {
	exists, err := tx.NewSelect().Model((*models.Book)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Book")
	}
	return nil
}

func ensureCategoriesExist(ctx context.Context, tx bun.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := tx.NewSelect().
		Model((*models.Category)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if count != len(ids) {
		return errcodes.NotFound("Category")
	}
	return nil
}

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
