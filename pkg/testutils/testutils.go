// Package testutils provides database setup and fixture helpers shared by
// package tests.
package testutils

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/database"
	"github.com/shelfmark/shelfmark/pkg/migrations"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory database that is closed when the test
// ends.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newID(t testing.TB) string {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id.String()
}

func CreateUser(t testing.TB, db *bun.DB, role string) *models.User {
	t.Helper()
	n := seq.Add(1)
	now := time.Now()
	user := &models.User{
		ID:        newID(t),
		CreatedAt: now,
		UpdatedAt: now,
		Email:     fmt.Sprintf("reader%d@example.com", n),
		FirstName: "Reader",
		LastName:  fmt.Sprintf("No%d", n),
		Role:      role,
	}
	_, err := db.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)
	return user
}

func CreateCategory(t testing.TB, db *bun.DB, name string) *models.Category {
	t.Helper()
	now := time.Now()
	category := &models.Category{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(category).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return category
}

// CreateBook inserts a book directly, skipping enrichment. mods may adjust
// the book before it is stored.
func CreateBook(t testing.TB, db *bun.DB, mods ...func(*models.Book)) *models.Book {
	t.Helper()
	n := seq.Add(1)
	now := time.Now()
	id := newID(t)
	book := &models.Book{
		ID:              id,
		CreatedAt:       now,
		UpdatedAt:       now,
		Book:            fmt.Sprintf("https://openlibrary.org/works/OL%dW.json", n),
		Title:           fmt.Sprintf("Book %d", n),
		Condition:       models.BookConditionNew,
		PromotionStatus: models.PromotionStatusNone,
		Slug:            "book-" + id,
	}
	for _, mod := range mods {
		mod(book)
	}
	book.SyncPromotion()
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func LinkCategory(t testing.TB, db *bun.DB, book *models.Book, category *models.Category) {
	t.Helper()
	_, err := db.NewInsert().
		Model(&models.BookCategory{BookID: book.ID, CategoryID: category.ID}).
		Exec(context.Background())
	require.NoError(t, err)
}

func CreateReview(t testing.TB, db *bun.DB, book *models.Book, user *models.User, rating int, publishedAt time.Time) *models.Review {
	t.Helper()
	review := &models.Review{
		ID:          newID(t),
		CreatedAt:   publishedAt,
		UpdatedAt:   publishedAt,
		BookID:      book.ID,
		UserID:      user.ID,
		Body:        "A review.",
		Rating:      rating,
		PublishedAt: publishedAt,
	}
	_, err := db.NewInsert().Model(review).Exec(context.Background())
	require.NoError(t, err)
	return review
}

func CreateBookmark(t testing.TB, db *bun.DB, book *models.Book, user *models.User, at time.Time) *models.Bookmark {
	t.Helper()
	bookmark := &models.Bookmark{
		ID:           newID(t),
		BookID:       book.ID,
		UserID:       user.ID,
		BookmarkedAt: at,
	}
	_, err := db.NewInsert().Model(bookmark).Exec(context.Background())
	require.NoError(t, err)
	return bookmark
}
