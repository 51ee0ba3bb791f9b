package bookmarks

import (
	"context"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookmark(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	svc := NewService(db)

	book := testutils.CreateBook(t, db)
	user := testutils.CreateUser(t, db, models.RoleReader)

	bookmark := &models.Bookmark{BookID: book.ID, UserID: user.ID}
	require.NoError(t, svc.CreateBookmark(ctx, bookmark))
	assert.NotEmpty(t, bookmark.ID)
	assert.False(t, bookmark.BookmarkedAt.IsZero())

	err := svc.CreateBookmark(ctx, &models.Bookmark{BookID: book.ID, UserID: user.ID})
	assert.ErrorIs(t, err, errcodes.Conflict("Book is already bookmarked."))

	err = svc.CreateBookmark(ctx, &models.Bookmark{BookID: "7c1a8a52-8a1f-4d6e-9c67-3c8f6f9b8d10", UserID: user.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestListBookmarks_OnlyOwn(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	svc := NewService(db)

	first := testutils.CreateBook(t, db)
	second := testutils.CreateBook(t, db)
	alice := testutils.CreateUser(t, db, models.RoleReader)
	bob := testutils.CreateUser(t, db, models.RoleReader)

	now := time.Now()
	testutils.CreateBookmark(t, db, first, alice, now.Add(-time.Hour))
	testutils.CreateBookmark(t, db, second, alice, now)
	testutils.CreateBookmark(t, db, first, bob, now)

	bookmarks, total, err := svc.ListBookmarksWithTotal(ctx, ListBookmarksOptions{UserID: &alice.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, second.ID, bookmarks[0].BookID)
	require.NotNil(t, bookmarks[0].Book)
	assert.Equal(t, second.Title, bookmarks[0].Book.Title)
}

func TestDeleteBookmark_OnlyOwn(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	svc := NewService(db)

	alice := testutils.CreateUser(t, db, models.RoleReader)
	bob := testutils.CreateUser(t, db, models.RoleReader)
	bookmark := testutils.CreateBookmark(t, db, testutils.CreateBook(t, db), alice, time.Now())

	err := svc.DeleteBookmark(ctx, bookmark.ID, bob.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Bookmark"))

	require.NoError(t, svc.DeleteBookmark(ctx, bookmark.ID, alice.ID))
	bookmarks, err := svc.ListBookmarks(ctx, ListBookmarksOptions{UserID: &alice.ID})
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}
