package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/reports"
	"github.com/shelfmark/shelfmark/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func run(t *testing.T, cfg *config.Config, db *bun.DB, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(cfg, db, &out).RunContext(context.Background(), append([]string{"shelfctl"}, args...))
	return out.String(), err
}

func TestExportCommand(t *testing.T) {
	cfg := config.NewForTest()
	db := testutils.NewDB(t)
	testutils.CreateBook(t, db)
	dir := filepath.Join(t.TempDir(), "export")

	out, err := run(t, cfg, db, "export", "--directory", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, reports.ExportFileName))

	data, err := os.ReadFile(filepath.Join(dir, reports.ExportFileName))
	require.NoError(t, err)
	var books []reports.ExportedBook
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Len(t, books, 1)
}

func TestReviewStatisticsCommand(t *testing.T) {
	cfg := config.NewForTest()
	db := testutils.NewDB(t)

	out, err := run(t, cfg, db, "review-statistics")
	require.NoError(t, err)
	assert.Equal(t, "There are no reviews yet.\n", out)

	book := testutils.CreateBook(t, db)
	user := testutils.CreateUser(t, db, models.RoleReader)
	testutils.CreateReview(t, db, book, user, 4, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	testutils.CreateReview(t, db, book, user, 5, time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC))
	testutils.CreateReview(t, db, book, user, 1, time.Date(2024, 4, 9, 9, 0, 0, 0, time.UTC))

	out, err = run(t, cfg, db, "review-statistics")
	require.NoError(t, err)
	assert.Equal(t, "Most reviews on: 2024-03-02\n", out)

	out, err = run(t, cfg, db, "review-statistics", "--month")
	require.NoError(t, err)
	assert.Equal(t, "Most reviews in: 2024-03\n", out)
}

func TestFixturesCommand(t *testing.T) {
	cfg := config.NewForTest()
	db := testutils.NewDB(t)

	out, err := run(t, cfg, db, "fixtures")
	require.NoError(t, err)
	assert.Equal(t, "Loaded 3 of 3 categories\n", out)

	out, err = run(t, cfg, db, "fixtures")
	require.NoError(t, err)
	assert.Equal(t, "Loaded 0 of 3 categories\n", out)
}

func TestTokenCommand(t *testing.T) {
	cfg := config.NewForTest()
	db := testutils.NewDB(t)
	admin := testutils.CreateUser(t, db, models.RoleAdmin)

	out, err := run(t, cfg, db, "token", "--ttl", "1h", admin.ID)
	require.NoError(t, err)

	claims, err := auth.NewService(db, cfg.JWTSecret).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = run(t, cfg, db, "token")
	assert.Error(t, err)

	_, err = run(t, cfg, db, "token", "00000000-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
