package database

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig points at a file database so that lock contention is real.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "test.db")
	cfg.DatabaseMaxRetries = 0
	cfg.DatabaseBusyTimeout = 1_000_000 // 1ms
	return cfg
}

func TestConcurrentWrites(t *testing.T) {
	t.Parallel()

	db, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE bookmarks_test (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		book_id TEXT NOT NULL
	)`)
	require.NoError(t, err)

	const workers = 16
	const writesPerWorker = 40

	var wg sync.WaitGroup
	var failures atomic.Int32
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				_, err := db.Exec(
					"INSERT INTO bookmarks_test (user_id, book_id) VALUES (?, ?)",
					fmt.Sprintf("user-%d", worker),
					fmt.Sprintf("book-%d", i),
				)
				if err != nil {
					failures.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bookmarks_test").Scan(&count))
	assert.Equal(t, workers*writesPerWorker, count)
}

func TestConcurrentUniqueInserts(t *testing.T) {
	t.Parallel()

	db, err := New(newTestConfig(t))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE books_test (id TEXT PRIMARY KEY, book TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)

	const racers = 10
	var wg sync.WaitGroup
	var won, conflicted atomic.Int32
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := db.Exec("INSERT INTO books_test (id, book) VALUES (?, ?)",
				fmt.Sprintf("id-%d", i), "https://openlibrary.org/works/OL1W.json")
			switch {
			case err == nil:
				won.Add(1)
			case IsUniqueViolation(err):
				conflicted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, int32(racers-1), conflicted.Load())
}

func TestNew_EnablesForeignKeys(t *testing.T) {
	t.Parallel()

	db, err := New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = db.Exec(`CREATE TABLE parents (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE children (id TEXT PRIMARY KEY, parent_id TEXT NOT NULL REFERENCES parents (id))`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO children (id, parent_id) VALUES ('c', 'missing')`)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}
