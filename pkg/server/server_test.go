package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/openlibrary/openlibrarytest"
	"github.com/shelfmark/shelfmark/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	e     *echo.Echo
	db    *bun.DB
	cfg   *config.Config
	books *openlibrarytest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.NewForTest()
	db := testutils.NewDB(t)
	books := openlibrarytest.NewServer(t)

	e, err := newEcho(cfg, db, books.Client(time.Second))
	require.NoError(t, err)

	return &testServer{e: e, db: db, cfg: cfg, books: books}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.NewService(s.db, s.cfg.JWTSecret).GenerateToken(user, 0)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	cfg := config.NewForTest()
	cfg.ServerPort = 4100
	db := testutils.NewDB(t)

	srv, err := New(cfg, db, openlibrarytest.NewServer(t).Client(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4100", srv.Addr)
	assert.NotNil(t, srv.Handler)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Code)
	assert.Equal(t, "Page not found.", body.Error.Message)
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	s := newTestServer(t)
	book := testutils.CreateBook(t, s.db)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/books", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/books/"+book.ID, "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/books/"+book.ID+"/reviews", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/categories", "", "").Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	reader := testutils.CreateUser(t, s.db, models.RoleReader)
	admin := testutils.CreateUser(t, s.db, models.RoleAdmin)

	targets := []string{"/admin/books", "/admin/categories", "/admin/reviews", "/admin/users"}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, target, "", "").Code)
			assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, target, s.token(t, reader), "").Code)
			assert.Equal(t, http.StatusOK, s.do(http.MethodGet, target, s.token(t, admin), "").Code)
		})
	}
}

func TestBookmarksRequireToken(t *testing.T) {
	s := newTestServer(t)
	reader := testutils.CreateUser(t, s.db, models.RoleReader)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/bookmarks", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/bookmarks", s.token(t, reader), "").Code)
}

func TestAdminCreateBookUsesMetadata(t *testing.T) {
	s := newTestServer(t)
	admin := testutils.CreateUser(t, s.db, models.RoleAdmin)
	s.books.JSON("/books/OL2055137M.json", `{"title":"Hyperion","authors":[{"key":"/authors/OL19981A"}]}`)
	s.books.JSON("/authors/OL19981A", `{"name":"Dan Simmons"}`)

	payload := `{"book":"https://openlibrary.org/books/OL2055137M.json","condition":"https://schema.org/UsedCondition"}`
	rec := s.do(http.MethodPost, "/admin/books", s.token(t, admin), payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, "Hyperion", book.Title)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Dan Simmons", *book.Author)
	assert.Equal(t, "book-"+book.ID, book.Slug)
	assert.Equal(t, []string{"/books/OL2055137M.json", "/authors/OL19981A"}, s.books.Requests())

	rec = s.do(http.MethodGet, "/books/slug/"+book.Slug, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"author":"Dan Simmons"`)
}
