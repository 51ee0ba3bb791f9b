package reviews

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/binder"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	e    *echo.Echo
	auth *auth.Service
}

func newTestServer(t *testing.T, db *bun.DB) *testServer {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	authService := auth.NewService(db, "test-jwt-secret")
	mw := auth.NewMiddleware(authService)
	RegisterRoutes(e, db, mw)
	RegisterAdminRoutesWithGroup(e.Group("/admin/reviews", mw.Authenticate, mw.RequireAdmin), db)

	return &testServer{e: e, auth: authService}
}

func (s *testServer) do(t *testing.T, method, target, body string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		token, err := s.auth.GenerateToken(user, 0)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestReviewHandlers(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	s := newTestServer(t, db)

	book := testutils.CreateBook(t, db)
	author := testutils.CreateUser(t, db, models.RoleReader)
	stranger := testutils.CreateUser(t, db, models.RoleReader)
	admin := testutils.CreateUser(t, db, models.RoleAdmin)

	rec := s.do(t, http.MethodPost, "/books/"+book.ID+"/reviews", `{"body":"Great","rating":4}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/books/"+book.ID+"/reviews", `{"body":"Great"}`, author)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/books/"+book.ID+"/reviews", `{"body":"Meh","rating":0}`, author)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"rating":0`)

	rec = s.do(t, http.MethodGet, "/books/"+book.ID+"/reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.NotContains(t, rec.Body.String(), author.Email)

	reviews, err := NewService(db).ListReviews(t.Context(), ListReviewsOptions{BookID: &book.ID})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	path := "/reviews/" + reviews[0].ID

	rec = s.do(t, http.MethodDelete, path, "", stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, path, "", author)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/books/7c1a8a52-8a1f-4d6e-9c67-3c8f6f9b8d10/reviews", `{"body":"?","rating":3}`, author)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	testutils.CreateReview(t, db, book, stranger, 2, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	rec = s.do(t, http.MethodGet, "/admin/reviews?published_month=2024-05", "", stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/reviews?published_month=2024-05", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), stranger.Email)

	rec = s.do(t, http.MethodGet, "/admin/reviews?published_month=May-2024", "", admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListForBook_Mine(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	s := newTestServer(t, db)

	book := testutils.CreateBook(t, db)
	reader := testutils.CreateUser(t, db, models.RoleReader)
	other := testutils.CreateUser(t, db, models.RoleReader)
	at := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	mine := testutils.CreateReview(t, db, book, reader, 5, at)
	theirs := testutils.CreateReview(t, db, book, other, 1, at)

	rec := s.do(t, http.MethodGet, "/books/"+book.ID+"/reviews", "", reader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":2`)

	rec = s.do(t, http.MethodGet, "/books/"+book.ID+"/reviews?mine=true", "", reader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), mine.ID)
	assert.NotContains(t, rec.Body.String(), theirs.ID)

	rec = s.do(t, http.MethodGet, "/books/"+book.ID+"/reviews?mine=true", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
