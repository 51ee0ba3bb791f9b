package books

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shelfmark/shelfmark/pkg/binder"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
	"github.com/shelfmark/shelfmark/pkg/openlibrary/openlibrarytest"
	"github.com/shelfmark/shelfmark/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestEcho(t *testing.T, db *bun.DB, srv *openlibrarytest.Server) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutesWithGroup(e.Group("/books"), db)
	RegisterAdminRoutesWithGroup(e.Group("/admin/books"), db, srv.Client(time.Second))
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateBookHandler(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	srv := openlibrarytest.NewServer(t)
	srv.JSON(hyperionPath, hyperionDoc)
	srv.JSON(simmonsPath, `{"name":"Dan Simmons"}`)
	e := newTestEcho(t, db, srv)

	rec := do(e, http.MethodPost, "/admin/books", `{"book":"`+hyperionURL+`","condition":"https://schema.org/UsedCondition","is_promoted":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, "Hyperion", book.Title)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Dan Simmons", *book.Author)
	assert.Equal(t, models.PromotionStatusBasic, book.PromotionStatus)
	assert.True(t, book.IsPromoted)
	assert.Equal(t, DeriveSlug(book.ID), book.Slug)

	// The same URL again is a conflict.
	rec = do(e, http.MethodPost, "/admin/books", `{"book":"`+hyperionURL+`","condition":"https://schema.org/NewCondition"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Error.Code)

	// Readable through the public routes.
	rec = do(e, http.MethodGet, "/books/slug/"+book.Slug, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBookHandler_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body   string
		setup  func(*openlibrarytest.Server)
		status int
		code   string
	}{
		"title not accepted": {
			body:   `{"book":"` + hyperionURL + `","condition":"https://schema.org/UsedCondition","title":"Mine"}`,
			status: http.StatusUnprocessableEntity,
			code:   "unknown_parameter",
		},
		"http url": {
			body:   `{"book":"http://openlibrary.org/books/OL2055137M.json","condition":"https://schema.org/UsedCondition"}`,
			status: http.StatusUnprocessableEntity,
			code:   "validation_error",
		},
		"unknown condition": {
			body:   `{"book":"` + hyperionURL + `","condition":"Mint"}`,
			status: http.StatusUnprocessableEntity,
			code:   "validation_error",
		},
		"catalog down": {
			body:   `{"book":"` + hyperionURL + `","condition":"https://schema.org/UsedCondition"}`,
			setup:  func(s *openlibrarytest.Server) { s.Respond(hyperionPath, http.StatusServiceUnavailable, `{}`) },
			status: http.StatusBadGateway,
			code:   "metadata_unavailable",
		},
		"no title": {
			body:   `{"book":"` + hyperionURL + `","condition":"https://schema.org/UsedCondition"}`,
			setup:  func(s *openlibrarytest.Server) { s.JSON(hyperionPath, `{"authors":[]}`) },
			status: http.StatusBadGateway,
			code:   "malformed_metadata",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := testutils.NewDB(t)
			srv := openlibrarytest.NewServer(t)
			if tc.setup != nil {
				tc.setup(srv)
			}
			e := newTestEcho(t, db, srv)

			rec := do(e, http.MethodPost, "/admin/books", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decodeError(t, rec).Error.Code)

			rec = do(e, http.MethodGet, "/books", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"books":[],"total":0}`, rec.Body.String())
		})
	}
}

func TestUpdateBookHandler(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	srv := openlibrarytest.NewServer(t)
	srv.JSON(hyperionPath, `{"title":"Hyperion"}`)
	e := newTestEcho(t, db, srv)

	existing := testutils.CreateBook(t, db, func(b *models.Book) {
		b.Slug = "keep-this-slug"
		b.PromotionStatus = models.PromotionStatusPro
	})

	rec := do(e, http.MethodPut, "/admin/books/"+existing.ID, `{"book":"`+hyperionURL+`","condition":"https://schema.org/DamagedCondition"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, existing.ID, book.ID)
	assert.Equal(t, "Hyperion", book.Title)
	assert.Equal(t, models.BookConditionDamaged, book.Condition)
	assert.Equal(t, "keep-this-slug", book.Slug)
	assert.Equal(t, models.PromotionStatusPro, book.PromotionStatus)

	rec = do(e, http.MethodPut, "/admin/books/7c1a8a52-8a1f-4d6e-9c67-3c8f6f9b8d10", `{"book":"`+hyperionURL+`","condition":"https://schema.org/DamagedCondition"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{hyperionPath}, srv.Requests())
}

func TestListBooksHandler(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	e := newTestEcho(t, db, openlibrarytest.NewServer(t))

	testutils.CreateBook(t, db, func(b *models.Book) { b.Title = "Zen" })
	testutils.CreateBook(t, db, func(b *models.Book) { b.Title = "Art" })

	rec := do(e, http.MethodGet, "/books?order[title]=asc&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Books []models.Book `json:"books"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "Art", resp.Books[0].Title)

	rec = do(e, http.MethodGet, "/books?order[title]=sideways", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(e, http.MethodGet, "/books?limit=1000", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRetrieveBookHandler_NotFound(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	e := newTestEcho(t, db, openlibrarytest.NewServer(t))

	for _, target := range []string{
		"/books/not-a-uuid",
		"/books/7c1a8a52-8a1f-4d6e-9c67-3c8f6f9b8d10",
		"/books/slug/missing-slug",
	} {
		rec := do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "not_found", decodeError(t, rec).Error.Code, target)
	}
}

func TestPromotionAndCategoryHandlers(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	e := newTestEcho(t, db, openlibrarytest.NewServer(t))

	book := testutils.CreateBook(t, db)
	news := testutils.CreateCategory(t, db, "News")

	rec := do(e, http.MethodPut, "/admin/books/"+book.ID+"/promotion", `{"promotion_status":"Pro"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"promotion_status":"Pro"`)
	assert.Contains(t, rec.Body.String(), `"is_promoted":true`)

	rec = do(e, http.MethodPut, "/admin/books/"+book.ID+"/categories", `{"category_ids":[`+itoa(news.ID)+`]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"News"`)

	rec = do(e, http.MethodDelete, "/admin/books/"+book.ID+"/categories/"+itoa(news.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodPost, "/admin/books/"+book.ID+"/categories/"+itoa(news.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodDelete, "/admin/books/"+book.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodDelete, "/admin/books/"+book.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
