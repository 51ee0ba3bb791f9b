package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func handle(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHandler().Handle(err, c)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", NotFound("Book"), http.StatusNotFound, "not_found"},
		{"conflict", Conflict("Book already exists."), http.StatusConflict, "conflict"},
		{"metadata unavailable", MetadataUnavailable("upstream down"), http.StatusBadGateway, "metadata_unavailable"},
		{"malformed metadata", MalformedMetadata("no title"), http.StatusBadGateway, "malformed_metadata"},
		{"unauthorized", Unauthorized("Missing token."), http.StatusUnauthorized, "unauthorized"},
		{"wrapped validation", errors.WithStack(ValidationError("bad url")), http.StatusUnprocessableEntity, "validation_error"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), http.StatusMethodNotAllowed, "method_not_allowed"},
		{"generic", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := handle(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantStatus, body.Error.StatusCode)
		})
	}
}

func TestHandle_GenericErrorHidesMessage(t *testing.T) {
	_, body := handle(t, errors.New("sql: connection refused at 10.0.0.1"))
	assert.Equal(t, "Internal Server Error", body.Error.Message)
}

func TestError_Is(t *testing.T) {
	err := errors.WithStack(NotFound("Book"))
	assert.ErrorIs(t, err, NotFound("Book"))
	assert.NotErrorIs(t, err, NotFound("Category"))
}

type stageError struct {
	http  error
	cause error
}

func (e *stageError) Error() string   { return e.cause.Error() }
func (e *stageError) Unwrap() []error { return []error{e.http, e.cause} }

func TestToResponse(t *testing.T) {
	wrapped := &stageError{http: MetadataUnavailable("Catalog unreachable."), cause: errors.New("dial tcp: timeout")}
	resp := toResponse(errors.WithStack(wrapped))
	assert.Equal(t, ErrorBody{Code: "metadata_unavailable", Message: "Catalog unreachable.", StatusCode: http.StatusBadGateway}, resp.Error)

	resp = toResponse(echo.NewHTTPError(http.StatusTeapot, map[string]string{"x": "y"}))
	assert.Equal(t, http.StatusTeapot, resp.Error.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusTeapot), resp.Error.Message)
}
