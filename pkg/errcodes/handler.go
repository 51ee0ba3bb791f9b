package errcodes

import (
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type Response struct {
	Error ErrorBody `json:"error"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is the echo error handler. Errors from this package and echo keep
// their status; anything else is reported as a 500 without its message.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)
	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}

	resp := toResponse(err)
	switch {
	case resp.Error.StatusCode == http.StatusInternalServerError:
		log.Err(err).Error("server error")
	case resp.Error.StatusCode >= http.StatusInternalServerError:
		log.Err(err).Warn("upstream error")
	}

	if err := c.JSON(resp.Error.StatusCode, resp); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func toResponse(err error) Response {
	body := ErrorBody{
		Code:       "internal_server_error",
		Message:    "Internal Server Error",
		StatusCode: http.StatusInternalServerError,
	}

	var e *Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &e):
		body = ErrorBody{Code: e.Code, Message: e.Message, StatusCode: e.HTTPCode}
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		body = ErrorBody{Code: strcase.ToSnake(msg), Message: msg, StatusCode: he.Code}
	}

	return Response{Error: body}
}
