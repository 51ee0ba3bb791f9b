package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
)

type handler struct {
	authService *Service
}

// me returns the authenticated user.
func (h *handler) me(c echo.Context) error {
	user, ok := GetUserFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	return errors.WithStack(c.JSON(http.StatusOK, MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		IsAdmin:   user.IsAdmin(),
	}))
}
