package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
)

const bearerPrefix = "Bearer "

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate validates the bearer token in the Authorization header. If
// valid and the user still exists, it adds the user to the context.
// Otherwise it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.userFromRequest(c)
		if err != nil {
			return err
		}
		if user == nil {
			return errcodes.Unauthorized("Authentication required.")
		}

		setUser(c, user)
		return next(c)
	}
}

// AuthenticateOptional adds the user to the context when a valid token is
// present and otherwise lets the request through anonymously.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := m.userFromRequest(c); err == nil && user != nil {
			setUser(c, user)
		}
		return next(c)
	}
}

// RequireAdmin rejects users without the admin role. Must be used after
// Authenticate.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := GetUserFromContext(c)
		if !ok {
			return errcodes.Unauthorized("Authentication required.")
		}
		if !user.IsAdmin() {
			return errcodes.Forbidden("Managing the catalog")
		}
		return next(c)
	}
}

// userFromRequest returns (nil, nil) when no token was sent.
func (m *Middleware) userFromRequest(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, nil
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errcodes.Unauthorized("Authorization must be a bearer token.")
	}

	claims, err := m.authService.ValidateToken(strings.TrimSpace(header[len(bearerPrefix):]))
	if err != nil {
		logger.FromContext(c.Request().Context()).Debug("rejected token", logger.Data{"reason": err.Error()})
		return nil, errcodes.Unauthorized("Invalid or expired token.")
	}

	// The role comes from the stored user, not the token, so demotions take
	// effect immediately.
	user, err := m.authService.GetUserByID(c.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, errcodes.Unauthorized("User not found.")
		}
		return nil, err
	}
	return user, nil
}

func setUser(c echo.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
}

// GetUserFromContext retrieves the authenticated user from the Echo context.
func GetUserFromContext(c echo.Context) (*models.User, bool) {
	user, ok := c.Get("user").(*models.User)
	return user, ok && user != nil
}

// GetUserIDFromContext retrieves the user ID from the Echo context.
func GetUserIDFromContext(c echo.Context) (string, bool) {
	userID, ok := c.Get("user_id").(string)
	return userID, ok
}
