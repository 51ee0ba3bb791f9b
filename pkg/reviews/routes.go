package reviews

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the reader-facing review routes. Listing a book's
// reviews is public (a signed-in caller may pass mine=true), writing requires
// a signed-in user.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{reviewService: NewService(db)}

	e.GET("/books/:id/reviews", h.listForBook, authMiddleware.AuthenticateOptional)
	e.POST("/books/:id/reviews", h.create, authMiddleware.Authenticate)
	e.DELETE("/reviews/:id", h.delete, authMiddleware.Authenticate)
}

func RegisterAdminRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{reviewService: NewService(db)}

	g.GET("", h.list)
	g.DELETE("/:id", h.delete)
}
