package users

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterAdminRoutesWithGroup registers the user management routes. The
// group is expected to be admin-only already.
func RegisterAdminRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		userService: NewService(db),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
