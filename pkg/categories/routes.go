package categories

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the public, read-only category routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{categoryService: NewService(db)}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
}

func RegisterAdminRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{categoryService: NewService(db)}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}
