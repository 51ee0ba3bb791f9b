package bookmarks

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the bookmark routes. The group must
// already require authentication; every route acts on the caller's own
// bookmarks.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{bookmarkService: NewService(db)}

	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:id", h.delete)
}
