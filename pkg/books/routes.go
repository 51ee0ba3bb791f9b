package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the public, read-only book routes.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{bookService: NewService(db)}

	g.GET("", h.list)
	g.GET("/slug/:slug", h.retrieveBySlug)
	g.GET("/:id", h.retrieve)
}

// RegisterAdminRoutesWithGroup registers the book management routes. Writes
// go through the enrichment pipeline backed by metadata.
func RegisterAdminRoutesWithGroup(g *echo.Group, db *bun.DB, metadata MetadataFetcher) {
	bookService := NewService(db)
	h := &handler{
		bookService: bookService,
		enricher:    NewEnricher(metadata, bookService),
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/promotion", h.setPromotion)
	g.PUT("/:id/categories", h.setCategories)
	g.POST("/:id/categories/:categoryId", h.addCategory)
	g.DELETE("/:id/categories/:categoryId", h.removeCategory)
}
