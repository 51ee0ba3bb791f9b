package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/binder"
	"github.com/shelfmark/shelfmark/pkg/bookmarks"
	"github.com/shelfmark/shelfmark/pkg/books"
	"github.com/shelfmark/shelfmark/pkg/categories"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/reviews"
	"github.com/shelfmark/shelfmark/pkg/users"
	"github.com/uptrace/bun"
)

// New builds the API server. metadata is the catalog book writes are
// enriched from.
func New(cfg *config.Config, db *bun.DB, metadata books.MetadataFetcher) (*http.Server, error) {
	e, err := newEcho(cfg, db, metadata)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, metadata books.MetadataFetcher) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	authService := auth.NewService(db, cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)
	auth.RegisterRoutes(e, authService, authMiddleware)

	registerPublicRoutes(e, db, authMiddleware)
	registerAdminRoutes(e, db, metadata, authMiddleware)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerPublicRoutes registers the catalog reads, which need no token, and
// the routes acting on the caller's own reviews and bookmarks.
func registerPublicRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	books.RegisterRoutesWithGroup(e.Group("/books"), db)
	categories.RegisterRoutesWithGroup(e.Group("/categories"), db)
	reviews.RegisterRoutes(e, db, authMiddleware)

	bookmarksGroup := e.Group("/bookmarks")
	bookmarksGroup.Use(authMiddleware.Authenticate)
	bookmarks.RegisterRoutesWithGroup(bookmarksGroup, db)
}

// registerAdminRoutes registers everything under /admin. Every route requires
// a token belonging to an admin.
func registerAdminRoutes(e *echo.Echo, db *bun.DB, metadata books.MetadataFetcher, authMiddleware *auth.Middleware) {
	admin := e.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireAdmin)

	books.RegisterAdminRoutesWithGroup(admin.Group("/books"), db, metadata)
	categories.RegisterAdminRoutesWithGroup(admin.Group("/categories"), db)
	reviews.RegisterAdminRoutesWithGroup(admin.Group("/reviews"), db)
	users.RegisterAdminRoutesWithGroup(admin.Group("/users"), db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
