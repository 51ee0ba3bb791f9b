package bookmarks

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
)

type handler struct {
	bookmarkService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	params := ListBookmarksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	bookmarks, total, err := h.bookmarkService.ListBookmarksWithTotal(ctx, ListBookmarksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		UserID: &userID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Bookmarks []*models.Bookmark `json:"bookmarks"`
		Total     int                `json:"total"`
	}{bookmarks, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	params := CreateBookmarkPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	bookmark := &models.Bookmark{BookID: params.BookID, UserID: userID}
	if err := h.bookmarkService.CreateBookmark(ctx, bookmark); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, bookmark))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := auth.GetUserIDFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Bookmark")
	}

	if err := h.bookmarkService.DeleteBookmark(ctx, id.String(), userID); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
