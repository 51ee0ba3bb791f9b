package reviews

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/errcodes"
	"github.com/shelfmark/shelfmark/pkg/models"
)

type handler struct {
	reviewService *Service
}

// parseID returns the named path param when it is a well-formed id.
func parseID(c echo.Context, name, resource string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", errcodes.NotFound(resource)
	}
	return id.String(), nil
}

func (h *handler) listForBook(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := parseID(c, "id", "Book")
	if err != nil {
		return err
	}

	params := ListReviewsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListReviewsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		BookID: &bookID,
	}
	if params.Mine {
		userID, ok := auth.GetUserIDFromContext(c)
		if !ok {
			return errcodes.Unauthorized("Sign in to list your own reviews.")
		}
		opts.UserID = &userID
	}

	reviews, total, err := h.reviewService.ListReviewsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Reviews []*models.Review `json:"reviews"`
		Total   int              `json:"total"`
	}{reviews, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := AdminListReviewsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reviews, total, err := h.reviewService.ListReviewsWithTotal(ctx, ListReviewsOptions{
		Limit:          &params.Limit,
		Offset:         &params.Offset,
		BookID:         params.BookID,
		UserID:         params.UserID,
		PublishedMonth: params.PublishedMonth,
		MinRating:      params.MinRating,
		WithUser:       true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Reviews []*models.Review `json:"reviews"`
		Total   int              `json:"total"`
	}{reviews, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := parseID(c, "id", "Book")
	if err != nil {
		return err
	}

	user, ok := auth.GetUserFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	params := CreateReviewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	review := &models.Review{
		BookID: bookID,
		UserID: user.ID,
		Body:   params.Body,
		Rating: *params.Rating,
		Letter: params.Letter,
	}
	if err := h.reviewService.CreateReview(ctx, review); err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("review created", logger.Data{"review_id": review.ID, "book_id": bookID})

	review, err = h.reviewService.RetrieveReview(ctx, RetrieveReviewOptions{ID: &review.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, review))
}

// delete lets authors remove their own reviews and admins remove any.
func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c, "id", "Review")
	if err != nil {
		return err
	}

	user, ok := auth.GetUserFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Authentication required.")
	}

	review, err := h.reviewService.RetrieveReview(ctx, RetrieveReviewOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}
	if review.UserID != user.ID && !user.IsAdmin() {
		// Don't reveal other users' reviews by id.
		return errcodes.NotFound("Review")
	}

	if err := h.reviewService.DeleteReview(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
