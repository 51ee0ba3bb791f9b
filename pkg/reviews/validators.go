package reviews

type ListReviewsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"30" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
	// Mine narrows the list to the signed-in caller's reviews.
	Mine bool `query:"mine" json:"mine,omitempty"`
}

type AdminListReviewsQuery struct {
	Limit          int     `query:"limit" json:"limit,omitempty" default:"30" validate:"min=1,max=100"`
	Offset         int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	BookID         *string `query:"book_id" json:"book_id,omitempty" validate:"omitempty,uuid4"`
	UserID         *string `query:"user_id" json:"user_id,omitempty" validate:"omitempty,uuid4"`
	PublishedMonth *string `query:"published_month" json:"published_month,omitempty" validate:"omitempty,month"`
	MinRating      *int    `query:"min_rating" json:"min_rating,omitempty" validate:"omitempty,min=0,max=5"`
}

type CreateReviewPayload struct {
	Body   string  `json:"body" mod:"trim" validate:"required,max=10000"`
	Rating *int    `json:"rating" validate:"required,min=0,max=5"`
	Letter *string `json:"letter,omitempty" mod:"trim" validate:"omitempty,max=255"`
}
