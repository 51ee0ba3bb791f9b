package bookmarks

type ListBookmarksQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"30" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateBookmarkPayload struct {
	BookID string `json:"book_id" validate:"required,uuid4"`
}
