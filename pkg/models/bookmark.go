package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Bookmark struct {
	bun.BaseModel `bun:"table:bookmarks,alias:bm"`

	ID           string    `bun:",pk" json:"id"`
	BookID       string    `bun:",notnull" json:"book_id"`
	Book         *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	UserID       string    `bun:",notnull" json:"user_id"`
	BookmarkedAt time.Time `bun:",notnull" json:"bookmarked_at"`
}
