package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ReviewRatingMin = 0
	ReviewRatingMax = 5
)

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID          string    `bun:",pk" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	BookID      string    `bun:",notnull" json:"book_id"`
	Book        *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	UserID      string    `bun:",notnull" json:"user_id"`
	User        *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Body        string    `bun:",notnull" json:"body"`
	Rating      int       `bun:",notnull" json:"rating"`
	Letter      *string   `json:"letter"`
	PublishedAt time.Time `bun:",notnull" json:"published_at"`
}
