package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              string          `bun:",pk" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Book            string          `bun:",notnull" json:"book"`
	Title           string          `bun:",notnull" json:"title"`
	Author          *string         `json:"author"`
	Condition       BookCondition   `bun:",notnull" json:"condition"`
	PromotionStatus PromotionStatus `bun:",notnull" json:"promotion_status"`
	// IsPromoted mirrors PromotionStatus != PromotionStatusNone and is never
	// written on its own.
	IsPromoted     bool            `bun:",notnull" json:"is_promoted"`
	Slug           string          `bun:",notnull" json:"slug"`
	BookCategories []*BookCategory `bun:"rel:has-many,join:id=book_id" json:"-"`
	Categories     []*Category     `bun:"-" json:"categories"`
	Rating         *int            `bun:",scanonly" json:"rating"`
	ReviewCount    int             `bun:",scanonly" json:"review_count"`
}

// SyncPromotion keeps IsPromoted in step with PromotionStatus.
func (b *Book) SyncPromotion() {
	b.IsPromoted = b.PromotionStatus != PromotionStatusNone
}

// CollectCategories flattens the loaded join rows into Categories, sorted the
// way they were loaded.
func (b *Book) CollectCategories() {
	b.Categories = make([]*Category, 0, len(b.BookCategories))
	for _, bc := range b.BookCategories {
		if bc.Category != nil {
			b.Categories = append(b.Categories, bc.Category)
		}
	}
}

type BookCategory struct {
	bun.BaseModel `bun:"table:book_categories,alias:bc"`

	BookID     string    `bun:",pk" json:"book_id"`
	CategoryID int       `bun:",pk" json:"category_id"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}
