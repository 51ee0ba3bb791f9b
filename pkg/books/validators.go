package books

import "github.com/shelfmark/shelfmark/pkg/models"

type ListBooksQuery struct {
	Limit      int     `query:"limit" json:"limit,omitempty" default:"30" validate:"min=1,max=100"`
	Offset     int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Title      *string `query:"title" json:"title,omitempty" mod:"trim" validate:"omitempty,max=255"`
	Author     *string `query:"author" json:"author,omitempty" mod:"trim" validate:"omitempty,max=255"`
	Condition  *string `query:"condition" json:"condition,omitempty" validate:"omitempty,oneof=https://schema.org/NewCondition https://schema.org/RefurbishedCondition https://schema.org/DamagedCondition https://schema.org/UsedCondition"`
	OrderTitle *string `query:"order[title]" json:"order[title],omitempty" validate:"omitempty,oneof=asc desc"`
}

// BookPayload is the body of both create and full update. Title and author
// are not accepted; they always come from the catalog.
type BookPayload struct {
	Book            string                  `json:"book" mod:"trim" validate:"required,https_url"`
	Condition       models.BookCondition    `json:"condition" validate:"required,oneof=https://schema.org/NewCondition https://schema.org/RefurbishedCondition https://schema.org/DamagedCondition https://schema.org/UsedCondition"`
	IsPromoted      *bool                   `json:"is_promoted,omitempty"`
	PromotionStatus *models.PromotionStatus `json:"promotion_status,omitempty" validate:"omitempty,oneof=None Basic Pro"`
	Slug            *string                 `json:"slug,omitempty" validate:"omitempty,slug"`
}

func (p BookPayload) writeRequest(op Operation, existing *models.Book) BookWriteRequest {
	return BookWriteRequest{
		Operation:       op,
		Existing:        existing,
		Book:            p.Book,
		Condition:       p.Condition,
		IsPromoted:      p.IsPromoted,
		PromotionStatus: p.PromotionStatus,
		Slug:            p.Slug,
	}
}

type SetPromotionPayload struct {
	PromotionStatus models.PromotionStatus `json:"promotion_status" validate:"required,oneof=None Basic Pro"`
}

type SetCategoriesPayload struct {
	CategoryIDs []int `json:"category_ids" validate:"max=50,dive,min=1"`
}
