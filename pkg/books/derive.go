package books

import "github.com/shelfmark/shelfmark/pkg/models"

const slugPrefix = "book-"

// DeriveSlug returns the default slug for a book id. Distinct ids always give
// distinct slugs.
func DeriveSlug(id string) string {
	return slugPrefix + id
}

// DerivePromotionStatus maps the legacy is_promoted toggle onto a tier. It
// never yields Pro; see SetPromotionStatus for that.
func DerivePromotionStatus(isPromoted bool) models.PromotionStatus {
	if isPromoted {
		return models.PromotionStatusBasic
	}
	return models.PromotionStatusNone
}

// ResolvePromotionStatus decides the tier a write ends up with:
//
//  1. an explicit promotion_status wins,
//  2. otherwise is_promoted is derived through DerivePromotionStatus,
//  3. otherwise current is kept (None for a new book).
func ResolvePromotionStatus(current models.PromotionStatus, explicit *models.PromotionStatus, isPromoted *bool) models.PromotionStatus {
	switch {
	case explicit != nil:
		return *explicit
	case isPromoted != nil:
		return DerivePromotionStatus(*isPromoted)
	case current == "":
		return models.PromotionStatusNone
	default:
		return current
	}
}
