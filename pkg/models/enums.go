package models

// PromotionStatus is the paid promotion tier of a book.
type PromotionStatus string

const (
	PromotionStatusNone  PromotionStatus = "None"
	PromotionStatusBasic PromotionStatus = "Basic"
	PromotionStatusPro   PromotionStatus = "Pro"
)

var PromotionStatuses = []PromotionStatus{
	PromotionStatusNone,
	PromotionStatusBasic,
	PromotionStatusPro,
}

func (s PromotionStatus) Valid() bool {
	switch s {
	case PromotionStatusNone, PromotionStatusBasic, PromotionStatusPro:
		return true
	}
	return false
}

// BookCondition uses the schema.org OfferItemCondition names.
type BookCondition string

const (
	BookConditionNew         BookCondition = "https://schema.org/NewCondition"
	BookConditionRefurbished BookCondition = "https://schema.org/RefurbishedCondition"
	BookConditionDamaged     BookCondition = "https://schema.org/DamagedCondition"
	BookConditionUsed        BookCondition = "https://schema.org/UsedCondition"
)

var BookConditions = []BookCondition{
	BookConditionNew,
	BookConditionRefurbished,
	BookConditionDamaged,
	BookConditionUsed,
}

func (c BookCondition) Valid() bool {
	for _, v := range BookConditions {
		if c == v {
			return true
		}
	}
	return false
}

const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)
