package models

import "time"

// Coupon discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Coupon struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"coupon_id"`

	Code        string `gorm:"size:255;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// DiscountValue is a 0-100 percent for percentage coupons and a
	// minor-unit amount for fixed coupons.
	DiscountType  string `gorm:"size:50;not null" json:"discount_type"`
	DiscountValue int64  `gorm:"not null" json:"discount_value"`

	MinOrderAmount    *int64 `json:"min_order_amount"`
	MaxDiscountAmount *int64 `json:"max_discount_amount"`

	UsageLimit *int `json:"usage_limit"`
	UsedCount  int  `gorm:"not null;default:0" json:"used_count"`

	IsActive bool       `gorm:"not null;default:true" json:"is_active"`
	StartAt  *time.Time `json:"start_at"`
	EndAt    *time.Time `json:"end_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidDiscountType(t string) bool {
	return t == DiscountPercentage || t == DiscountFixed
}
