package coupon

import (
	"time"

	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

// Rejection codes surfaced to callers. Each failed check maps to
// exactly one of these.
const (
	CodeNotFound      = "coupon_not_found"
	CodeInactive      = "coupon_inactive"
	CodeNotStarted    = "coupon_not_started"
	CodeExpired       = "coupon_expired"
	CodeUsageLimit    = "usage_limit_reached"
	CodeMinOrderSpend = "min_order_not_met"
)

// Validate runs every eligibility check against a subtotal at a given
// instant. Checks run in a fixed order so the same coupon always fails
// with the same code. A coupon whose window ends exactly at now is
// still valid.
func Validate(c *models.Coupon, subtotal int64, now time.Time) error {
	if c == nil {
		return httperr.ErrBusiness(CodeNotFound)
	}
	if !c.IsActive {
		return httperr.ErrBusiness(CodeInactive)
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return httperr.ErrBusiness(CodeNotStarted)
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return httperr.ErrBusiness(CodeExpired)
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return httperr.ErrBusiness(CodeUsageLimit)
	}
	if c.MinOrderAmount != nil && subtotal < *c.MinOrderAmount {
		return httperr.ErrBusiness(CodeMinOrderSpend)
	}
	return nil
}

// Discount computes the amount taken off a subtotal. Percentage
// coupons use DiscountValue as a 0-100 percent and honor the optional
// per-coupon cap; fixed coupons take DiscountValue directly. The
// result never exceeds the subtotal.
func Discount(c *models.Coupon, subtotal int64) int64 {
	if c == nil || subtotal <= 0 {
		return 0
	}

	var discount int64
	switch c.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
	case models.DiscountFixed:
		discount = c.DiscountValue
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
