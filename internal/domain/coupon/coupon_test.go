package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

func activeCoupon() *models.Coupon {
	return &models.Coupon{
		ID:            "c-1",
		Code:          "WELCOME10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
}

func TestValidateOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5
	minSpend := int64(1000)

	tests := []struct {
		name     string
		mutate   func(c *models.Coupon)
		subtotal int64
		wantCode string
	}{
		{
			name:     "nil coupon",
			mutate:   nil,
			wantCode: CodeNotFound,
		},
		{
			name:     "inactive",
			mutate:   func(c *models.Coupon) { c.IsActive = false },
			wantCode: CodeInactive,
		},
		{
			name:     "not started",
			mutate:   func(c *models.Coupon) { c.StartAt = &future },
			wantCode: CodeNotStarted,
		},
		{
			name:     "expired",
			mutate:   func(c *models.Coupon) { c.EndAt = &past },
			wantCode: CodeExpired,
		},
		{
			name: "usage limit reached",
			mutate: func(c *models.Coupon) {
				c.UsageLimit = &limit
				c.UsedCount = 5
			},
			wantCode: CodeUsageLimit,
		},
		{
			name:     "below minimum spend",
			mutate:   func(c *models.Coupon) { c.MinOrderAmount = &minSpend },
			subtotal: 999,
			wantCode: CodeMinOrderSpend,
		},
		{
			// Inactive wins over expired: checks run in fixed order.
			name: "inactive and expired reports inactive",
			mutate: func(c *models.Coupon) {
				c.IsActive = false
				c.EndAt = &past
			},
			wantCode: CodeInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c *models.Coupon
			if tt.mutate != nil {
				c = activeCoupon()
				tt.mutate(c)
			}

			err := Validate(c, tt.subtotal, now)
			require.Error(t, err)
			require.True(t, httperr.IsBusiness(err, tt.wantCode),
				"got %v, want code %s", err, tt.wantCode)
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := activeCoupon()
	c.StartAt = &now
	c.EndAt = &now

	// A window closing exactly now is still valid.
	require.NoError(t, Validate(c, 500, now))
}

func TestPercentageDiscount(t *testing.T) {
	c := activeCoupon()

	require.Equal(t, int64(130), Discount(c, 1300))
	require.Equal(t, int64(1300-130), 1300-Discount(c, 1300))
}

func TestPercentageDiscountCap(t *testing.T) {
	cap := int64(50)
	c := activeCoupon()
	c.MaxDiscountAmount = &cap

	require.Equal(t, int64(50), Discount(c, 1300))
}

func TestFixedDiscountFloorsAtSubtotal(t *testing.T) {
	c := &models.Coupon{
		DiscountType:  models.DiscountFixed,
		DiscountValue: 500,
		IsActive:      true,
	}

	require.Equal(t, int64(500), Discount(c, 1300))
	require.Equal(t, int64(300), Discount(c, 300))
	require.Equal(t, int64(0), Discount(c, 0))
}

func TestFullPercentageNeverExceedsSubtotal(t *testing.T) {
	c := activeCoupon()
	c.DiscountValue = 100

	require.Equal(t, int64(1300), Discount(c, 1300))
}
