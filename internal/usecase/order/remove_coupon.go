package order

import (
	"context"

	"github.com/salonworks/booking-api/internal/audit"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

type RemoveCoupon struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRemoveCoupon(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RemoveCoupon {
	return &RemoveCoupon{
		repo:  repo,
		audit: audit,
	}
}

// Execute unbinds the coupon, restores the pre-discount total exactly
// and releases one usage of the coupon.
func (uc *RemoveCoupon) Execute(
	ctx context.Context,
	orderID string,
) (*models.Order, error) {

	o, err := uc.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if domain.Status(o.Status) != domain.StatusPending {
		return nil, httperr.ErrBusiness("order_not_modifiable")
	}
	if o.CouponID == nil {
		return nil, httperr.ErrBusiness("no_coupon_applied")
	}

	couponID := *o.CouponID

	o.CouponID = nil
	o.Coupon = nil
	o.DiscountAmount = 0
	o.FinalAmount = o.TotalAmount

	if err := uc.repo.RemoveCoupon(ctx, o, couponID); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &o.UserID,
		Action:   "coupon_removed",
		Entity:   "order",
		EntityID: &o.ID,
	})

	return o, nil
}
