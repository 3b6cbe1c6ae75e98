package order

import (
	"context"

	"github.com/salonworks/booking-api/internal/audit"
	coupondomain "github.com/salonworks/booking-api/internal/domain/coupon"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/timezone"
)

type ApplyCouponInput struct {
	OrderID string
	Code    string
}

type ApplyCoupon struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewApplyCoupon(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *ApplyCoupon {
	return &ApplyCoupon{
		repo:  repo,
		audit: audit,
	}
}

// Execute binds a coupon to a pending order and rewrites the amounts.
// The discount is computed against the pre-discount total. Applying a
// different code replaces the current coupon and releases its usage;
// re-applying the same code is rejected.
func (uc *ApplyCoupon) Execute(
	ctx context.Context,
	in ApplyCouponInput,
) (*models.Order, error) {

	o, err := uc.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if domain.Status(o.Status) != domain.StatusPending {
		return nil, httperr.ErrBusiness("order_not_modifiable")
	}

	c, err := uc.repo.GetCouponByCode(ctx, in.Code)
	if err != nil {
		return nil, httperr.ErrBusiness(coupondomain.CodeNotFound)
	}

	var release *string
	if o.CouponID != nil {
		if *o.CouponID == c.ID {
			return nil, httperr.ErrBusiness("coupon_already_applied")
		}
		previous := *o.CouponID
		release = &previous
	}

	if err := coupondomain.Validate(c, o.TotalAmount, timezone.Now()); err != nil {
		return nil, err
	}

	discount := coupondomain.Discount(c, o.TotalAmount)

	o.CouponID = &c.ID
	o.DiscountAmount = discount
	o.FinalAmount = o.TotalAmount - discount

	if err := uc.repo.ApplyCoupon(ctx, o, release); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &o.UserID,
		Action:   "coupon_applied",
		Entity:   "order",
		EntityID: &o.ID,
		Metadata: map[string]string{"coupon_code": c.Code},
	})

	return o, nil
}
