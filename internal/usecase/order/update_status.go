package order

import (
	"context"

	"github.com/salonworks/booking-api/internal/audit"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/models"
)

type UpdateStatusInput struct {
	OrderID string
	Status  string
}

type UpdateStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateStatus {
	return &UpdateStatus{
		repo:  repo,
		audit: audit,
	}
}

// Execute moves an order along pending -> confirmed -> paid ->
// completed. Cancelling restores physical stock and releases the
// coupon usage while keeping the amounts for the record.
func (uc *UpdateStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Order, error) {

	o, err := uc.repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	current := domain.Status(o.Status)
	target := domain.Status(in.Status)

	if err := domain.CanTransition(current, target); err != nil {
		return nil, err
	}

	o.Status = string(target)

	if target == domain.StatusCancelled {
		var stock []domain.StockDelta
		for _, d := range o.Details {
			if d.Product.IsService {
				continue
			}
			stock = append(stock, domain.StockDelta{
				ProductID: d.ProductID,
				Delta:     d.Quantity,
			})
		}

		if err := uc.repo.CancelOrder(ctx, o, stock, o.CouponID); err != nil {
			return nil, err
		}
	} else {
		if err := uc.repo.SaveOrder(ctx, o); err != nil {
			return nil, err
		}
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &o.UserID,
		Action:   "order_status_" + string(target),
		Entity:   "order",
		EntityID: &o.ID,
	})

	return o, nil
}
