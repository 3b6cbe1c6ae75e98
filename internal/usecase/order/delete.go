package order

import (
	"context"

	"github.com/salonworks/booking-api/internal/audit"
	domain "github.com/salonworks/booking-api/internal/domain/order"
)

type DeleteOrder struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteOrder(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *DeleteOrder {
	return &DeleteOrder{
		repo:  repo,
		audit: audit,
	}
}

// Execute hard-deletes the order together with its line items. The
// cascade is explicit in the repository transaction.
func (uc *DeleteOrder) Execute(ctx context.Context, orderID string) error {
	o, err := uc.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if err := uc.repo.DeleteOrder(ctx, o); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &o.UserID,
		Action:   "order_deleted",
		Entity:   "order",
		EntityID: &o.ID,
	})

	return nil
}
