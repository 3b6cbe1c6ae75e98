package order

import (
	"context"

	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

type CreateFromAppointmentInput struct {
	AppointmentID string
	CouponCode    string
	Notes         string
}

type CreateFromAppointment struct {
	create *CreateOrder
	repo   domain.Repository
}

func NewCreateFromAppointment(
	create *CreateOrder,
	repo domain.Repository,
) *CreateFromAppointment {
	return &CreateFromAppointment{
		create: create,
		repo:   repo,
	}
}

// Execute checks out an appointment: one line item per attached active
// service at its current price, billed to the appointment's customer.
func (uc *CreateFromAppointment) Execute(
	ctx context.Context,
	in CreateFromAppointmentInput,
) (*models.Order, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	var items []CreateOrderItem
	for _, svc := range ap.Services {
		if !svc.Product.IsActive {
			continue
		}
		items = append(items, CreateOrderItem{
			ProductID: svc.ProductID,
			Quantity:  1,
		})
	}

	if len(items) == 0 {
		return nil, httperr.ErrBusiness("no_services_attached")
	}

	return uc.create.Execute(ctx, CreateOrderInput{
		UserID:        ap.UserID,
		AppointmentID: &ap.ID,
		Items:         items,
		CouponCode:    in.CouponCode,
		Notes:         in.Notes,
	})
}
