package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/salonworks/booking-api/internal/audit"
	coupondomain "github.com/salonworks/booking-api/internal/domain/coupon"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateOrderItem struct {
	ProductID string
	Quantity  int
	Message   string
}

type CreateOrderInput struct {
	UserID        string
	AppointmentID *string
	Items         []CreateOrderItem
	CouponCode    string
	Notes         string
}

// ======================================================
// USE CASE
// ======================================================

type CreateOrder struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateOrder(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateOrder {
	return &CreateOrder{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute recomputes the order amounts from current catalog prices,
// never from client-supplied totals. Stock for physical goods is
// consumed in the same transaction that creates the order.
func (uc *CreateOrder) Execute(
	ctx context.Context,
	in CreateOrderInput,
) (*models.Order, error) {

	if len(in.Items) == 0 {
		return nil, httperr.ErrBusiness("empty_order")
	}

	if _, err := uc.repo.GetUser(ctx, in.UserID); err != nil {
		return nil, httperr.ErrBusiness("user_not_found")
	}

	if in.AppointmentID != nil {
		if _, err := uc.repo.GetAppointment(ctx, *in.AppointmentID); err != nil {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
	}

	orderID := uuid.NewString()

	var (
		details  []models.OrderDetail
		subtotal int64
		stock    []domain.StockDelta
	)

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, httperr.ErrBusiness("invalid_quantity")
		}

		product, err := uc.repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, httperr.ErrBusiness("product_not_found")
		}
		if !product.IsActive {
			return nil, httperr.ErrBusiness("product_inactive")
		}

		lineTotal := product.Price * int64(item.Quantity)
		subtotal += lineTotal

		details = append(details, models.OrderDetail{
			ID:           uuid.NewString(),
			OrderID:      orderID,
			ProductID:    product.ID,
			Quantity:     item.Quantity,
			PricePerItem: product.Price,
			TotalPrice:   lineTotal,
			Message:      item.Message,
		})

		if !product.IsService {
			stock = append(stock, domain.StockDelta{
				ProductID: product.ID,
				Delta:     -item.Quantity,
			})
		}
	}

	o := &models.Order{
		ID:            orderID,
		UserID:        in.UserID,
		AppointmentID: in.AppointmentID,
		TotalAmount:   subtotal,
		FinalAmount:   subtotal,
		Status:        string(domain.InitialStatus()),
		Notes:         in.Notes,
		Details:       details,
	}

	if in.CouponCode != "" {
		c, err := uc.repo.GetCouponByCode(ctx, in.CouponCode)
		if err != nil {
			return nil, httperr.ErrBusiness(coupondomain.CodeNotFound)
		}
		if err := coupondomain.Validate(c, subtotal, timezone.Now()); err != nil {
			return nil, err
		}

		discount := coupondomain.Discount(c, subtotal)
		o.CouponID = &c.ID
		o.DiscountAmount = discount
		o.FinalAmount = subtotal - discount
	}

	if err := uc.repo.CreateOrder(ctx, o, stock); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "order_created",
		Entity:   "order",
		EntityID: &o.ID,
	})

	return o, nil
}
