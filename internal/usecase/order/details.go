package order

import (
	"context"

	"github.com/google/uuid"

	coupondomain "github.com/salonworks/booking-api/internal/domain/coupon"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type AddDetailInput struct {
	OrderID   string
	ProductID string
	Quantity  int
	Message   string
}

type UpdateDetailInput struct {
	OrderID  string
	DetailID string
	Quantity *int
	Message  *string
}

// ======================================================
// USE CASE
// ======================================================

// ManageDetails covers line-item CRUD. Every mutation recomputes the
// parent order's amounts so the stored totals never drift from the
// line items, and adjusts stock for physical goods so cancellation
// restores exactly what was consumed.
type ManageDetails struct {
	repo domain.Repository
}

func NewManageDetails(repo domain.Repository) *ManageDetails {
	return &ManageDetails{repo: repo}
}

// recalcAmounts rebuilds the order totals from its details and, when a
// coupon is bound, re-derives the discount from the new subtotal.
func (uc *ManageDetails) recalcAmounts(
	ctx context.Context,
	o *models.Order,
) error {

	var subtotal int64
	for _, d := range o.Details {
		subtotal += d.TotalPrice
	}

	o.TotalAmount = subtotal
	o.DiscountAmount = 0
	o.FinalAmount = subtotal

	if o.CouponID != nil {
		c, err := uc.repo.GetCouponByID(ctx, *o.CouponID)
		if err != nil {
			return err
		}
		discount := coupondomain.Discount(c, subtotal)
		o.DiscountAmount = discount
		o.FinalAmount = subtotal - discount
	}

	return nil
}

func (uc *ManageDetails) loadModifiable(
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
	return o, nil
}

// ======================================================
// OPERATIONS
// ======================================================

func (uc *ManageDetails) Add(
	ctx context.Context,
	in AddDetailInput,
) (*models.OrderDetail, error) {

	if in.Quantity <= 0 {
		return nil, httperr.ErrBusiness("invalid_quantity")
	}

	o, err := uc.loadModifiable(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	product, err := uc.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, httperr.ErrBusiness("product_not_found")
	}
	if !product.IsActive {
		return nil, httperr.ErrBusiness("product_inactive")
	}

	d := &models.OrderDetail{
		ID:           uuid.NewString(),
		OrderID:      o.ID,
		ProductID:    product.ID,
		Quantity:     in.Quantity,
		PricePerItem: product.Price,
		TotalPrice:   product.Price * int64(in.Quantity),
		Message:      in.Message,
	}

	o.Details = append(o.Details, *d)
	if err := uc.recalcAmounts(ctx, o); err != nil {
		return nil, err
	}

	var stock []domain.StockDelta
	if !product.IsService {
		stock = append(stock, domain.StockDelta{
			ProductID: product.ID,
			Delta:     -in.Quantity,
		})
	}

	if err := uc.repo.AddDetail(ctx, d, o, stock); err != nil {
		return nil, err
	}

	return d, nil
}

func (uc *ManageDetails) Update(
	ctx context.Context,
	in UpdateDetailInput,
) (*models.OrderDetail, error) {

	o, err := uc.loadModifiable(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	d, err := uc.repo.GetDetail(ctx, in.OrderID, in.DetailID)
	if err != nil {
		return nil, err
	}

	previousQty := d.Quantity

	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, httperr.ErrBusiness("invalid_quantity")
		}
		d.Quantity = *in.Quantity
		d.TotalPrice = d.PricePerItem * int64(d.Quantity)
	}
	if in.Message != nil {
		d.Message = *in.Message
	}

	for i := range o.Details {
		if o.Details[i].ID == d.ID {
			o.Details[i] = *d
		}
	}
	if err := uc.recalcAmounts(ctx, o); err != nil {
		return nil, err
	}

	var stock []domain.StockDelta
	if !d.Product.IsService && d.Quantity != previousQty {
		stock = append(stock, domain.StockDelta{
			ProductID: d.ProductID,
			Delta:     previousQty - d.Quantity,
		})
	}

	if err := uc.repo.SaveDetail(ctx, d, o, stock); err != nil {
		return nil, err
	}

	return d, nil
}

func (uc *ManageDetails) Remove(
	ctx context.Context,
	orderID string,
	detailID string,
) error {

	o, err := uc.loadModifiable(ctx, orderID)
	if err != nil {
		return err
	}

	d, err := uc.repo.GetDetail(ctx, orderID, detailID)
	if err != nil {
		return err
	}

	kept := o.Details[:0]
	for _, existing := range o.Details {
		if existing.ID != d.ID {
			kept = append(kept, existing)
		}
	}
	o.Details = kept

	if err := uc.recalcAmounts(ctx, o); err != nil {
		return err
	}

	var stock []domain.StockDelta
	if !d.Product.IsService {
		stock = append(stock, domain.StockDelta{
			ProductID: d.ProductID,
			Delta:     d.Quantity,
		})
	}

	return uc.repo.DeleteDetail(ctx, d, o, stock)
}
