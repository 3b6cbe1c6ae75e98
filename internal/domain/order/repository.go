package order

import (
	"context"

	"github.com/salonworks/booking-api/internal/models"
)

// StockDelta adjusts a product's stock inside the same transaction as
// the order write it belongs to. Negative deltas consume stock.
type StockDelta struct {
	ProductID string
	Delta     int
}

type ListFilter struct {
	UserID string
	Status string
	Offset int
	Limit  int
}

type Statistics struct {
	TotalOrders  int64            `json:"total_orders"`
	TotalRevenue int64            `json:"total_revenue"`
	ByStatus     map[string]int64 `json:"by_status"`
}

type Repository interface {
	// -------- Lookups --------
	GetUser(
		ctx context.Context,
		id string,
	) (*models.User, error)

	GetProduct(
		ctx context.Context,
		id string,
	) (*models.Product, error)

	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	GetCouponByID(
		ctx context.Context,
		id string,
	) (*models.Coupon, error)

	GetCouponByCode(
		ctx context.Context,
		code string,
	) (*models.Coupon, error)

	// -------- Order (read) --------
	GetOrder(
		ctx context.Context,
		id string,
	) (*models.Order, error)

	ListOrders(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Order, int64, error)

	GetStatistics(
		ctx context.Context,
	) (*Statistics, error)

	// -------- Order (write) --------
	CreateOrder(
		ctx context.Context,
		o *models.Order,
		stock []StockDelta,
	) error

	SaveOrder(
		ctx context.Context,
		o *models.Order,
	) error

	CancelOrder(
		ctx context.Context,
		o *models.Order,
		stock []StockDelta,
		releaseCouponID *string,
	) error

	DeleteOrder(
		ctx context.Context,
		o *models.Order,
	) error

	// -------- Coupon binding --------
	ApplyCoupon(
		ctx context.Context,
		o *models.Order,
		releaseCouponID *string,
	) error

	RemoveCoupon(
		ctx context.Context,
		o *models.Order,
		couponID string,
	) error

	// -------- Details --------
	GetDetail(
		ctx context.Context,
		orderID string,
		detailID string,
	) (*models.OrderDetail, error)

	AddDetail(
		ctx context.Context,
		d *models.OrderDetail,
		o *models.Order,
		stock []StockDelta,
	) error

	SaveDetail(
		ctx context.Context,
		d *models.OrderDetail,
		o *models.Order,
		stock []StockDelta,
	) error

	DeleteDetail(
		ctx context.Context,
		d *models.OrderDetail,
		o *models.Order,
		stock []StockDelta,
	) error
}
