package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/models"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *OrderGormRepository) GetUser(
	ctx context.Context,
	id string,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *OrderGormRepository) GetProduct(
	ctx context.Context,
	id string,
) (*models.Product, error) {

	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *OrderGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Services.Product").
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *OrderGormRepository) GetCouponByID(
	ctx context.Context,
	id string,
) (*models.Coupon, error) {

	var c models.Coupon
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *OrderGormRepository) GetCouponByCode(
	ctx context.Context,
	code string,
) (*models.Coupon, error) {

	var c models.Coupon
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// --------------------------------------------------
// Order (read)
// --------------------------------------------------

func (r *OrderGormRepository) GetOrder(
	ctx context.Context,
	id string,
) (*models.Order, error) {

	var o models.Order
	if err := r.db.WithContext(ctx).
		Preload("Details.Product").
		Preload("Coupon").
		Preload("Appointment").
		Where("id = ?", id).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderGormRepository) ListOrders(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Order, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Order{})

	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var orders []models.Order
	if err := q.
		Preload("Details.Product").
		Preload("Coupon").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *OrderGormRepository) GetStatistics(
	ctx context.Context,
) (*domain.Statistics, error) {

	stats := &domain.Statistics{ByStatus: map[string]int64{}}

	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Total int64 }
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(final_amount), 0) AS total").
		Where("status <> ?", string(domain.StatusCancelled)).
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue.Total

	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}

	return stats, nil
}

// --------------------------------------------------
// Order (write)
// --------------------------------------------------

func applyStockDeltas(tx *gorm.DB, stock []domain.StockDelta) error {
	for _, s := range stock {
		if s.Delta == 0 {
			continue
		}

		var product models.Product
		if err := tx.Where("id = ?", s.ProductID).
			First(&product).Error; err != nil {
			return err
		}

		newQty := product.StockQuantity + s.Delta
		if newQty < 0 {
			return httperr.ErrBusiness("insufficient_stock")
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", s.ProductID).
			Update("stock_quantity", newQty).Error; err != nil {
			return err
		}
	}
	return nil
}

func adjustCouponUsage(tx *gorm.DB, couponID string, delta int) error {
	return tx.Model(&models.Coupon{}).
		Where("id = ?", couponID).
		Update("used_count", gorm.Expr("used_count + ?", delta)).Error
}

func (r *OrderGormRepository) CreateOrder(
	ctx context.Context,
	o *models.Order,
	stock []domain.StockDelta,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStockDeltas(tx, stock); err != nil {
			return err
		}

		if err := tx.Create(o).Error; err != nil {
			return err
		}

		if o.CouponID != nil {
			return adjustCouponUsage(tx, *o.CouponID, 1)
		}
		return nil
	})
}

func (r *OrderGormRepository) SaveOrder(
	ctx context.Context,
	o *models.Order,
) error {
	return r.db.WithContext(ctx).
		Omit("Details", "Coupon", "Customer", "Appointment").
		Save(o).Error
}

// CancelOrder writes the cancelled order, restores physical stock and
// releases the coupon usage, all in one transaction.
func (r *OrderGormRepository) CancelOrder(
	ctx context.Context,
	o *models.Order,
	stock []domain.StockDelta,
	releaseCouponID *string,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStockDeltas(tx, stock); err != nil {
			return err
		}
		if releaseCouponID != nil {
			if err := adjustCouponUsage(tx, *releaseCouponID, -1); err != nil {
				return err
			}
		}
		return tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error
	})
}

// DeleteOrder removes the order and its details in one transaction.
// An applied coupon gets its usage count released.
func (r *OrderGormRepository) DeleteOrder(
	ctx context.Context,
	o *models.Order,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("order_id = ?", o.ID).
			Delete(&models.OrderDetail{}).Error; err != nil {
			return err
		}

		if o.CouponID != nil {
			if err := adjustCouponUsage(tx, *o.CouponID, -1); err != nil {
				return err
			}
		}

		return tx.Delete(&models.Order{}, "id = ?", o.ID).Error
	})
}

// --------------------------------------------------
// Coupon binding
// --------------------------------------------------

// ApplyCoupon binds the order's coupon and records its usage. When the
// order had a different coupon before, that one's usage is released in
// the same transaction.
func (r *OrderGormRepository) ApplyCoupon(
	ctx context.Context,
	o *models.Order,
	releaseCouponID *string,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if releaseCouponID != nil {
			if err := adjustCouponUsage(tx, *releaseCouponID, -1); err != nil {
				return err
			}
		}
		if err := tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error; err != nil {
			return err
		}
		if o.CouponID == nil {
			return nil
		}
		return adjustCouponUsage(tx, *o.CouponID, 1)
	})
}

func (r *OrderGormRepository) RemoveCoupon(
	ctx context.Context,
	o *models.Order,
	couponID string,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error; err != nil {
			return err
		}
		return adjustCouponUsage(tx, couponID, -1)
	})
}

// --------------------------------------------------
// Details
// --------------------------------------------------

func (r *OrderGormRepository) GetDetail(
	ctx context.Context,
	orderID string,
	detailID string,
) (*models.OrderDetail, error) {

	var d models.OrderDetail
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND order_id = ?", detailID, orderID).
		First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OrderGormRepository) AddDetail(
	ctx context.Context,
	d *models.OrderDetail,
	o *models.Order,
	stock []domain.StockDelta,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStockDeltas(tx, stock); err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error
	})
}

func (r *OrderGormRepository) SaveDetail(
	ctx context.Context,
	d *models.OrderDetail,
	o *models.Order,
	stock []domain.StockDelta,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStockDeltas(tx, stock); err != nil {
			return err
		}
		if err := tx.Omit("Product").Save(d).Error; err != nil {
			return err
		}
		return tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error
	})
}

func (r *OrderGormRepository) DeleteDetail(
	ctx context.Context,
	d *models.OrderDetail,
	o *models.Order,
	stock []domain.StockDelta,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStockDeltas(tx, stock); err != nil {
			return err
		}
		if err := tx.
			Delete(&models.OrderDetail{}, "id = ?", d.ID).Error; err != nil {
			return err
		}
		return tx.
			Omit("Details", "Coupon", "Customer", "Appointment").
			Save(o).Error
	})
}

// Compile-time check
var _ domain.Repository = (*OrderGormRepository)(nil)
