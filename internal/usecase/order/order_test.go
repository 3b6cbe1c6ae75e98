package order

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/audit"
	dbpkg "github.com/salonworks/booking-api/internal/db"
	domain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/infra/repository"
	"github.com/salonworks/booking-api/internal/models"
)

type testEnv struct {
	db   *gorm.DB
	repo domain.Repository

	customer models.User
	haircut  models.Product
	shampoo  models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbpkg.Migrate(db))

	env := &testEnv{
		db:   db,
		repo: repository.NewOrderGormRepository(db),
	}

	env.customer = models.User{
		ID:       uuid.NewString(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleCustomer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(&env.customer).Error)

	env.haircut = models.Product{
		ID:          uuid.NewString(),
		Name:        "Haircut",
		Price:       800,
		DurationMin: 45,
		IsActive:    true,
		IsService:   true,
	}
	require.NoError(t, db.Create(&env.haircut).Error)

	env.shampoo = models.Product{
		ID:            uuid.NewString(),
		Name:          "Shampoo bottle",
		Price:         250,
		StockQuantity: 10,
		IsActive:      true,
		IsService:     false,
	}
	require.NoError(t, db.Create(&env.shampoo).Error)

	return env
}

func (env *testEnv) dispatcher(t *testing.T) *audit.Dispatcher {
	t.Helper()
	return audit.NewDispatcher(audit.New(env.db))
}

func (env *testEnv) createCoupon(t *testing.T, c models.Coupon) models.Coupon {
	t.Helper()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	require.NoError(t, env.db.Create(&c).Error)
	return c
}

func TestCreateOrderRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCreateOrder(env.repo, env.dispatcher(t))

	o, err := uc.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items: []CreateOrderItem{
			{ProductID: env.haircut.ID, Quantity: 1},
			{ProductID: env.shampoo.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Equal(t, int64(800+2*250), o.TotalAmount)
	require.Equal(t, int64(0), o.DiscountAmount)
	require.Equal(t, o.TotalAmount, o.FinalAmount)
	require.Equal(t, string(domain.StatusPending), o.Status)
	require.Len(t, o.Details, 2)

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 8, shampoo.StockQuantity)

	var haircut models.Product
	require.NoError(t, env.db.First(&haircut, "id = ?", env.haircut.ID).Error)
	require.Equal(t, 0, haircut.StockQuantity)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCreateOrder(env.repo, env.dispatcher(t))

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.shampoo.ID, Quantity: 11}},
	})
	require.True(t, httperr.IsBusiness(err, "insufficient_stock"))

	var count int64
	env.db.Model(&models.Order{}).Count(&count)
	require.Zero(t, count)

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 10, shampoo.StockQuantity)
}

func TestCreateOrderWithPercentageCoupon(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCreateOrder(env.repo, env.dispatcher(t))

	coupon := env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	// Subtotal 1300, 10% off -> 1170.
	o, err := uc.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items: []CreateOrderItem{
			{ProductID: env.haircut.ID, Quantity: 1},
			{ProductID: env.shampoo.ID, Quantity: 2},
		},
		CouponCode: "TEN",
	})
	require.NoError(t, err)

	require.Equal(t, int64(1300), o.TotalAmount)
	require.Equal(t, int64(130), o.DiscountAmount)
	require.Equal(t, int64(1170), o.FinalAmount)

	var stored models.Coupon
	require.NoError(t, env.db.First(&stored, "id = ?", coupon.ID).Error)
	require.Equal(t, 1, stored.UsedCount)
}

func TestCreateOrderRejectsExpiredCoupon(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCreateOrder(env.repo, env.dispatcher(t))

	past := time.Now().Add(-time.Hour)
	env.createCoupon(t, models.Coupon{
		Code:          "OLD",
		Name:          "Expired",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 100,
		IsActive:      true,
		EndAt:         &past,
	})

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		UserID:     env.customer.ID,
		Items:      []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
		CouponCode: "OLD",
	})
	require.True(t, httperr.IsBusiness(err, "coupon_expired"))
}

func TestApplyThenRemoveCouponRestoresTotal(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	apply := NewApplyCoupon(env.repo, dispatcher)
	remove := NewRemoveCoupon(env.repo, dispatcher)

	coupon := env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(800), o.FinalAmount)

	applied, err := apply.Execute(context.Background(), ApplyCouponInput{
		OrderID: o.ID,
		Code:    "TEN",
	})
	require.NoError(t, err)
	require.Equal(t, int64(80), applied.DiscountAmount)
	require.Equal(t, int64(720), applied.FinalAmount)

	var stored models.Coupon
	require.NoError(t, env.db.First(&stored, "id = ?", coupon.ID).Error)
	require.Equal(t, 1, stored.UsedCount)

	restored, err := remove.Execute(context.Background(), o.ID)
	require.NoError(t, err)
	require.Nil(t, restored.CouponID)
	require.Equal(t, int64(0), restored.DiscountAmount)
	require.Equal(t, int64(800), restored.FinalAmount)
	require.Equal(t, o.TotalAmount, restored.FinalAmount)

	require.NoError(t, env.db.First(&stored, "id = ?", coupon.ID).Error)
	require.Zero(t, stored.UsedCount)
}

func TestApplyCouponTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	apply := NewApplyCoupon(env.repo, dispatcher)

	env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID:     env.customer.ID,
		Items:      []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
		CouponCode: "TEN",
	})
	require.NoError(t, err)

	_, err = apply.Execute(context.Background(), ApplyCouponInput{
		OrderID: o.ID,
		Code:    "TEN",
	})
	require.True(t, httperr.IsBusiness(err, "coupon_already_applied"))
}

func TestAddDetailConsumesStockBeforeCancel(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	details := NewManageDetails(env.repo)
	status := NewUpdateStatus(env.repo, dispatcher)

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.shampoo.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 7, shampoo.StockQuantity)

	_, err = details.Add(context.Background(), AddDetailInput{
		OrderID:   o.ID,
		ProductID: env.shampoo.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 5, shampoo.StockQuantity)

	// Cancel restores exactly the five bottles the order consumed.
	_, err = status.Execute(context.Background(), UpdateStatusInput{
		OrderID: o.ID,
		Status:  string(domain.StatusCancelled),
	})
	require.NoError(t, err)

	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 10, shampoo.StockQuantity)
}

func TestDetailUpdateAndRemoveAdjustStock(t *testing.T) {
	env := newTestEnv(t)
	create := NewCreateOrder(env.repo, env.dispatcher(t))
	details := NewManageDetails(env.repo)

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.shampoo.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	reloaded, err := env.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Details, 1)
	detailID := reloaded.Details[0].ID

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 8, shampoo.StockQuantity)

	qty := 4
	_, err = details.Update(context.Background(), UpdateDetailInput{
		OrderID:  o.ID,
		DetailID: detailID,
		Quantity: &qty,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 6, shampoo.StockQuantity)

	require.NoError(t, details.Remove(context.Background(), o.ID, detailID))

	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 10, shampoo.StockQuantity)
}

func TestAddDetailInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	create := NewCreateOrder(env.repo, env.dispatcher(t))
	details := NewManageDetails(env.repo)

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = details.Add(context.Background(), AddDetailInput{
		OrderID:   o.ID,
		ProductID: env.shampoo.ID,
		Quantity:  11,
	})
	require.True(t, httperr.IsBusiness(err, "insufficient_stock"))

	reloaded, err := env.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Details, 1)
	require.Equal(t, int64(800), reloaded.TotalAmount)

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 10, shampoo.StockQuantity)
}

func TestCouponCodeLookupIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	create := NewCreateOrder(env.repo, env.dispatcher(t))

	env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID:     env.customer.ID,
		Items:      []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
		CouponCode: " ten ",
	})
	require.NoError(t, err)
	require.Equal(t, int64(80), o.DiscountAmount)
	require.Equal(t, int64(720), o.FinalAmount)
}

func TestApplyCouponReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	apply := NewApplyCoupon(env.repo, dispatcher)

	ten := env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})
	flat := env.createCoupon(t, models.Coupon{
		Code:          "FLAT",
		Name:          "Flat hundred",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 100,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID:     env.customer.ID,
		Items:      []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
		CouponCode: "TEN",
	})
	require.NoError(t, err)
	require.Equal(t, int64(720), o.FinalAmount)

	replaced, err := apply.Execute(context.Background(), ApplyCouponInput{
		OrderID: o.ID,
		Code:    "FLAT",
	})
	require.NoError(t, err)
	require.Equal(t, flat.ID, *replaced.CouponID)
	require.Equal(t, int64(100), replaced.DiscountAmount)
	require.Equal(t, int64(700), replaced.FinalAmount)

	var stored models.Coupon
	require.NoError(t, env.db.First(&stored, "id = ?", ten.ID).Error)
	require.Zero(t, stored.UsedCount)
	stored = models.Coupon{} // clear primary key so the next First doesn't filter on it
	require.NoError(t, env.db.First(&stored, "id = ?", flat.ID).Error)
	require.Equal(t, 1, stored.UsedCount)
}

func TestCancelRestoresStockAndCouponUsage(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	status := NewUpdateStatus(env.repo, dispatcher)

	coupon := env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID:     env.customer.ID,
		Items:      []CreateOrderItem{{ProductID: env.shampoo.ID, Quantity: 3}},
		CouponCode: "TEN",
	})
	require.NoError(t, err)

	var shampoo models.Product
	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 7, shampoo.StockQuantity)

	cancelled, err := status.Execute(context.Background(), UpdateStatusInput{
		OrderID: o.ID,
		Status:  string(domain.StatusCancelled),
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.StatusCancelled), cancelled.Status)

	require.NoError(t, env.db.First(&shampoo, "id = ?", env.shampoo.ID).Error)
	require.Equal(t, 10, shampoo.StockQuantity)

	var stored models.Coupon
	require.NoError(t, env.db.First(&stored, "id = ?", coupon.ID).Error)
	require.Zero(t, stored.UsedCount)
}

func TestStatusTransitionValidation(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	status := NewUpdateStatus(env.repo, dispatcher)

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = status.Execute(context.Background(), UpdateStatusInput{
		OrderID: o.ID,
		Status:  string(domain.StatusPaid),
	})
	require.True(t, httperr.IsBusiness(err, "invalid_transition"))

	for _, next := range []domain.Status{
		domain.StatusConfirmed,
		domain.StatusPaid,
		domain.StatusCompleted,
	} {
		_, err = status.Execute(context.Background(), UpdateStatusInput{
			OrderID: o.ID,
			Status:  string(next),
		})
		require.NoError(t, err, "to %s", next)
	}

	_, err = status.Execute(context.Background(), UpdateStatusInput{
		OrderID: o.ID,
		Status:  string(domain.StatusCancelled),
	})
	require.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestDeleteOrderCascadesDetails(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	del := NewDeleteOrder(env.repo, dispatcher)

	coupon := env.createCoupon(t, models.Coupon{
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	})

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items: []CreateOrderItem{
			{ProductID: env.haircut.ID, Quantity: 1},
			{ProductID: env.shampoo.ID, Quantity: 1},
		},
		CouponCode: "TEN",
	})
	require.NoError(t, err)

	require.NoError(t, del.Execute(context.Background(), o.ID))

	var orders, details int64
	env.db.Model(&models.Order{}).Count(&orders)
	env.db.Model(&models.OrderDetail{}).Count(&details)
	require.Zero(t, orders)
	require.Zero(t, details)

	var stored models.Coupon
	require.NoError(t, env.db.First(&stored, "id = ?", coupon.ID).Error)
	require.Zero(t, stored.UsedCount)
}

func TestDetailMutationsKeepTotalsInSync(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	details := NewManageDetails(env.repo)

	o, err := create.Execute(context.Background(), CreateOrderInput{
		UserID: env.customer.ID,
		Items:  []CreateOrderItem{{ProductID: env.haircut.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	added, err := details.Add(context.Background(), AddDetailInput{
		OrderID:   o.ID,
		ProductID: env.shampoo.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Equal(t, int64(500), added.TotalPrice)

	reloaded, err := env.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1300), reloaded.TotalAmount)
	require.Equal(t, int64(1300), reloaded.FinalAmount)

	qty := 4
	_, err = details.Update(context.Background(), UpdateDetailInput{
		OrderID:  o.ID,
		DetailID: added.ID,
		Quantity: &qty,
	})
	require.NoError(t, err)

	reloaded, err = env.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, int64(800+4*250), reloaded.TotalAmount)

	require.NoError(t, details.Remove(context.Background(), o.ID, added.ID))

	reloaded, err = env.repo.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, int64(800), reloaded.TotalAmount)
	require.Len(t, reloaded.Details, 1)
}

func TestCreateFromAppointment(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	fromAppointment := NewCreateFromAppointment(create, env.repo)

	stylist := models.User{
		ID:       uuid.NewString(),
		Username: "bob",
		Email:    "bob@example.com",
		Role:     models.RoleStylist,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, env.db.Create(&stylist).Error)

	ap := models.Appointment{
		ID:        uuid.NewString(),
		UserID:    env.customer.ID,
		StylistID: stylist.ID,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(25 * time.Hour),
		Status:    "confirmed",
	}
	require.NoError(t, env.db.Create(&ap).Error)
	require.NoError(t, env.db.Create(&models.AppointmentService{
		AppointmentID: ap.ID,
		ProductID:     env.haircut.ID,
	}).Error)

	o, err := fromAppointment.Execute(context.Background(), CreateFromAppointmentInput{
		AppointmentID: ap.ID,
	})
	require.NoError(t, err)

	require.Equal(t, env.customer.ID, o.UserID)
	require.NotNil(t, o.AppointmentID)
	require.Equal(t, ap.ID, *o.AppointmentID)
	require.Len(t, o.Details, 1)
	require.Equal(t, int64(800), o.TotalAmount)
	require.Equal(t, 1, o.Details[0].Quantity)
}

func TestCreateFromAppointmentWithoutServices(t *testing.T) {
	env := newTestEnv(t)
	dispatcher := env.dispatcher(t)
	create := NewCreateOrder(env.repo, dispatcher)
	fromAppointment := NewCreateFromAppointment(create, env.repo)

	ap := models.Appointment{
		ID:        uuid.NewString(),
		UserID:    env.customer.ID,
		StylistID: env.customer.ID,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
		Status:    "pending",
	}
	require.NoError(t, env.db.Create(&ap).Error)

	_, err := fromAppointment.Execute(context.Background(), CreateFromAppointmentInput{
		AppointmentID: ap.ID,
	})
	require.True(t, httperr.IsBusiness(err, "no_services_attached"))
}
