package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/cache"
	dbpkg "github.com/salonworks/booking-api/internal/db"
	"github.com/salonworks/booking-api/internal/models"
)

func newCouponEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbpkg.Migrate(db))

	handler := NewCouponHandler(db, cache.NewCouponCache(nil))

	router := gin.New()
	router.POST("/coupons/validate", handler.Validate)
	router.GET("/coupons/available", handler.Available)
	router.GET("/coupons/expiring", handler.Expiring)
	router.POST("/coupons/cleanup", handler.Cleanup)

	return db, router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidateCouponSuccess(t *testing.T) {
	db, router := newCouponEnv(t)

	require.NoError(t, db.Create(&models.Coupon{
		ID:            uuid.NewString(),
		Code:          "TEN",
		Name:          "Ten percent",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	}).Error)

	rec := postJSON(t, router, "/coupons/validate", gin.H{
		"code":     "TEN",
		"subtotal": 1300,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid          bool  `json:"valid"`
		DiscountAmount int64 `json:"discount_amount"`
		FinalAmount    int64 `json:"final_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Valid)
	require.Equal(t, int64(130), resp.DiscountAmount)
	require.Equal(t, int64(1170), resp.FinalAmount)
}

func TestValidateCouponDistinctReasons(t *testing.T) {
	db, router := newCouponEnv(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	limit := 1
	minSpend := int64(5000)

	coupons := []models.Coupon{
		{
			Code: "EXPIRED", DiscountType: models.DiscountFixed,
			DiscountValue: 100, IsActive: true, EndAt: &past,
		},
		{
			Code: "SOON", DiscountType: models.DiscountFixed,
			DiscountValue: 100, IsActive: true, StartAt: &future,
		},
		{
			Code: "OFF", DiscountType: models.DiscountFixed,
			DiscountValue: 100, IsActive: false,
		},
		{
			Code: "SPENT", DiscountType: models.DiscountFixed,
			DiscountValue: 100, IsActive: true,
			UsageLimit: &limit, UsedCount: 1,
		},
		{
			Code: "BIGCART", DiscountType: models.DiscountFixed,
			DiscountValue: 100, IsActive: true,
			MinOrderAmount: &minSpend,
		},
	}
	for i := range coupons {
		coupons[i].ID = uuid.NewString()
		coupons[i].Name = coupons[i].Code
		// Select("*") keeps the zero-value IsActive=false from being
		// dropped in favor of the column's default:true.
		require.NoError(t, db.Select("*").Create(&coupons[i]).Error)
	}

	expect := map[string]string{
		"EXPIRED": "coupon_expired",
		"SOON":    "coupon_not_started",
		"OFF":     "coupon_inactive",
		"SPENT":   "usage_limit_reached",
		"BIGCART": "min_order_not_met",
		"MISSING": "coupon_not_found",
	}

	for code, reason := range expect {
		rec := postJSON(t, router, "/coupons/validate", gin.H{
			"code":     code,
			"subtotal": 1000,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Valid  bool   `json:"valid"`
			Reason string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Valid, code)
		require.Equal(t, reason, resp.Reason, code)
	}
}

func TestAvailableFiltersBySubtotal(t *testing.T) {
	db, router := newCouponEnv(t)

	minSpend := int64(2000)
	for _, c := range []models.Coupon{
		{Code: "ANY", DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true},
		{Code: "BIG", DiscountType: models.DiscountFixed, DiscountValue: 300, IsActive: true, MinOrderAmount: &minSpend},
	} {
		c.ID = uuid.NewString()
		c.Name = c.Code
		require.NoError(t, db.Create(&c).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/coupons/available?subtotal=1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []models.Coupon `json:"data"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp.Total)
	require.Equal(t, "ANY", resp.Data[0].Code)
}

func TestValidateCouponZeroSubtotal(t *testing.T) {
	db, router := newCouponEnv(t)

	minSpend := int64(5000)
	for _, c := range []models.Coupon{
		{Code: "FLAT", DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true},
		{Code: "BIGCART", DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true, MinOrderAmount: &minSpend},
	} {
		c.ID = uuid.NewString()
		c.Name = c.Code
		require.NoError(t, db.Create(&c).Error)
	}

	// A zero subtotal is still a validatable request, not a 400.
	rec := postJSON(t, router, "/coupons/validate", gin.H{
		"code":     "BIGCART",
		"subtotal": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Valid)
	require.Equal(t, "min_order_not_met", resp.Reason)

	rec = postJSON(t, router, "/coupons/validate", gin.H{
		"code":     "FLAT",
		"subtotal": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ok struct {
		Valid          bool  `json:"valid"`
		DiscountAmount int64 `json:"discount_amount"`
		FinalAmount    int64 `json:"final_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	require.True(t, ok.Valid)
	require.Zero(t, ok.DiscountAmount)
	require.Zero(t, ok.FinalAmount)
}

func TestExpiringListsOnlyClosingWindow(t *testing.T) {
	db, router := newCouponEnv(t)

	soon := time.Now().Add(48 * time.Hour)
	far := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-time.Hour)
	for _, c := range []struct {
		code string
		end  *time.Time
	}{
		{"SOON", &soon},
		{"FAR", &far},
		{"GONE", &past},
		{"OPEN", nil},
	} {
		require.NoError(t, db.Create(&models.Coupon{
			ID:            uuid.NewString(),
			Code:          c.code,
			Name:          c.code,
			DiscountType:  models.DiscountFixed,
			DiscountValue: 100,
			IsActive:      true,
			EndAt:         c.end,
		}).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/coupons/expiring?days=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Coupon `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "SOON", resp.Data[0].Code)
}

func TestCleanupDeactivatesExpired(t *testing.T) {
	db, router := newCouponEnv(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	for _, c := range []models.Coupon{
		{Code: "DEAD", DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true, EndAt: &past},
		{Code: "LIVE", DiscountType: models.DiscountFixed, DiscountValue: 100, IsActive: true, EndAt: &future},
	} {
		c.ID = uuid.NewString()
		c.Name = c.Code
		require.NoError(t, db.Create(&c).Error)
	}

	rec := postJSON(t, router, "/coupons/cleanup", gin.H{})
	require.Equal(t, http.StatusOK, rec.Code)

	var dead, live models.Coupon
	require.NoError(t, db.First(&dead, "code = ?", "DEAD").Error)
	require.NoError(t, db.First(&live, "code = ?", "LIVE").Error)
	require.False(t, dead.IsActive)
	require.True(t, live.IsActive)
}
