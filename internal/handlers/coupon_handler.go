package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/cache"
	coupondomain "github.com/salonworks/booking-api/internal/domain/coupon"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/timezone"
)

type CouponHandler struct {
	db    *gorm.DB
	cache *cache.CouponCache
}

func NewCouponHandler(db *gorm.DB, couponCache *cache.CouponCache) *CouponHandler {
	return &CouponHandler{db: db, cache: couponCache}
}

// --------- Requests ---------

type CouponPayload struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	DiscountType  string `json:"discount_type" binding:"required"`
	DiscountValue int64  `json:"discount_value" binding:"required,min=1"`

	MinOrderAmount    *int64 `json:"min_order_amount,omitempty"`
	MaxDiscountAmount *int64 `json:"max_discount_amount,omitempty"`
	UsageLimit        *int   `json:"usage_limit,omitempty"`

	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
}

type UpdateCouponRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	DiscountValue     *int64 `json:"discount_value,omitempty"`
	MinOrderAmount    *int64 `json:"min_order_amount,omitempty"`
	MaxDiscountAmount *int64 `json:"max_discount_amount,omitempty"`
	UsageLimit        *int   `json:"usage_limit,omitempty"`

	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
}

type BulkCouponsRequest struct {
	Coupons []CouponPayload `json:"coupons" binding:"required,min=1,dive"`
}

type ValidateCouponRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"min=0"`
}

type SetCouponStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type DuplicateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (p *CouponPayload) validate() error {
	if !models.ValidDiscountType(p.DiscountType) {
		return httperr.ErrBusiness("invalid_discount_type")
	}
	if p.DiscountType == models.DiscountPercentage && p.DiscountValue > 100 {
		return httperr.ErrBusiness("invalid_discount_value")
	}
	if p.StartAt != nil && p.EndAt != nil && p.EndAt.Before(*p.StartAt) {
		return httperr.ErrBusiness("invalid_validity_window")
	}
	return nil
}

func (p *CouponPayload) toModel() models.Coupon {
	return models.Coupon{
		ID:                uuid.NewString(),
		Code:              strings.ToUpper(strings.TrimSpace(p.Code)),
		Name:              p.Name,
		Description:       p.Description,
		DiscountType:      p.DiscountType,
		DiscountValue:     p.DiscountValue,
		MinOrderAmount:    p.MinOrderAmount,
		MaxDiscountAmount: p.MaxDiscountAmount,
		UsageLimit:        p.UsageLimit,
		IsActive:          true,
		StartAt:           p.StartAt,
		EndAt:             p.EndAt,
	}
}

// --------- Lookup ---------

// byCode resolves a coupon, trying the cache before the database.
func (h *CouponHandler) byCode(c *gin.Context, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if cached := h.cache.Get(c.Request.Context(), code); cached != nil {
		return cached, nil
	}

	var coupon models.Coupon
	if err := h.db.Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}

	h.cache.Set(c.Request.Context(), &coupon)
	return &coupon, nil
}

// --------- CRUD ---------

func (h *CouponHandler) List(c *gin.Context) {
	q := h.db.Model(&models.Coupon{})

	if active := c.Query("active"); active == "true" {
		q = q.Where("is_active = ?", true)
	} else if active == "false" {
		q = q.Where("is_active = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(c, err)
		return
	}

	var coupons []models.Coupon
	if err := q.
		Order("created_at DESC").
		Offset(offsetParam(c)).
		Limit(limitParam(c)).
		Find(&coupons).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.Paged(c, coupons, total)
}

func (h *CouponHandler) Get(c *gin.Context) {
	var coupon models.Coupon
	if err := h.db.Where("id = ?", c.Param("id")).First(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, coupon)
}

func (h *CouponHandler) GetByCode(c *gin.Context) {
	coupon, err := h.byCode(c, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, coupon)
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req CouponPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	coupon := req.toModel()

	var count int64
	h.db.Model(&models.Coupon{}).Where("code = ?", coupon.Code).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "coupon_code_taken", "Code already exists.")
		return
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// Bulk creates a batch atomically; one bad coupon rejects them all.
func (h *CouponHandler) Bulk(c *gin.Context) {
	var req BulkCouponsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	coupons := make([]models.Coupon, 0, len(req.Coupons))
	for i := range req.Coupons {
		if err := req.Coupons[i].validate(); err != nil {
			writeError(c, err)
			return
		}
		coupons = append(coupons, req.Coupons[i].toModel())
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for i := range coupons {
			var count int64
			tx.Model(&models.Coupon{}).
				Where("code = ?", coupons[i].Code).
				Count(&count)
			if count > 0 {
				return httperr.ErrBusiness("coupon_code_taken")
			}
			if err := tx.Create(&coupons[i]).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": len(coupons)})
}

func (h *CouponHandler) Update(c *gin.Context) {
	var coupon models.Coupon
	if err := h.db.Where("id = ?", c.Param("id")).First(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		coupon.Name = *req.Name
	}
	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.DiscountValue != nil {
		if *req.DiscountValue <= 0 ||
			(coupon.DiscountType == models.DiscountPercentage && *req.DiscountValue > 100) {
			httperr.BadRequest(c, "invalid_discount_value", "Discount value out of range.")
			return
		}
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinOrderAmount != nil {
		coupon.MinOrderAmount = req.MinOrderAmount
	}
	if req.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = req.UsageLimit
	}
	if req.StartAt != nil {
		coupon.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		coupon.EndAt = req.EndAt
	}
	if coupon.StartAt != nil && coupon.EndAt != nil &&
		coupon.EndAt.Before(*coupon.StartAt) {
		httperr.BadRequest(c, "invalid_validity_window", "End precedes start.")
		return
	}

	if err := h.db.Save(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), coupon.Code)
	httpresp.OK(c, coupon)
}

func (h *CouponHandler) SetStatus(c *gin.Context) {
	var req SetCouponStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var coupon models.Coupon
	if err := h.db.Where("id = ?", c.Param("id")).First(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := h.db.Model(&coupon).Update("is_active", *req.IsActive).Error; err != nil {
		writeError(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), coupon.Code)
	httpresp.OK(c, coupon)
}

// Duplicate clones an existing coupon under a new code with a fresh
// usage counter.
func (h *CouponHandler) Duplicate(c *gin.Context) {
	var req DuplicateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var source models.Coupon
	if err := h.db.Where("id = ?", c.Param("id")).First(&source).Error; err != nil {
		writeError(c, err)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var count int64
	h.db.Model(&models.Coupon{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		httperr.Conflict(c, "coupon_code_taken", "Code already exists.")
		return
	}

	clone := source
	clone.ID = uuid.NewString()
	clone.Code = code
	clone.UsedCount = 0
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	if err := h.db.Create(&clone).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clone)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	var coupon models.Coupon
	if err := h.db.Where("id = ?", c.Param("id")).First(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	var refs int64
	h.db.Model(&models.Order{}).Where("coupon_id = ?", coupon.ID).Count(&refs)
	if refs > 0 {
		httperr.Conflict(c, "coupon_in_use", "Coupon is referenced by orders.")
		return
	}

	if err := h.db.Delete(&coupon).Error; err != nil {
		writeError(c, err)
		return
	}

	h.cache.Invalidate(c.Request.Context(), coupon.Code)
	c.Status(http.StatusNoContent)
}

// --------- Queries ---------

// Validate answers whether a code is usable for a subtotal and what it
// would take off, without recording usage.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	coupon, err := h.byCode(c, req.Code)
	if err != nil {
		httpresp.OK(c, gin.H{
			"valid":  false,
			"reason": coupondomain.CodeNotFound,
		})
		return
	}

	if err := coupondomain.Validate(coupon, req.Subtotal, timezone.Now()); err != nil {
		reason, _ := httperr.BusinessCode(err)
		httpresp.OK(c, gin.H{
			"valid":  false,
			"reason": reason,
		})
		return
	}

	discount := coupondomain.Discount(coupon, req.Subtotal)
	httpresp.OK(c, gin.H{
		"valid":           true,
		"coupon":          coupon,
		"discount_amount": discount,
		"final_amount":    req.Subtotal - discount,
	})
}

// Available lists every coupon that would pass validation for the
// given subtotal right now.
func (h *CouponHandler) Available(c *gin.Context) {
	subtotal := int64(0)
	if s := c.Query("subtotal"); s != "" {
		if v, err := atoiPositive(s); err == nil {
			subtotal = int64(v)
		}
	}

	var coupons []models.Coupon
	if err := h.db.
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&coupons).Error; err != nil {
		writeError(c, err)
		return
	}

	now := timezone.Now()
	available := make([]models.Coupon, 0)
	for i := range coupons {
		if coupondomain.Validate(&coupons[i], subtotal, now) == nil {
			available = append(available, coupons[i])
		}
	}

	httpresp.List(c, available)
}

// Expiring lists active coupons whose window closes within N days,
// default 7.
func (h *CouponHandler) Expiring(c *gin.Context) {
	days := 7
	if d := c.Query("days"); d != "" {
		if v, err := atoiPositive(d); err == nil && v > 0 {
			days = v
		}
	}

	// UTC for the SQL binds so the comparison matches the stored times.
	now := timezone.Now().UTC()
	horizon := now.AddDate(0, 0, days)

	var coupons []models.Coupon
	if err := h.db.
		Where(
			"is_active = ? AND end_at IS NOT NULL AND end_at > ? AND end_at <= ?",
			true, now, horizon,
		).
		Order("end_at ASC").
		Find(&coupons).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, coupons)
}

// Cleanup deactivates every coupon already past its end time.
func (h *CouponHandler) Cleanup(c *gin.Context) {
	result := h.db.Model(&models.Coupon{}).
		Where("is_active = ? AND end_at IS NOT NULL AND end_at < ?",
			true, timezone.Now().UTC()).
		Update("is_active", false)
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}

	httpresp.OK(c, gin.H{"deactivated": result.RowsAffected})
}

func (h *CouponHandler) Statistics(c *gin.Context) {
	var total, active, exhausted int64

	if err := h.db.Model(&models.Coupon{}).Count(&total).Error; err != nil {
		writeError(c, err)
		return
	}
	if err := h.db.Model(&models.Coupon{}).
		Where("is_active = ?", true).
		Count(&active).Error; err != nil {
		writeError(c, err)
		return
	}
	if err := h.db.Model(&models.Coupon{}).
		Where("usage_limit IS NOT NULL AND used_count >= usage_limit").
		Count(&exhausted).Error; err != nil {
		writeError(c, err)
		return
	}

	var usage struct{ Total int64 }
	if err := h.db.Model(&models.Coupon{}).
		Select("COALESCE(SUM(used_count), 0) AS total").
		Scan(&usage).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"total_coupons": total,
		"active":        active,
		"exhausted":     exhausted,
		"total_usage":   usage.Total,
	})
}
