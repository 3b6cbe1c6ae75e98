package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/models"
)

type ProductHandler struct {
	db *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// --------- Requests ---------

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	DurationMin int    `json:"duration_min"`
	Stock       int    `json:"stock_quantity"`
	IsService   bool   `json:"is_service"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	DurationMin *int    `json:"duration_min,omitempty"`
	Stock       *int    `json:"stock_quantity,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type AdjustStockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type SetPriceRequest struct {
	Price *int64 `json:"price" binding:"required,min=0"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	q := h.db.Model(&models.Product{})

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

	var products []models.Product
	if err := q.
		Order("created_at DESC").
		Offset(offsetParam(c)).
		Limit(limitParam(c)).
		Find(&products).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.Paged(c, products, total)
}

func (h *ProductHandler) ListServices(c *gin.Context) {
	h.listByKind(c, true)
}

func (h *ProductHandler) ListGoods(c *gin.Context) {
	h.listByKind(c, false)
}

func (h *ProductHandler) listByKind(c *gin.Context, isService bool) {
	var products []models.Product
	if err := h.db.
		Where("is_service = ? AND is_active = ?", isService, true).
		Order("name ASC").
		Find(&products).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, products)
}

func (h *ProductHandler) Search(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if query == "" {
		httperr.BadRequest(c, "missing_query", "Query parameter 'q' is required.")
		return
	}

	like := "%" + query + "%"
	var products []models.Product
	if err := h.db.
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("name ASC").
		Find(&products).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, products)
}

// LowStock lists physical goods at or below a threshold, default 5.
func (h *ProductHandler) LowStock(c *gin.Context) {
	threshold := 5
	if t := c.Query("threshold"); t != "" {
		if v, err := atoiPositive(t); err == nil {
			threshold = v
		}
	}

	var products []models.Product
	if err := h.db.
		Where("is_service = ? AND stock_quantity <= ?", false, threshold).
		Order("stock_quantity ASC").
		Find(&products).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	var product models.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.IsService && req.DurationMin <= 0 {
		httperr.BadRequest(c, "invalid_duration", "Services need a positive duration.")
		return
	}

	product := models.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DurationMin:   req.DurationMin,
		StockQuantity: req.Stock,
		IsActive:      true,
		IsService:     req.IsService,
	}

	if err := h.db.Create(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var product models.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
			return
		}
		product.Price = *req.Price
	}
	if req.DurationMin != nil {
		product.DurationMin = *req.DurationMin
	}
	if req.Stock != nil {
		product.StockQuantity = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.db.Save(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, product)
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var product models.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	newQty := product.StockQuantity + *req.Delta
	if newQty < 0 {
		httperr.Conflict(c, "insufficient_stock", "Stock cannot go negative.")
		return
	}

	product.StockQuantity = newQty
	if err := h.db.Save(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, product)
}

func (h *ProductHandler) SetPrice(c *gin.Context) {
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	h.patchField(c, "price", *req.Price)
}

func (h *ProductHandler) SetStatus(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	h.patchField(c, "is_active", *req.IsActive)
}

func (h *ProductHandler) patchField(c *gin.Context, column string, value any) {
	var product models.Product
	if err := h.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := h.db.Model(&product).Update(column, value).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.Where("id = ?", id).First(&product).Error; err != nil {
		writeError(c, err)
		return
	}

	// Catalog rows referenced by history are disabled, not removed.
	var refs int64
	h.db.Model(&models.OrderDetail{}).Where("product_id = ?", id).Count(&refs)
	if refs > 0 {
		if err := h.db.Model(&product).Update("is_active", false).Error; err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("product_id = ?", id).
			Delete(&models.AppointmentService{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
