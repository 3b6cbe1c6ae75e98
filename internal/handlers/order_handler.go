package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coupondomain "github.com/salonworks/booking-api/internal/domain/coupon"
	orderdomain "github.com/salonworks/booking-api/internal/domain/order"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
	orderuc "github.com/salonworks/booking-api/internal/usecase/order"
)

type OrderHandler struct {
	repo orderdomain.Repository

	create          *orderuc.CreateOrder
	fromAppointment *orderuc.CreateFromAppointment
	applyCoupon     *orderuc.ApplyCoupon
	removeCoupon    *orderuc.RemoveCoupon
	updateStatus    *orderuc.UpdateStatus
	deleteOrder     *orderuc.DeleteOrder
	details         *orderuc.ManageDetails
}

func NewOrderHandler(
	repo orderdomain.Repository,
	create *orderuc.CreateOrder,
	fromAppointment *orderuc.CreateFromAppointment,
	applyCoupon *orderuc.ApplyCoupon,
	removeCoupon *orderuc.RemoveCoupon,
	updateStatus *orderuc.UpdateStatus,
	deleteOrder *orderuc.DeleteOrder,
	details *orderuc.ManageDetails,
) *OrderHandler {
	return &OrderHandler{
		repo:            repo,
		create:          create,
		fromAppointment: fromAppointment,
		applyCoupon:     applyCoupon,
		removeCoupon:    removeCoupon,
		updateStatus:    updateStatus,
		deleteOrder:     deleteOrder,
		details:         details,
	}
}

// --------- Requests ---------

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Message   string `json:"message"`
}

type CreateOrderRequest struct {
	UserID        string             `json:"user_id"`
	AppointmentID *string            `json:"appointment_id,omitempty"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode    string             `json:"coupon_code"`
	Notes         string             `json:"notes"`
}

type CreateFromAppointmentRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required"`
	CouponCode    string `json:"coupon_code"`
	Notes         string `json:"notes"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type UpdateOrderRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type AddOrderDetailRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Message   string `json:"message"`
}

type UpdateOrderDetailRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Message  *string `json:"message,omitempty"`
}

// --------- Orders ---------

func (h *OrderHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	filter := orderdomain.ListFilter{
		Status: c.Query("status"),
		Offset: offsetParam(c),
		Limit:  limitParam(c),
	}
	if role == models.RoleCustomer {
		filter.UserID = userID
	} else if uid := c.Query("user_id"); uid != "" {
		filter.UserID = uid
	}

	orders, total, err := h.repo.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.Paged(c, orders, total)
}

// loadAuthorized fetches the order from the :id param and enforces the
// caller's access before any further work.
func (h *OrderHandler) loadAuthorized(c *gin.Context) (*models.Order, bool) {
	o, err := h.repo.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if !canAccessOrder(c, o) {
		denyAccess(c)
		return nil, false
	}
	return o, true
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	httpresp.OK(c, o)
}

func (h *OrderHandler) Create(c *gin.Context) {
	authID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	userID := authID
	if role == models.RoleAdmin && req.UserID != "" {
		userID = req.UserID
	}

	items := make([]orderuc.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderuc.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Message:   item.Message,
		})
	}

	o, err := h.create.Execute(c.Request.Context(), orderuc.CreateOrderInput{
		UserID:        userID,
		AppointmentID: req.AppointmentID,
		Items:         items,
		CouponCode:    req.CouponCode,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) CreateFromAppointment(c *gin.Context) {
	var req CreateFromAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.repo.GetAppointment(c.Request.Context(), req.AppointmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !canAccessAppointment(c, ap) {
		denyAccess(c)
		return
	}

	o, err := h.fromAppointment.Execute(
		c.Request.Context(),
		orderuc.CreateFromAppointmentInput{
			AppointmentID: req.AppointmentID,
			CouponCode:    req.CouponCode,
			Notes:         req.Notes,
		},
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Update(c *gin.Context) {
	o, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.Notes != nil {
		o.Notes = *req.Notes
	}

	if err := h.repo.SaveOrder(c.Request.Context(), o); err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, o)
}

// SetStatus moves an order along its lifecycle. Staff may perform any
// valid transition; a customer may only cancel their own order.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	var req SetOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if _, role := actor(c); role == models.RoleCustomer &&
		req.Status != string(orderdomain.StatusCancelled) {
		denyAccess(c)
		return
	}

	o, err := h.updateStatus.Execute(c.Request.Context(), orderuc.UpdateStatusInput{
		OrderID: c.Param("id"),
		Status:  req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, o)
}

func (h *OrderHandler) ApplyCoupon(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	var req ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	o, err := h.applyCoupon.Execute(c.Request.Context(), orderuc.ApplyCouponInput{
		OrderID: c.Param("id"),
		Code:    req.Code,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, o)
}

func (h *OrderHandler) RemoveCoupon(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	o, err := h.removeCoupon.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, o)
}

// Calculation returns the amount breakdown recomputed from the stored
// line items, including what the bound coupon contributes today.
func (h *OrderHandler) Calculation(c *gin.Context) {
	o, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var subtotal int64
	for _, d := range o.Details {
		subtotal += d.TotalPrice
	}

	var discount int64
	if o.Coupon != nil {
		discount = coupondomain.Discount(o.Coupon, subtotal)
	}

	httpresp.OK(c, gin.H{
		"order_id":        o.ID,
		"subtotal":        subtotal,
		"discount_amount": discount,
		"final_amount":    subtotal - discount,
		"item_count":      len(o.Details),
	})
}

func (h *OrderHandler) Statistics(c *gin.Context) {
	stats, err := h.repo.GetStatistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, stats)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.deleteOrder.Execute(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------- Details ---------

func (h *OrderHandler) ListDetails(c *gin.Context) {
	o, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	httpresp.List(c, o.Details)
}

func (h *OrderHandler) GetDetail(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	d, err := h.repo.GetDetail(
		c.Request.Context(),
		c.Param("id"),
		c.Param("detailID"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, d)
}

func (h *OrderHandler) AddDetail(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	var req AddOrderDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	d, err := h.details.Add(c.Request.Context(), orderuc.AddDetailInput{
		OrderID:   c.Param("id"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Message:   req.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *OrderHandler) UpdateDetail(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	var req UpdateOrderDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	d, err := h.details.Update(c.Request.Context(), orderuc.UpdateDetailInput{
		OrderID:  c.Param("id"),
		DetailID: c.Param("detailID"),
		Quantity: req.Quantity,
		Message:  req.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, d)
}

func (h *OrderHandler) DeleteDetail(c *gin.Context) {
	if _, ok := h.loadAuthorized(c); !ok {
		return
	}

	if err := h.details.Remove(
		c.Request.Context(),
		c.Param("id"),
		c.Param("detailID"),
	); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
