package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/audit"
	appdomain "github.com/salonworks/booking-api/internal/domain/appointment"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
)

type AppointmentHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAppointmentHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *AppointmentHandler {
	return &AppointmentHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateAppointmentRequest struct {
	UserID     string    `json:"user_id"`
	StylistID  string    `json:"stylist_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	ServiceIDs []string  `json:"service_ids"`
}

type UpdateAppointmentRequest struct {
	StylistID *string    `json:"stylist_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type SetAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AttachServiceRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type BulkAttachRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1"`
}

// --------- Conflict check ---------

// assertSlotFree rejects overlaps with blocking appointments of the
// same stylist and with approved time off. Half-open ranges, so an
// appointment may start exactly when another ends.
func (h *AppointmentHandler) assertSlotFree(
	tx *gorm.DB,
	stylistID string,
	start, end time.Time,
	excludeID string,
) error {

	q := tx.Model(&models.Appointment{}).
		Where(
			"stylist_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			stylistID,
			[]string{
				string(appdomain.StatusConfirmed),
				string(appdomain.StatusInProgress),
			},
			end,
			start,
		)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return httperr.ErrBusiness("time_conflict")
	}

	if err := tx.Model(&models.StylistTimeOff{}).
		Where(
			"stylist_id = ? AND status = ? AND start_datetime < ? AND end_datetime > ?",
			stylistID,
			models.TimeOffApproved,
			end,
			start,
		).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return httperr.ErrBusiness("stylist_unavailable")
	}

	return nil
}

// --------- CRUD ---------

func (h *AppointmentHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	q := h.db.Model(&models.Appointment{})

	switch role {
	case models.RoleCustomer:
		q = q.Where("user_id = ?", userID)
	case models.RoleStylist:
		q = q.Where("stylist_id = ?", userID)
	default:
		if uid := c.Query("user_id"); uid != "" {
			q = q.Where("user_id = ?", uid)
		}
		if sid := c.Query("stylist_id"); sid != "" {
			q = q.Where("stylist_id = ?", sid)
		}
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		writeError(c, err)
		return
	}

	var appointments []models.Appointment
	if err := q.
		Preload("Services.Product").
		Order("start_time DESC").
		Offset(offsetParam(c)).
		Limit(limitParam(c)).
		Find(&appointments).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.Paged(c, appointments, total)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	httpresp.OK(c, ap)
}

// loadAuthorized fetches the appointment from the :id param and
// enforces the caller's access before any further work.
func (h *AppointmentHandler) loadAuthorized(c *gin.Context) (*models.Appointment, bool) {
	var ap models.Appointment
	if err := h.db.
		Preload("Services.Product").
		Where("id = ?", c.Param("id")).
		First(&ap).Error; err != nil {
		writeError(c, err)
		return nil, false
	}
	if !canAccessAppointment(c, &ap) {
		denyAccess(c)
		return nil, false
	}
	return &ap, true
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	authID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	userID := authID
	if role == models.RoleAdmin && req.UserID != "" {
		userID = req.UserID
	}

	if !req.EndTime.After(req.StartTime) {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	var stylist models.User
	if err := h.db.
		Where("id = ? AND role = ?", req.StylistID, models.RoleStylist).
		First(&stylist).Error; err != nil {
		httperr.NotFound(c, "stylist_not_found", "Stylist not found.")
		return
	}

	ap := models.Appointment{
		ID:        uuid.NewString(),
		UserID:    userID,
		StylistID: req.StylistID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    string(appdomain.InitialStatus()),
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.assertSlotFree(
			tx, req.StylistID, req.StartTime, req.EndTime, "",
		); err != nil {
			return err
		}

		if err := tx.Create(&ap).Error; err != nil {
			return err
		}

		for _, productID := range req.ServiceIDs {
			var product models.Product
			if err := tx.
				Where("id = ? AND is_service = ? AND is_active = ?",
					productID, true, true).
				First(&product).Error; err != nil {
				return httperr.ErrBusiness("service_not_found")
			}
			if err := tx.Create(&models.AppointmentService{
				AppointmentID: ap.ID,
				ProductID:     productID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	var created models.Appointment
	if err := h.db.
		Preload("Services.Product").
		Where("id = ?", ap.ID).
		First(&created).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	if appdomain.IsTerminal(appdomain.Status(ap.Status)) {
		httperr.Conflict(c, "invalid_state", "Appointment can no longer change.")
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.StylistID != nil {
		var stylist models.User
		if err := h.db.
			Where("id = ? AND role = ?", *req.StylistID, models.RoleStylist).
			First(&stylist).Error; err != nil {
			httperr.NotFound(c, "stylist_not_found", "Stylist not found.")
			return
		}
		ap.StylistID = *req.StylistID
	}
	if req.StartTime != nil {
		ap.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		ap.EndTime = *req.EndTime
	}

	if !ap.EndTime.After(ap.StartTime) {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.assertSlotFree(
			tx, ap.StylistID, ap.StartTime, ap.EndTime, ap.ID,
		); err != nil {
			return err
		}
		return tx.Omit("Services", "Customer", "Stylist").Save(ap).Error
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// SetStatus writes a new appointment status. Staff may set any valid
// status; a customer may only cancel their own booking.
func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req SetAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	current := appdomain.Status(ap.Status)
	target := appdomain.Status(req.Status)

	if _, role := actor(c); role == models.RoleCustomer &&
		target != appdomain.StatusCancelled {
		denyAccess(c)
		return
	}

	if err := appdomain.CanTransition(current, target); err != nil {
		writeError(c, err)
		return
	}

	// Moving into a blocking status re-checks the slot, since pending
	// appointments do not reserve it.
	var err error
	if appdomain.BlocksSlot(target) && !appdomain.BlocksSlot(current) {
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := h.assertSlotFree(
				tx, ap.StylistID, ap.StartTime, ap.EndTime, ap.ID,
			); err != nil {
				return err
			}
			ap.Status = string(target)
			return tx.Omit("Services", "Customer", "Stylist").Save(ap).Error
		})
	} else {
		ap.Status = string(target)
		err = h.db.Omit("Services", "Customer", "Stylist").Save(ap).Error
	}
	if err != nil {
		writeError(c, err)
		return
	}

	actorID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "appointment_status_" + string(target),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	httpresp.OK(c, ap)
}

// Delete removes the appointment and its service links together.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("appointment_id = ?", ap.ID).
			Delete(&models.AppointmentService{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Appointment{}, "id = ?", ap.ID).Error
	}); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --------- Services ---------

func (h *AppointmentHandler) ListServices(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}
	httpresp.List(c, ap.Services)
}

func (h *AppointmentHandler) AttachService(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req AttachServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if err := h.attach(ap.ID, req.ProductID, false); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// BulkAttach skips services that are already attached instead of
// failing the whole batch.
func (h *AppointmentHandler) BulkAttach(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	var req BulkAttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	attached := 0
	for _, productID := range req.ProductIDs {
		if err := h.attach(ap.ID, productID, true); err != nil {
			writeError(c, err)
			return
		}
		attached++
	}

	httpresp.OK(c, gin.H{"attached": attached})
}

func (h *AppointmentHandler) attach(
	appointmentID string,
	productID string,
	skipExisting bool,
) error {

	var product models.Product
	if err := h.db.
		Where("id = ? AND is_service = ? AND is_active = ?",
			productID, true, true).
		First(&product).Error; err != nil {
		return httperr.ErrBusiness("service_not_found")
	}

	var count int64
	h.db.Model(&models.AppointmentService{}).
		Where("appointment_id = ? AND product_id = ?", appointmentID, productID).
		Count(&count)
	if count > 0 {
		if skipExisting {
			return nil
		}
		return httperr.ErrBusiness("service_already_attached")
	}

	return h.db.Create(&models.AppointmentService{
		AppointmentID: appointmentID,
		ProductID:     productID,
	}).Error
}

func (h *AppointmentHandler) DetachService(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	result := h.db.
		Where("appointment_id = ? AND product_id = ?",
			ap.ID, c.Param("serviceID")).
		Delete(&models.AppointmentService{})
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "service_not_attached", "Service is not attached.")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) ClearServices(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	if err := h.db.
		Where("appointment_id = ?", ap.ID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) Calculation(c *gin.Context) {
	ap, ok := h.loadAuthorized(c)
	if !ok {
		return
	}

	active := make([]models.AppointmentService, 0, len(ap.Services))
	for _, svc := range ap.Services {
		if svc.Product.IsActive {
			active = append(active, svc)
		}
	}

	httpresp.OK(c, appdomain.Calculate(active))
}
