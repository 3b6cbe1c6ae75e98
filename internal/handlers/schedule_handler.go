package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	appdomain "github.com/salonworks/booking-api/internal/domain/appointment"
	"github.com/salonworks/booking-api/internal/domain/schedule"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/timezone"
)

type ScheduleHandler struct {
	db *gorm.DB
}

func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{db: db}
}

// --------- Requests ---------

type UpsertScheduleDayRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CreateTimeOffRequest struct {
	StylistID     string    `json:"stylist_id"`
	StartDatetime time.Time `json:"start_datetime" binding:"required"`
	EndDatetime   time.Time `json:"end_datetime" binding:"required"`
	Reason        string    `json:"reason"`
}

type UpdateTimeOffRequest struct {
	StartDatetime *time.Time `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	Reason        *string    `json:"reason,omitempty"`
}

type SetTimeOffStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --------- Weekly schedules ---------

func (h *ScheduleHandler) ListAll(c *gin.Context) {
	var schedules []models.StylistSchedule
	if err := h.db.
		Order("stylist_id ASC, day_of_week ASC").
		Find(&schedules).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, schedules)
}

func (h *ScheduleHandler) GetForStylist(c *gin.Context) {
	var schedules []models.StylistSchedule
	if err := h.db.
		Where("stylist_id = ?", c.Param("stylistID")).
		Order("day_of_week ASC").
		Find(&schedules).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, schedules)
}

// UpsertDay writes the working window for one weekday, replacing any
// existing row for that (stylist, day).
func (h *ScheduleHandler) UpsertDay(c *gin.Context) {
	stylistID := c.Param("stylistID")

	var req UpsertScheduleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	day := *req.DayOfWeek
	if day < 0 || day > 6 {
		httperr.BadRequest(c, "invalid_day", "day_of_week must be 0..6, 0 = Sunday.")
		return
	}
	if !schedule.ValidHM(req.StartTime) || !schedule.ValidHM(req.EndTime) {
		httperr.BadRequest(c, "invalid_time", "Times must be HH:MM.")
		return
	}
	if req.EndTime <= req.StartTime {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	var stylist models.User
	if err := h.db.
		Where("id = ? AND role = ?", stylistID, models.RoleStylist).
		First(&stylist).Error; err != nil {
		httperr.NotFound(c, "stylist_not_found", "Stylist not found.")
		return
	}

	var existing models.StylistSchedule
	err := h.db.
		Where("stylist_id = ? AND day_of_week = ?", stylistID, day).
		First(&existing).Error

	switch {
	case err == nil:
		existing.StartTime = req.StartTime
		existing.EndTime = req.EndTime
		if err := h.db.Save(&existing).Error; err != nil {
			writeError(c, err)
			return
		}
		httpresp.OK(c, existing)

	case err == gorm.ErrRecordNotFound:
		created := models.StylistSchedule{
			ID:        uuid.NewString(),
			StylistID: stylistID,
			DayOfWeek: day,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		}
		if err := h.db.Create(&created).Error; err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)

	default:
		writeError(c, err)
	}
}

func (h *ScheduleHandler) DeleteDay(c *gin.Context) {
	day, err := atoiPositive(c.Param("day"))
	if err != nil || day > 6 {
		httperr.BadRequest(c, "invalid_day", "day must be 0..6.")
		return
	}

	result := h.db.
		Where("stylist_id = ? AND day_of_week = ?", c.Param("stylistID"), day).
		Delete(&models.StylistSchedule{})
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "schedule_not_found", "No window for that day.")
		return
	}

	c.Status(http.StatusNoContent)
}

// --------- Availability ---------

// Availability lists the free windows of a stylist on one date:
// the weekly window minus approved time off and booked appointments.
func (h *ScheduleHandler) Availability(c *gin.Context) {
	stylistID := c.Param("stylistID")

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter 'date' is required.")
		return
	}

	loc := timezone.Location(timezone.DefaultTimezone)
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	var sched models.StylistSchedule
	if err := h.db.
		Where("stylist_id = ? AND day_of_week = ?",
			stylistID, int(date.Weekday())).
		First(&sched).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httpresp.List(c, []schedule.TimeSlot{})
			return
		}
		writeError(c, err)
		return
	}

	window := schedule.Interval{
		Start: schedule.OnDate(sched.StartTime, date),
		End:   schedule.OnDate(sched.EndTime, date),
	}

	dayEnd := date.AddDate(0, 0, 1)

	var busy []schedule.Interval

	var appointments []models.Appointment
	if err := h.db.
		Select("start_time", "end_time").
		Where(
			"stylist_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			stylistID,
			[]string{
				string(appdomain.StatusConfirmed),
				string(appdomain.StatusInProgress),
			},
			dayEnd,
			date,
		).
		Find(&appointments).Error; err != nil {
		writeError(c, err)
		return
	}
	for _, ap := range appointments {
		busy = append(busy, schedule.Interval{
			Start: ap.StartTime.In(loc),
			End:   ap.EndTime.In(loc),
		})
	}

	var timeOff []models.StylistTimeOff
	if err := h.db.
		Where(
			"stylist_id = ? AND status = ? AND start_datetime < ? AND end_datetime > ?",
			stylistID,
			models.TimeOffApproved,
			dayEnd,
			date,
		).
		Find(&timeOff).Error; err != nil {
		writeError(c, err)
		return
	}
	for _, t := range timeOff {
		busy = append(busy, schedule.Interval{
			Start: t.StartDatetime.In(loc),
			End:   t.EndDatetime.In(loc),
		})
	}

	httpresp.List(c, schedule.FreeSlots(window, busy))
}

// Conflicts reports whether a candidate window collides with booked
// appointments or approved time off.
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	stylistID := c.Query("stylist_id")
	startStr := c.Query("start")
	endStr := c.Query("end")
	if stylistID == "" || startStr == "" || endStr == "" {
		httperr.BadRequest(c, "missing_parameters",
			"stylist_id, start and end are required.")
		return
	}

	start, err1 := time.Parse(time.RFC3339, startStr)
	end, err2 := time.Parse(time.RFC3339, endStr)
	if err1 != nil || err2 != nil || !end.After(start) {
		httperr.BadRequest(c, "invalid_time_range", "Times must be RFC3339, end after start.")
		return
	}

	var appointmentCount int64
	if err := h.db.Model(&models.Appointment{}).
		Where(
			"stylist_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			stylistID,
			[]string{
				string(appdomain.StatusConfirmed),
				string(appdomain.StatusInProgress),
			},
			end,
			start,
		).
		Count(&appointmentCount).Error; err != nil {
		writeError(c, err)
		return
	}

	var timeOffCount int64
	if err := h.db.Model(&models.StylistTimeOff{}).
		Where(
			"stylist_id = ? AND status = ? AND start_datetime < ? AND end_datetime > ?",
			stylistID,
			models.TimeOffApproved,
			end,
			start,
		).
		Count(&timeOffCount).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"conflict":              appointmentCount+timeOffCount > 0,
		"appointment_conflicts": appointmentCount,
		"time_off_conflicts":    timeOffCount,
	})
}

// --------- Time off ---------

func (h *ScheduleHandler) CreateTimeOff(c *gin.Context) {
	authID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var req CreateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	stylistID := authID
	if role == models.RoleAdmin && req.StylistID != "" {
		stylistID = req.StylistID
	}

	if !req.EndDatetime.After(req.StartDatetime) {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	timeOff := models.StylistTimeOff{
		ID:            uuid.NewString(),
		StylistID:     stylistID,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Reason:        req.Reason,
		Status:        models.TimeOffPending,
	}

	if err := h.db.Create(&timeOff).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, timeOff)
}

func (h *ScheduleHandler) ListTimeOff(c *gin.Context) {
	authID := c.MustGet(middleware.ContextUserID).(string)
	role := c.MustGet(middleware.ContextUserRole).(string)

	q := h.db.Model(&models.StylistTimeOff{})

	if role == models.RoleStylist {
		q = q.Where("stylist_id = ?", authID)
	} else if sid := c.Query("stylist_id"); sid != "" {
		q = q.Where("stylist_id = ?", sid)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var entries []models.StylistTimeOff
	if err := q.
		Order("start_datetime DESC").
		Find(&entries).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, entries)
}

func (h *ScheduleHandler) UpdateTimeOff(c *gin.Context) {
	var timeOff models.StylistTimeOff
	if err := h.db.Where("id = ?", c.Param("id")).First(&timeOff).Error; err != nil {
		writeError(c, err)
		return
	}

	// Only pending requests can be edited.
	if timeOff.Status != models.TimeOffPending {
		httperr.Conflict(c, "invalid_state", "Request already reviewed.")
		return
	}

	var req UpdateTimeOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.StartDatetime != nil {
		timeOff.StartDatetime = *req.StartDatetime
	}
	if req.EndDatetime != nil {
		timeOff.EndDatetime = *req.EndDatetime
	}
	if req.Reason != nil {
		timeOff.Reason = *req.Reason
	}

	if !timeOff.EndDatetime.After(timeOff.StartDatetime) {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	if err := h.db.Save(&timeOff).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, timeOff)
}

func (h *ScheduleHandler) SetTimeOffStatus(c *gin.Context) {
	var req SetTimeOffStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	if !models.ValidTimeOffStatus(req.Status) {
		httperr.BadRequest(c, "invalid_status", "Unknown status.")
		return
	}

	var timeOff models.StylistTimeOff
	if err := h.db.Where("id = ?", c.Param("id")).First(&timeOff).Error; err != nil {
		writeError(c, err)
		return
	}

	if err := h.db.Model(&timeOff).Update("status", req.Status).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, timeOff)
}

func (h *ScheduleHandler) DeleteTimeOff(c *gin.Context) {
	result := h.db.Delete(&models.StylistTimeOff{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "time_off_not_found", "Request not found.")
		return
	}

	c.Status(http.StatusNoContent)
}
