package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/domain/schedule"
	"github.com/salonworks/booking-api/internal/httperr"
	"github.com/salonworks/booking-api/internal/httpresp"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/timezone"
)

type StoreHandler struct {
	db *gorm.DB
}

func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

// --------- Requests ---------

type BusinessHoursDay struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

type ReplaceBusinessHoursRequest struct {
	Days []BusinessHoursDay `json:"days" binding:"required,min=1,dive"`
}

type PatchBusinessHoursRequest struct {
	OpenTime  *string `json:"open_time,omitempty"`
	CloseTime *string `json:"close_time,omitempty"`
	IsClosed  *bool   `json:"is_closed,omitempty"`
}

type CreateClosureRequest struct {
	StartDatetime time.Time `json:"start_datetime" binding:"required"`
	EndDatetime   time.Time `json:"end_datetime" binding:"required"`
	Reason        string    `json:"reason"`
}

func (d *BusinessHoursDay) validate() error {
	if *d.DayOfWeek < 0 || *d.DayOfWeek > 6 {
		return httperr.ErrBusiness("invalid_day")
	}
	if d.IsClosed {
		return nil
	}
	if !schedule.ValidHM(d.OpenTime) || !schedule.ValidHM(d.CloseTime) {
		return httperr.ErrBusiness("invalid_time")
	}
	if d.CloseTime <= d.OpenTime {
		return httperr.ErrBusiness("invalid_time_range")
	}
	return nil
}

// --------- Business hours ---------

func (h *StoreHandler) GetBusinessHours(c *gin.Context) {
	var hours []models.StoreBusinessHours
	if err := h.db.Order("day_of_week ASC").Find(&hours).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, hours)
}

func (h *StoreHandler) GetBusinessHoursDay(c *gin.Context) {
	day, err := atoiPositive(c.Param("day"))
	if err != nil || day > 6 {
		httperr.BadRequest(c, "invalid_day", "day must be 0..6.")
		return
	}

	var hours models.StoreBusinessHours
	if err := h.db.Where("day_of_week = ?", day).First(&hours).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.OK(c, hours)
}

// ReplaceBusinessHours swaps the whole weekly table in one transaction.
func (h *StoreHandler) ReplaceBusinessHours(c *gin.Context) {
	var req ReplaceBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	seen := map[int]bool{}
	for i := range req.Days {
		if err := req.Days[i].validate(); err != nil {
			writeError(c, err)
			return
		}
		if seen[*req.Days[i].DayOfWeek] {
			httperr.BadRequest(c, "duplicate_day", "Each day may appear once.")
			return
		}
		seen[*req.Days[i].DayOfWeek] = true
	}

	var replaced []models.StoreBusinessHours
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("1 = 1").
			Delete(&models.StoreBusinessHours{}).Error; err != nil {
			return err
		}
		for _, d := range req.Days {
			row := models.StoreBusinessHours{
				ID:        uuid.NewString(),
				DayOfWeek: *d.DayOfWeek,
				OpenTime:  d.OpenTime,
				CloseTime: d.CloseTime,
				IsClosed:  d.IsClosed,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			replaced = append(replaced, row)
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.List(c, replaced)
}

func (h *StoreHandler) PatchBusinessHoursDay(c *gin.Context) {
	day, err := atoiPositive(c.Param("day"))
	if err != nil || day > 6 {
		httperr.BadRequest(c, "invalid_day", "day must be 0..6.")
		return
	}

	var hours models.StoreBusinessHours
	if err := h.db.Where("day_of_week = ?", day).First(&hours).Error; err != nil {
		writeError(c, err)
		return
	}

	var req PatchBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if req.OpenTime != nil {
		if !schedule.ValidHM(*req.OpenTime) {
			httperr.BadRequest(c, "invalid_time", "open_time must be HH:MM.")
			return
		}
		hours.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		if !schedule.ValidHM(*req.CloseTime) {
			httperr.BadRequest(c, "invalid_time", "close_time must be HH:MM.")
			return
		}
		hours.CloseTime = *req.CloseTime
	}
	if req.IsClosed != nil {
		hours.IsClosed = *req.IsClosed
	}

	if !hours.IsClosed && hours.CloseTime <= hours.OpenTime {
		httperr.BadRequest(c, "invalid_time_range", "Close must be after open.")
		return
	}

	if err := h.db.Save(&hours).Error; err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, hours)
}

// --------- Closures ---------

func (h *StoreHandler) ListClosures(c *gin.Context) {
	var closures []models.StoreClosure
	if err := h.db.
		Order("start_datetime DESC").
		Find(&closures).Error; err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, closures)
}

func (h *StoreHandler) CreateClosure(c *gin.Context) {
	var req CreateClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if !req.EndDatetime.After(req.StartDatetime) {
		httperr.BadRequest(c, "invalid_time_range", "End must be after start.")
		return
	}

	closure := models.StoreClosure{
		ID:            uuid.NewString(),
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		Reason:        req.Reason,
	}

	if err := h.db.Create(&closure).Error; err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, closure)
}

func (h *StoreHandler) DeleteClosure(c *gin.Context) {
	result := h.db.Delete(&models.StoreClosure{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		writeError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		httperr.NotFound(c, "closure_not_found", "Closure not found.")
		return
	}

	c.Status(http.StatusNoContent)
}

// --------- Open / closed ---------

func (h *StoreHandler) loadCalendar(c *gin.Context) (
	[]models.StoreBusinessHours,
	[]models.StoreClosure,
	bool,
) {
	var hours []models.StoreBusinessHours
	if err := h.db.Find(&hours).Error; err != nil {
		writeError(c, err)
		return nil, nil, false
	}

	var closures []models.StoreClosure
	if err := h.db.
		Where("end_datetime > ?", timezone.Now().UTC().AddDate(0, 0, -1)).
		Find(&closures).Error; err != nil {
		writeError(c, err)
		return nil, nil, false
	}

	return hours, closures, true
}

func (h *StoreHandler) Status(c *gin.Context) {
	hours, closures, ok := h.loadCalendar(c)
	if !ok {
		return
	}

	now := timezone.Now()
	open := schedule.IsStoreOpen(hours, closures, now)

	resp := gin.H{
		"open": open,
		"now":  now,
	}
	if !open {
		if next := schedule.NextOpenTime(hours, closures, now); next != nil {
			resp["next_open"] = next
		}
	}

	httpresp.OK(c, resp)
}

// IsOpen answers for an arbitrary instant, default now.
func (h *StoreHandler) IsOpen(c *gin.Context) {
	at := timezone.Now()
	if s := c.Query("at"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			httperr.BadRequest(c, "invalid_time", "Time must be RFC3339.")
			return
		}
		at = parsed.In(timezone.Location(timezone.DefaultTimezone))
	}

	hours, closures, ok := h.loadCalendar(c)
	if !ok {
		return
	}

	httpresp.OK(c, gin.H{
		"open": schedule.IsStoreOpen(hours, closures, at),
		"at":   at,
	})
}

func (h *StoreHandler) NextOpen(c *gin.Context) {
	hours, closures, ok := h.loadCalendar(c)
	if !ok {
		return
	}

	next := schedule.NextOpenTime(hours, closures, timezone.Now())
	if next == nil {
		httperr.NotFound(c, "no_opening_found", "No opening in the next two weeks.")
		return
	}

	httpresp.OK(c, gin.H{"next_open": next})
}
