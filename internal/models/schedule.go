package models

import "time"

// StylistSchedule is one weekly working window for a stylist. Day 0 is
// Sunday. Times of day are "HH:MM" strings, one row per (stylist, day).
type StylistSchedule struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"schedule_id"`

	StylistID string `gorm:"type:varchar(36);not null;index" json:"stylist_id"`

	DayOfWeek int    `gorm:"not null" json:"day_of_week"`
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Time-off request statuses.
const (
	TimeOffPending  = "pending"
	TimeOffApproved = "approved"
	TimeOffRejected = "rejected"
)

type StylistTimeOff struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"time_off_id"`

	StylistID string `gorm:"type:varchar(36);not null;index" json:"stylist_id"`

	StartDatetime time.Time `gorm:"not null" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"not null" json:"end_datetime"`

	Reason string `gorm:"type:text" json:"reason"`
	Status string `gorm:"size:50;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidTimeOffStatus(status string) bool {
	switch status {
	case TimeOffPending, TimeOffApproved, TimeOffRejected:
		return true
	}
	return false
}
