package models

import "time"

// StoreBusinessHours holds the opening window for one weekday (0 =
// Sunday). A closed day keeps IsClosed set and empty times.
type StoreBusinessHours struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"hour_id"`

	DayOfWeek int    `gorm:"not null;uniqueIndex" json:"day_of_week"`
	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`
	IsClosed  bool   `gorm:"not null;default:false" json:"is_closed"`
}

// StoreClosure is a temporary closure window overriding business hours.
type StoreClosure struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"closure_id"`

	StartDatetime time.Time `gorm:"not null" json:"start_datetime"`
	EndDatetime   time.Time `gorm:"not null" json:"end_datetime"`
	Reason        string    `gorm:"type:text" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
