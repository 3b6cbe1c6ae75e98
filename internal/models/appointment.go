package models

import "time"

type Appointment struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"appointment_id"`

	UserID   string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Customer User   `gorm:"foreignKey:UserID" json:"-"`

	StylistID string `gorm:"type:varchar(36);not null;index" json:"stylist_id"`
	Stylist   User   `gorm:"foreignKey:StylistID" json:"-"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Status string `gorm:"size:50;not null" json:"status"`

	Services []AppointmentService `gorm:"foreignKey:AppointmentID" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentService links an appointment to one catalog service. The
// composite key makes attaching the same service twice a constraint
// violation; rows are removed together with their appointment.
type AppointmentService struct {
	AppointmentID string `gorm:"type:varchar(36);primaryKey" json:"appointment_id"`
	ProductID     string `gorm:"type:varchar(36);primaryKey" json:"product_id"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
