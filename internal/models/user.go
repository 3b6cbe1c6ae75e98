package models

import "time"

// User roles. Every account carries exactly one.
const (
	RoleCustomer = "customer"
	RoleStylist  = "stylist"
	RoleAdmin    = "admin"
)

// User statuses.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"user_id"`

	Username  string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	FirstName string `gorm:"size:50" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`

	Role  string `gorm:"size:20;default:'customer'" json:"role"`
	Phone string `gorm:"size:30" json:"phone"`
	Email string `gorm:"size:100;uniqueIndex" json:"email"`

	PasswordHash string `gorm:"size:255" json:"-"`

	Image        string `gorm:"size:255" json:"image"`
	Status       string `gorm:"size:50;default:'active'" json:"status"`
	Notification string `gorm:"size:50" json:"notification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleStylist, RoleAdmin:
		return true
	}
	return false
}

func ValidUserStatus(status string) bool {
	switch status {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}
