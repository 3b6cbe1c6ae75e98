package models

import "time"

// Order amounts are integer minor units. FinalAmount is always
// TotalAmount minus DiscountAmount and never negative.
type Order struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"order_id"`

	UserID   string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Customer User   `gorm:"foreignKey:UserID" json:"-"`

	AppointmentID *string      `gorm:"type:varchar(36)" json:"appointment_id"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`

	CouponID *string `gorm:"type:varchar(36)" json:"coupon_id"`
	Coupon   *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`

	TotalAmount    int64 `gorm:"not null" json:"total_amount"`
	DiscountAmount int64 `gorm:"not null;default:0" json:"discount_amount"`
	FinalAmount    int64 `gorm:"not null" json:"final_amount"`

	Status string `gorm:"size:50;not null" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	Details []OrderDetail `gorm:"foreignKey:OrderID" json:"details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderDetail struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"order_detail_id"`

	OrderID string `gorm:"type:varchar(36);not null;index" json:"order_id"`

	ProductID string  `gorm:"type:varchar(36);not null" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity     int   `gorm:"not null" json:"quantity"`
	PricePerItem int64 `gorm:"not null" json:"price_per_item"`
	TotalPrice   int64 `gorm:"not null" json:"total_price"`

	Message string `gorm:"type:text" json:"message"`
}
