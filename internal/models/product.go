package models

import "time"

// Product is a catalog item: either a physical good or a bookable
// service. Prices are integer minor units (cents).
type Product struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"product_id"`

	Name        string `gorm:"size:150;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Price       int64 `gorm:"not null" json:"price"`
	DurationMin int   `json:"duration_min"`

	StockQuantity int  `gorm:"not null;default:0" json:"stock_quantity"`
	IsActive      bool `gorm:"not null;default:true" json:"is_active"`
	IsService     bool `gorm:"not null;default:false" json:"is_service"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
