package models

import (
	"time"

	"gorm.io/gorm"
)

// Order placed purchase. Created from the cart during gateway verification
// and approved once the gateway confirms the money moved.
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`
	DistributorID uint           `gorm:"index;not null" json:"distributor_id"`
	Status        string         `gorm:"index;not null" json:"status"`
	Currency      string         `gorm:"not null" json:"currency"`
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`
	ApprovedAt    *time.Time     `gorm:"index" json:"approved_at"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName table name
func (Order) TableName() string {
	return "orders"
}
