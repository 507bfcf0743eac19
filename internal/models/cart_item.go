package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem one product line in a distributor's cart
type CartItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	DistributorID uint           `gorm:"not null;uniqueIndex:idx_cart_distributor_product" json:"distributor_id"`
	ProductID     uint           `gorm:"not null;uniqueIndex:idx_cart_distributor_product" json:"product_id"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName table name
func (CartItem) TableName() string {
	return "cart_items"
}
