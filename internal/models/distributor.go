package models

import (
	"time"

	"gorm.io/gorm"
)

// Distributor network member. Tree pointers (ParentID/LeftChildID/RightChildID)
// are owned by the tree service; TotalWallet is mutated only through the wallet
// ledger; LeftWallet/RightWallet hold subtree sales carryover.
type Distributor struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone              string         `gorm:"index" json:"phone,omitempty"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	FullName           string         `gorm:"default:''" json:"full_name"`
	Status             string         `gorm:"default:'active'" json:"status"`
	ParentID           *uint          `gorm:"index" json:"parent_id,omitempty"`
	Position           string         `gorm:"type:varchar(10);default:''" json:"position,omitempty"` // slot under parent: left/right, empty for root
	LeftChildID        *uint          `gorm:"index" json:"left_child_id,omitempty"`
	RightChildID       *uint          `gorm:"index" json:"right_child_id,omitempty"`
	LeftWallet         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"left_wallet"`
	RightWallet        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"right_wallet"`
	TotalWallet        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_wallet"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (Distributor) TableName() string {
	return "distributors"
}
