package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest distributor cash-out request.
// Status moves pending -> paid|rejected exactly once, by admin action.
type WithdrawalRequest struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	DistributorID   uint           `gorm:"index;not null" json:"distributor_id"`
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status          string         `gorm:"index;not null;default:'pending'" json:"status"`
	Remark          string         `gorm:"type:varchar(500)" json:"remark"`
	RequestDate     time.Time      `gorm:"index;not null" json:"request_date"`
	ProcessedDate   *time.Time     `gorm:"index" json:"processed_date"`
	ProcessedByID   *uint          `gorm:"index" json:"processed_by_id,omitempty"`
	PaymentProofURL string         `gorm:"type:varchar(500)" json:"payment_proof_url,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Payment *Payment `gorm:"foreignKey:WithdrawalRequestID" json:"payment,omitempty"`
}

// TableName table name
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
