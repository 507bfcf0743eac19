package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment settled money movement record, either an order payment or a
// withdrawal payout. At most one non-deleted row per withdrawal request
// (unique index on WithdrawalRequestID). Amount/type/ownership are immutable
// after creation; only the proof image may be replaced.
type Payment struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	PaymentType         string         `gorm:"index;not null" json:"payment_type"` // order / withdrawal
	Status              string         `gorm:"index;not null" json:"status"`
	Amount              Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency            string         `gorm:"not null" json:"currency"`
	ProofImageURL       string         `gorm:"type:varchar(500)" json:"proof_image_url,omitempty"`
	ReferenceNumber     string         `gorm:"index" json:"reference_number,omitempty"`
	PaidByID            uint           `gorm:"index;not null" json:"paid_by_id"`
	PaidToID            uint           `gorm:"index;not null" json:"paid_to_id"`
	OrderID             *uint          `gorm:"index" json:"order_id,omitempty"`
	WithdrawalRequestID *uint          `gorm:"uniqueIndex" json:"withdrawal_request_id,omitempty"`
	Remark              string         `gorm:"type:varchar(500)" json:"remark,omitempty"`
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName table name
func (Payment) TableName() string {
	return "payments"
}
