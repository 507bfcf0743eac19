package models

import (
	"time"
)

// KhaltiPayment gateway reconciliation record for one checkout session.
// Created at initiate (before the user pays); OrderID and Completed status
// are filled only after a successful lookup. Pidx is the gateway-issued
// idempotency key for verification.
type KhaltiPayment struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	DistributorID   uint       `gorm:"index;not null" json:"distributor_id"`
	Pidx            string     `gorm:"uniqueIndex;not null" json:"pidx"`
	PurchaseOrderID string     `gorm:"index;not null" json:"purchase_order_id"`
	Amount          Money      `gorm:"type:decimal(20,2);not null" json:"amount"`
	AmountPaisa     int64      `gorm:"not null" json:"amount_paisa"`
	Status          string     `gorm:"index;not null;default:'initiated'" json:"status"`
	PaymentURL      string     `gorm:"type:text" json:"payment_url"`
	OrderID         *uint      `gorm:"index" json:"order_id,omitempty"`
	RawResponse     JSON       `gorm:"type:json" json:"raw_response,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `gorm:"index" json:"completed_at"`
}

// TableName table name
func (KhaltiPayment) TableName() string {
	return "khalti_payments"
}
