package models

import (
	"time"
)

// WalletTransaction append-only wallet ledger row. Replaying the signed
// amounts in creation order must reproduce the distributor's TotalWallet;
// rows are never updated or deleted. Reference is the idempotency key.
type WalletTransaction struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	DistributorID       uint      `gorm:"index;not null" json:"distributor_id"`
	OrderID             *uint     `gorm:"index" json:"order_id,omitempty"`
	WithdrawalRequestID *uint     `gorm:"index" json:"withdrawal_request_id,omitempty"`
	Type                string    `gorm:"index;not null" json:"type"`
	Direction           string    `gorm:"not null" json:"direction"` // in / out
	Amount              Money     `gorm:"type:decimal(20,2);not null" json:"amount"`
	BalanceBefore       Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`
	BalanceAfter        Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`
	Currency            string    `gorm:"not null" json:"currency"`
	Reference           string    `gorm:"uniqueIndex;not null" json:"reference"`
	Remark              string    `gorm:"type:varchar(500)" json:"remark"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName table name
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
