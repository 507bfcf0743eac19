package models

import (
	"time"
)

// ImpersonationGrant single-use handoff credential letting an admin session
// open a distributor session in an isolated browser context. Redemption is
// bound to the issuing SessionID and enforced exactly-once via a conditional
// update on Redeemed.
type ImpersonationGrant struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Code          string     `gorm:"uniqueIndex;not null" json:"-"`
	DistributorID uint       `gorm:"index;not null" json:"distributor_id"`
	IssuedByID    uint       `gorm:"index;not null" json:"issued_by_id"`
	SessionID     string     `gorm:"index;not null" json:"-"`
	Reason        string     `gorm:"type:varchar(500)" json:"reason,omitempty"`
	ReturnURL     string     `gorm:"type:varchar(500)" json:"return_url"`
	ExpiresAt     time.Time  `gorm:"index;not null" json:"expires_at"`
	Redeemed      bool       `gorm:"not null;default:false;index" json:"redeemed"`
	RedeemedAt    *time.Time `json:"redeemed_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName table name
func (ImpersonationGrant) TableName() string {
	return "impersonation_grants"
}
