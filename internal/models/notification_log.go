package models

import (
	"time"
)

// NotificationLog record of a dispatched background notification
type NotificationLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	DistributorID uint      `gorm:"index;not null" json:"distributor_id"`
	Event         string    `gorm:"index;not null" json:"event"`
	BizType       string    `gorm:"index;not null" json:"biz_type"`
	BizID         uint      `gorm:"index" json:"biz_id"`
	Message       string    `gorm:"type:varchar(500)" json:"message"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName table name
func (NotificationLog) TableName() string {
	return "notification_logs"
}
