package repository

import (
	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository notification log data access interface
type NotificationRepository interface {
	Create(entry *models.NotificationLog) error
	ListByDistributor(distributorID uint, limit int) ([]models.NotificationLog, error)
}

// GormNotificationRepository GORM implementation
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates the notification repository
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create appends a notification log entry
func (r *GormNotificationRepository) Create(entry *models.NotificationLog) error {
	return r.db.Create(entry).Error
}

// ListByDistributor fetches recent notifications for one distributor
func (r *GormNotificationRepository) ListByDistributor(distributorID uint, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.NotificationLog
	if err := r.db.Where("distributor_id = ?", distributorID).
		Order("id desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
