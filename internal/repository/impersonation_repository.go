package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
)

// ImpersonationRepository impersonation grant data access interface
type ImpersonationRepository interface {
	Create(grant *models.ImpersonationGrant) error
	GetByCode(code string) (*models.ImpersonationGrant, error)
	MarkRedeemed(grantID uint, at time.Time) (bool, error)
	DeleteExpired(before time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormImpersonationRepository
}

// GormImpersonationRepository GORM implementation
type GormImpersonationRepository struct {
	db *gorm.DB
}

// NewImpersonationRepository creates the impersonation grant repository
func NewImpersonationRepository(db *gorm.DB) *GormImpersonationRepository {
	return &GormImpersonationRepository{db: db}
}

// WithTx binds a transaction
func (r *GormImpersonationRepository) WithTx(tx *gorm.DB) *GormImpersonationRepository {
	if tx == nil {
		return r
	}
	return &GormImpersonationRepository{db: tx}
}

// Create stores a grant
func (r *GormImpersonationRepository) Create(grant *models.ImpersonationGrant) error {
	return r.db.Create(grant).Error
}

// GetByCode fetches a grant by its opaque code
func (r *GormImpersonationRepository) GetByCode(code string) (*models.ImpersonationGrant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var grant models.ImpersonationGrant
	if err := r.db.Where("code = ?", code).First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// MarkRedeemed flips Redeemed exactly once via a conditional update.
// Returns false when the grant was already redeemed by a concurrent call.
func (r *GormImpersonationRepository) MarkRedeemed(grantID uint, at time.Time) (bool, error) {
	if grantID == 0 {
		return false, nil
	}
	result := r.db.Model(&models.ImpersonationGrant{}).
		Where("id = ? AND redeemed = ?", grantID, false).
		Updates(map[string]interface{}{
			"redeemed":    true,
			"redeemed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpired removes unredeemed grants whose TTL has elapsed
func (r *GormImpersonationRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ? AND redeemed = ?", before, false).
		Delete(&models.ImpersonationGrant{})
	return result.RowsAffected, result.Error
}
