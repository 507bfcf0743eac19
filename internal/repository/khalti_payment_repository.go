package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KhaltiPaymentRepository gateway reconciliation record data access interface
type KhaltiPaymentRepository interface {
	Create(record *models.KhaltiPayment) error
	GetByPidx(pidx string) (*models.KhaltiPayment, error)
	GetByPidxForUpdate(pidx string) (*models.KhaltiPayment, error)
	Update(record *models.KhaltiPayment) error
	List(filter KhaltiPaymentListFilter) ([]models.KhaltiPayment, int64, error)
	ListStaleInitiated(olderThan time.Time, limit int) ([]models.KhaltiPayment, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormKhaltiPaymentRepository
}

// GormKhaltiPaymentRepository GORM implementation
type GormKhaltiPaymentRepository struct {
	db *gorm.DB
}

// NewKhaltiPaymentRepository creates the reconciliation record repository
func NewKhaltiPaymentRepository(db *gorm.DB) *GormKhaltiPaymentRepository {
	return &GormKhaltiPaymentRepository{db: db}
}

// WithTx binds a transaction
func (r *GormKhaltiPaymentRepository) WithTx(tx *gorm.DB) *GormKhaltiPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormKhaltiPaymentRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormKhaltiPaymentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create creates a reconciliation record
func (r *GormKhaltiPaymentRepository) Create(record *models.KhaltiPayment) error {
	return r.db.Create(record).Error
}

// GetByPidx fetches a record by gateway session identifier
func (r *GormKhaltiPaymentRepository) GetByPidx(pidx string) (*models.KhaltiPayment, error) {
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, nil
	}
	var record models.KhaltiPayment
	if err := r.db.Where("pidx = ?", pidx).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByPidxForUpdate fetches a record by pidx with a row lock. Serializes
// concurrent verifications of the same gateway session.
func (r *GormKhaltiPaymentRepository) GetByPidxForUpdate(pidx string) (*models.KhaltiPayment, error) {
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, nil
	}
	var record models.KhaltiPayment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pidx = ?", pidx).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Update updates a reconciliation record
func (r *GormKhaltiPaymentRepository) Update(record *models.KhaltiPayment) error {
	return r.db.Save(record).Error
}

// List lists reconciliation records with pagination
func (r *GormKhaltiPaymentRepository) List(filter KhaltiPaymentListFilter) ([]models.KhaltiPayment, int64, error) {
	query := r.db.Model(&models.KhaltiPayment{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.KhaltiPayment
	if err := query.Order("id DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListStaleInitiated fetches initiated sessions created before olderThan,
// for the background reconciliation sweep.
func (r *GormKhaltiPaymentRepository) ListStaleInitiated(olderThan time.Time, limit int) ([]models.KhaltiPayment, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []models.KhaltiPayment
	if err := r.db.
		Where("status = ? AND created_at < ?", constants.KhaltiStatusInitiated, olderThan).
		Order("id asc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
