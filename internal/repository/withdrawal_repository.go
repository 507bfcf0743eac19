package repository

import (
	"errors"

	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository withdrawal request data access interface
type WithdrawalRepository interface {
	Create(request *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	Update(request *models.WithdrawalRequest) error
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
}

// GormWithdrawalRepository GORM implementation
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates the withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx binds a transaction
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create creates a withdrawal request
func (r *GormWithdrawalRepository) Create(request *models.WithdrawalRequest) error {
	return r.db.Create(request).Error
}

// GetByID fetches a withdrawal request with its payment, if any
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.WithdrawalRequest
	if err := r.db.Preload("Payment").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// GetByIDForUpdate fetches a withdrawal request with a row lock
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// Update updates a withdrawal request
func (r *GormWithdrawalRepository) Update(request *models.WithdrawalRequest) error {
	return r.db.Save(request).Error
}

// List lists withdrawal requests with pagination
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestFrom != nil {
		query = query.Where("request_date >= ?", *filter.RequestFrom)
	}
	if filter.RequestTo != nil {
		query = query.Where("request_date <= ?", *filter.RequestTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var requests []models.WithdrawalRequest
	if err := query.Preload("Payment").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
