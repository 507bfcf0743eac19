package repository

import (
	"errors"
	"strings"

	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DistributorRepository distributor data access interface
type DistributorRepository interface {
	GetByID(id uint) (*models.Distributor, error)
	GetByEmail(email string) (*models.Distributor, error)
	GetByIDForUpdate(id uint) (*models.Distributor, error)
	GetRoot() (*models.Distributor, error)
	ListByIDs(ids []uint) ([]models.Distributor, error)
	Create(distributor *models.Distributor) error
	Update(distributor *models.Distributor) error
	List(filter DistributorListFilter) ([]models.Distributor, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormDistributorRepository
}

// GormDistributorRepository GORM implementation
type GormDistributorRepository struct {
	db *gorm.DB
}

// NewDistributorRepository creates the distributor repository
func NewDistributorRepository(db *gorm.DB) *GormDistributorRepository {
	return &GormDistributorRepository{db: db}
}

// WithTx binds a transaction
func (r *GormDistributorRepository) WithTx(tx *gorm.DB) *GormDistributorRepository {
	if tx == nil {
		return r
	}
	return &GormDistributorRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormDistributorRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID fetches a distributor by ID
func (r *GormDistributorRepository) GetByID(id uint) (*models.Distributor, error) {
	if id == 0 {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.First(&distributor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetByEmail fetches a distributor by email
func (r *GormDistributorRepository) GetByEmail(email string) (*models.Distributor, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.Where("email = ?", email).First(&distributor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetByIDForUpdate fetches a distributor by ID with a row lock
func (r *GormDistributorRepository) GetByIDForUpdate(id uint) (*models.Distributor, error) {
	if id == 0 {
		return nil, nil
	}
	var distributor models.Distributor
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&distributor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// GetRoot fetches the designated tree root (oldest distributor without a parent)
func (r *GormDistributorRepository) GetRoot() (*models.Distributor, error) {
	var distributor models.Distributor
	if err := r.db.Where("parent_id IS NULL").Order("id asc").First(&distributor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distributor, nil
}

// ListByIDs batch fetches distributors
func (r *GormDistributorRepository) ListByIDs(ids []uint) ([]models.Distributor, error) {
	if len(ids) == 0 {
		return []models.Distributor{}, nil
	}
	var distributors []models.Distributor
	if err := r.db.Where("id IN ?", ids).Find(&distributors).Error; err != nil {
		return nil, err
	}
	return distributors, nil
}

// Create creates a distributor
func (r *GormDistributorRepository) Create(distributor *models.Distributor) error {
	return r.db.Create(distributor).Error
}

// Update updates a distributor
func (r *GormDistributorRepository) Update(distributor *models.Distributor) error {
	return r.db.Save(distributor).Error
}

// List lists distributors with pagination
func (r *GormDistributorRepository) List(filter DistributorListFilter) ([]models.Distributor, int64, error) {
	query := r.db.Model(&models.Distributor{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("email LIKE ? OR full_name LIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ParentID != 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
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

	var distributors []models.Distributor
	if err := query.Order("id DESC").Find(&distributors).Error; err != nil {
		return nil, 0, err
	}
	return distributors, total, nil
}
