package repository

import (
	"errors"

	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
)

// CartRepository cart data access interface
type CartRepository interface {
	ListByDistributor(distributorID uint) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByDistributorAndProduct(distributorID, productID uint) error
	ClearByDistributor(distributorID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM implementation
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates the cart repository
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx binds a transaction
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByDistributor fetches cart items with their products
func (r *GormCartRepository) ListByDistributor(distributorID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("distributor_id = ?", distributorID).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert adds or updates one cart line
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.Where("distributor_id = ? AND product_id = ?", item.DistributorID, item.ProductID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	return r.db.Model(&existing).Updates(updates).Error
}

// DeleteByDistributorAndProduct removes one cart line
func (r *GormCartRepository) DeleteByDistributorAndProduct(distributorID, productID uint) error {
	return r.db.Where("distributor_id = ? AND product_id = ?", distributorID, productID).Delete(&models.CartItem{}).Error
}

// ClearByDistributor empties the cart
func (r *GormCartRepository) ClearByDistributor(distributorID uint) error {
	return r.db.Where("distributor_id = ?", distributorID).Delete(&models.CartItem{}).Error
}
