package repository

import (
	"errors"
	"strings"

	"github.com/carenation/backend/internal/models"

	"gorm.io/gorm"
)

// WalletRepository wallet ledger data access interface. Balances live on the
// distributor row; this repository owns the append-only transaction log.
type WalletRepository interface {
	CreateTransaction(txn *models.WalletTransaction) error
	GetTransactionByReference(reference string) (*models.WalletTransaction, error)
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	SumByDistributor(distributorID uint) (models.Money, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository GORM implementation
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates the wallet repository
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// WithTx binds a transaction
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateTransaction appends a ledger row
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference fetches a ledger row by its idempotency reference
func (r *GormWalletRepository) GetTransactionByReference(reference string) (*models.WalletTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.WalletTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions lists ledger rows with pagination
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if filter.DistributorID != 0 {
		query = query.Where("distributor_id = ?", filter.DistributorID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
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

	var txns []models.WalletTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumByDistributor sums the signed ledger for one distributor. Used by the
// ledger replay check: the result must equal the distributor's TotalWallet.
func (r *GormWalletRepository) SumByDistributor(distributorID uint) (models.Money, error) {
	type row struct {
		Direction string
		Total     models.Money
	}
	var rows []row
	if err := r.db.Model(&models.WalletTransaction{}).
		Select("direction, SUM(amount) AS total").
		Where("distributor_id = ?", distributorID).
		Group("direction").
		Scan(&rows).Error; err != nil {
		return models.Money{}, err
	}
	sum := models.Money{}
	for _, item := range rows {
		if item.Direction == "out" {
			sum = models.NewMoneyFromDecimal(sum.Decimal.Sub(item.Total.Decimal))
			continue
		}
		sum = models.NewMoneyFromDecimal(sum.Decimal.Add(item.Total.Decimal))
	}
	return sum, nil
}
