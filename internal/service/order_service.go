package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService order placement and approval. Orders are only ever placed
// from a cart during gateway verification; prices are snapshotted into the
// items and stock is decremented under row locks.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService creates the order service
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// GetByID fetches an order with its items
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List lists orders
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// PlaceFromCartInTx creates a paid order from the given cart lines inside an
// existing transaction. Products are locked, stock is re-checked and
// decremented, and the live price is snapshotted into each order item.
func (s *OrderService) PlaceFromCartInTx(tx *gorm.DB, distributorID uint, items []models.CartItem, paidAt time.Time) (*models.Order, error) {
	if tx == nil || len(items) == 0 {
		return nil, ErrOrderStatusInvalid
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.WithTx(tx).ListByIDsForUpdate(productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	total := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}
		if item.Quantity <= 0 {
			return nil, ErrCartQuantityInvalid
		}
		if product.Stock < item.Quantity {
			return nil, ErrProductOutOfStock
		}
		unit := product.Price.Decimal.Round(2)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(line)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			UnitPrice:  models.NewMoneyFromDecimal(unit),
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(line),
			CreatedAt:  paidAt,
			UpdatedAt:  paidAt,
		})

		if err := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, item.Quantity).
			Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		OrderNo:       generateOrderNo(),
		DistributorID: distributorID,
		Status:        constants.OrderStatusPaid,
		Currency:      constants.SiteCurrencyDefault,
		TotalAmount:   models.NewMoneyFromDecimal(total),
		PaidAt:        &paidAt,
		CreatedAt:     paidAt,
		UpdatedAt:     paidAt,
		Items:         orderItems,
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Approve marks a paid order as approved. Already-approved orders are a
// no-op so retried reconciliations stay idempotent.
func (s *OrderService) Approve(orderID uint) (*models.Order, error) {
	var result *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == constants.OrderStatusApproved {
			result = order
			return nil
		}
		if order.Status != constants.OrderStatusPaid {
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		order.Status = constants.OrderStatusApproved
		order.ApprovedAt = &now
		order.UpdatedAt = now
		if err := s.orderRepo.WithTx(tx).Update(order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// generateOrderNo builds a sortable order number with a random suffix
func generateOrderNo() string {
	suffix := "000000"
	if n, err := rand.Int(rand.Reader, big.NewInt(1000000)); err == nil {
		suffix = fmt.Sprintf("%06d", n.Int64())
	}
	return fmt.Sprintf("CN%s%s", time.Now().Format("20060102150405"), suffix)
}
