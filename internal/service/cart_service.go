package service

import (
	"time"

	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService per-distributor shopping cart. Totals always come from live
// product prices; quantities are the only client-supplied numbers.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// CartSummary cart lines plus the live-price total
type CartSummary struct {
	Items []models.CartItem `json:"items"`
	Total models.Money      `json:"total"`
}

// NewCartService creates the cart service
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// List returns the cart with its current total
func (s *CartService) List(distributorID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByDistributor(distributorID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		line := item.Product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return &CartSummary{
		Items: items,
		Total: models.NewMoneyFromDecimal(total),
	}, nil
}

// Set adds a product to the cart or replaces its quantity
func (s *CartService) Set(distributorID, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrCartQuantityInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if !product.IsActive {
		return ErrProductInactive
	}
	if product.Stock < quantity {
		return ErrProductOutOfStock
	}
	now := time.Now()
	return s.cartRepo.Upsert(&models.CartItem{
		DistributorID: distributorID,
		ProductID:     productID,
		Quantity:      quantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// Remove drops one product line from the cart
func (s *CartService) Remove(distributorID, productID uint) error {
	return s.cartRepo.DeleteByDistributorAndProduct(distributorID, productID)
}

// Clear empties the cart
func (s *CartService) Clear(distributorID uint) error {
	return s.cartRepo.ClearByDistributor(distributorID)
}
