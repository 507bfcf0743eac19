package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db)), db
}

func seedCartProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Stock:    stock,
		IsActive: active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestCartSetAndTotalFromLivePrices(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	tea := seedCartProduct(t, db, "tea", 120, 10, true)
	pack := seedCartProduct(t, db, "pack", 250, 5, true)

	if err := svc.Set(1, tea.ID, 2); err != nil {
		t.Fatalf("set tea failed: %v", err)
	}
	if err := svc.Set(1, pack.ID, 1); err != nil {
		t.Fatalf("set pack failed: %v", err)
	}
	// replacing a quantity must not add a second line
	if err := svc.Set(1, tea.ID, 3); err != nil {
		t.Fatalf("replace tea failed: %v", err)
	}

	summary, err := svc.List(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(summary.Items))
	}
	want := decimal.NewFromInt(120*3 + 250)
	if !summary.Total.Decimal.Equal(want) {
		t.Fatalf("total = %s, want %s", summary.Total.Decimal, want)
	}
}

func TestCartSetRejectsBadLines(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	inactive := seedCartProduct(t, db, "inactive", 100, 10, false)
	scarce := seedCartProduct(t, db, "scarce", 100, 2, true)

	if err := svc.Set(1, scarce.ID, 0); !errors.Is(err, ErrCartQuantityInvalid) {
		t.Fatalf("err = %v, want ErrCartQuantityInvalid", err)
	}
	if err := svc.Set(1, 999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
	if err := svc.Set(1, inactive.ID, 1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("err = %v, want ErrProductInactive", err)
	}
	if err := svc.Set(1, scarce.ID, 3); !errors.Is(err, ErrProductOutOfStock) {
		t.Fatalf("err = %v, want ErrProductOutOfStock", err)
	}
}

func TestCartRemoveAndClearAreScopedToOwner(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	tea := seedCartProduct(t, db, "tea", 120, 10, true)

	if err := svc.Set(1, tea.ID, 1); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := svc.Set(2, tea.ID, 4); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := svc.Remove(1, tea.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	mine, err := svc.List(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(mine.Items))
	}

	theirs, err := svc.List(2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(theirs.Items) != 1 || theirs.Items[0].Quantity != 4 {
		t.Fatalf("other cart was touched: %+v", theirs.Items)
	}

	if err := svc.Clear(2); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	theirs, _ = svc.List(2)
	if len(theirs.Items) != 0 {
		t.Fatalf("clear left %d items", len(theirs.Items))
	}
}
