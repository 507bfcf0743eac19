package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type khaltiGatewayStub struct {
	server       *httptest.Server
	lookupStatus string
	lookupAmount int64
	lookupCalls  int
}

func newKhaltiGatewayStub(t *testing.T) *khaltiGatewayStub {
	t.Helper()
	stub := &khaltiGatewayStub{lookupStatus: "Completed"}
	mux := http.NewServeMux()
	mux.HandleFunc("/epayment/initiate/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Key test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"pidx":        "pidx-test-1",
			"payment_url": "https://test.khalti.com/?pidx=pidx-test-1",
			"expires_at":  time.Now().Add(30 * time.Minute).Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/epayment/lookup/", func(w http.ResponseWriter, r *http.Request) {
		stub.lookupCalls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"pidx":           "pidx-test-1",
			"total_amount":   stub.lookupAmount,
			"status":         stub.lookupStatus,
			"transaction_id": "txn-test-1",
			"fee":            0,
			"refunded":       false,
		})
	})
	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func setupKhaltiServiceTest(t *testing.T) (*KhaltiService, *khaltiGatewayStub, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:khalti_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Distributor{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.KhaltiPayment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	stub := newKhaltiGatewayStub(t)
	cfg := &config.Config{}
	cfg.Khalti.BaseURL = stub.server.URL
	cfg.Khalti.SecretKey = "test-secret"
	cfg.Khalti.WebsiteURL = "https://carenation.test"
	cfg.Khalti.TimeoutSeconds = 5

	khaltiRepo := repository.NewKhaltiPaymentRepository(db)
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	distributorRepo := repository.NewDistributorRepository(db)
	orderService := NewOrderService(orderRepo, productRepo)
	svc := NewKhaltiService(cfg, khaltiRepo, cartRepo, distributorRepo, orderService)
	return svc, stub, db
}

func seedKhaltiCart(t *testing.T, db *gorm.DB, distributorID uint, unitPrice int64, quantity int) *models.Product {
	t.Helper()
	createTestDistributor(t, db, distributorID, decimal.Zero)
	product := &models.Product{
		Name:     "Wellness pack",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(unitPrice)),
		Stock:    10,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := db.Create(&models.CartItem{
		DistributorID: distributorID,
		ProductID:     product.ID,
		Quantity:      quantity,
	}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	return product
}

func TestKhaltiServiceInitiatePersistsRecord(t *testing.T) {
	svc, _, db := setupKhaltiServiceTest(t)
	seedKhaltiCart(t, db, 301, 250, 2)

	result, err := svc.Initiate(context.Background(), 301, "https://carenation.test/return")
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if result.Pidx != "pidx-test-1" || result.PaymentURL == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.Amount.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected total: %s", result.Amount.String())
	}

	var record models.KhaltiPayment
	if err := db.Where("pidx = ?", "pidx-test-1").First(&record).Error; err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if record.Status != constants.KhaltiStatusInitiated || record.AmountPaisa != 50000 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.OrderID != nil {
		t.Fatalf("order must not exist before verification")
	}
}

func TestKhaltiServiceInitiateEmptyCart(t *testing.T) {
	svc, _, db := setupKhaltiServiceTest(t)
	createTestDistributor(t, db, 302, decimal.Zero)

	if _, err := svc.Initiate(context.Background(), 302, "https://carenation.test/return"); !errors.Is(err, ErrKhaltiEmptyCart) {
		t.Fatalf("expected empty cart, got: %v", err)
	}
}

func TestKhaltiServiceVerifyPlacesOrderOnce(t *testing.T) {
	svc, stub, db := setupKhaltiServiceTest(t)
	product := seedKhaltiCart(t, db, 303, 250, 2)
	stub.lookupAmount = 50000

	if _, err := svc.Initiate(context.Background(), 303, "https://carenation.test/return"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	result, err := svc.Verify(context.Background(), 303, "pidx-test-1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.Status != constants.KhaltiStatusCompleted || result.OrderID == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Order == nil || result.Order.Status != constants.OrderStatusApproved {
		t.Fatalf("order not approved: %+v", result.Order)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("expected one order, got %d", orderCount)
	}

	var stocked models.Product
	if err := db.First(&stocked, product.ID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	if stocked.Stock != 8 {
		t.Fatalf("stock not decremented: %d", stocked.Stock)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("distributor_id = ?", 303).Count(&cartCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart not cleared: %d lines", cartCount)
	}

	// the second verification must answer from the stored record
	callsBefore := stub.lookupCalls
	again, err := svc.Verify(context.Background(), 303, "pidx-test-1")
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if again.OrderID != result.OrderID {
		t.Fatalf("order id changed on retry: %d vs %d", again.OrderID, result.OrderID)
	}
	if stub.lookupCalls != callsBefore {
		t.Fatalf("settled session hit the gateway again")
	}
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("retry placed another order: %d", orderCount)
	}
}

func TestKhaltiServiceVerifyIncomplete(t *testing.T) {
	svc, stub, db := setupKhaltiServiceTest(t)
	seedKhaltiCart(t, db, 304, 100, 1)
	stub.lookupStatus = "Pending"
	stub.lookupAmount = 10000

	if _, err := svc.Initiate(context.Background(), 304, "https://carenation.test/return"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), 304, "pidx-test-1"); !errors.Is(err, ErrKhaltiPaymentIncomplete) {
		t.Fatalf("expected incomplete, got: %v", err)
	}

	var record models.KhaltiPayment
	if err := db.Where("pidx = ?", "pidx-test-1").First(&record).Error; err != nil {
		t.Fatalf("load record failed: %v", err)
	}
	if record.Status != constants.KhaltiStatusInitiated || record.OrderID != nil {
		t.Fatalf("incomplete lookup must not settle: %+v", record)
	}
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("incomplete lookup placed an order")
	}
}

func TestKhaltiServiceVerifyAmountMismatch(t *testing.T) {
	svc, stub, db := setupKhaltiServiceTest(t)
	seedKhaltiCart(t, db, 305, 100, 1)
	stub.lookupAmount = 9900

	if _, err := svc.Initiate(context.Background(), 305, "https://carenation.test/return"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), 305, "pidx-test-1"); !errors.Is(err, ErrKhaltiAmountMismatch) {
		t.Fatalf("expected amount mismatch, got: %v", err)
	}
	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("mismatched amount placed an order")
	}
}

func TestKhaltiServiceVerifyForeignSession(t *testing.T) {
	svc, stub, db := setupKhaltiServiceTest(t)
	seedKhaltiCart(t, db, 306, 100, 1)
	createTestDistributor(t, db, 307, decimal.Zero)
	stub.lookupAmount = 10000

	if _, err := svc.Initiate(context.Background(), 306, "https://carenation.test/return"); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := svc.Verify(context.Background(), 307, "pidx-test-1"); !errors.Is(err, ErrKhaltiForbidden) {
		t.Fatalf("expected forbidden, got: %v", err)
	}
}

func TestKhaltiServiceVerifyUnknownPidx(t *testing.T) {
	svc, _, db := setupKhaltiServiceTest(t)
	createTestDistributor(t, db, 308, decimal.Zero)

	if _, err := svc.Verify(context.Background(), 308, "no-such-pidx"); !errors.Is(err, ErrKhaltiRecordNotFound) {
		t.Fatalf("expected record not found, got: %v", err)
	}
	if _, err := svc.Verify(context.Background(), 308, "  "); !errors.Is(err, ErrKhaltiPidxRequired) {
		t.Fatalf("expected pidx required, got: %v", err)
	}
}
