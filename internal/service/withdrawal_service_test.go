package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/queue"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:withdrawal_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Distributor{},
		&models.WalletTransaction{},
		&models.WithdrawalRequest{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	distributorRepo := repository.NewDistributorRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	walletService := NewWalletService(distributorRepo, walletRepo)
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewWithdrawalService(cfg, withdrawalRepo, paymentRepo, walletService, NewUploadService(cfg), queueClient)
	return svc, walletService, db
}

func TestWithdrawalServiceApproveScenario(t *testing.T) {
	svc, walletService, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 201, decimal.NewFromInt(500))

	request, err := svc.Create(201, models.NewMoneyFromDecimal(decimal.NewFromInt(500)), "cash out")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if request.Status != constants.WithdrawalStatusPending {
		t.Fatalf("unexpected status: %s", request.Status)
	}

	payment, err := svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		ProofURL:  "/uploads/proof/2026/08/receipt.png",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if payment.PaymentType != constants.PaymentTypeWithdrawal || payment.Status != constants.PaymentStatusCompleted {
		t.Fatalf("unexpected payment: %+v", payment)
	}

	balance, err := walletService.Balance(201)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Decimal.IsZero() {
		t.Fatalf("expected zero balance, got %s", balance.String())
	}

	updated, err := svc.GetByID(request.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != constants.WithdrawalStatusPaid || updated.ProcessedDate == nil {
		t.Fatalf("request not settled: %+v", updated)
	}

	var paymentCount int64
	if err := db.Model(&models.Payment{}).Where("withdrawal_request_id = ?", request.ID).Count(&paymentCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if paymentCount != 1 {
		t.Fatalf("expected one payment, got %d", paymentCount)
	}

	// second approval of the same request must not settle again
	_, err = svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		ProofURL:  "/uploads/proof/2026/08/receipt.png",
	})
	if !errors.Is(err, ErrWithdrawalAlreadyPaid) {
		t.Fatalf("expected already paid, got: %v", err)
	}
}

func TestWithdrawalServiceApproveAmountMismatch(t *testing.T) {
	svc, walletService, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 202, decimal.NewFromInt(100))

	request, err := svc.Create(202, models.NewMoneyFromDecimal(decimal.NewFromInt(60)), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		ProofURL:  "/uploads/proof/x.png",
	})
	if !errors.Is(err, ErrWithdrawalAmountMismatch) {
		t.Fatalf("expected amount mismatch, got: %v", err)
	}
	balance, _ := walletService.Balance(202)
	if !balance.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed on failed approval: %s", balance.String())
	}
}

func TestWithdrawalServiceApproveInsufficientFunds(t *testing.T) {
	svc, _, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 203, decimal.NewFromInt(10))

	request, err := svc.Create(203, models.NewMoneyFromDecimal(decimal.NewFromInt(60)), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(60)),
		ProofURL:  "/uploads/proof/x.png",
	})
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}
}

func TestWithdrawalServiceApproveMissingProofRollsBack(t *testing.T) {
	svc, walletService, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 204, decimal.NewFromInt(80))

	request, err := svc.Create(204, models.NewMoneyFromDecimal(decimal.NewFromInt(80)), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
	})
	if !errors.Is(err, ErrWithdrawalMissingProof) {
		t.Fatalf("expected missing proof, got: %v", err)
	}
	// the debit inside the failed approval must have rolled back
	balance, _ := walletService.Balance(204)
	if !balance.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("balance changed on rolled-back approval: %s", balance.String())
	}
	var ledgerCount int64
	if err := db.Model(&models.WalletTransaction{}).Where("distributor_id = ?", 204).Count(&ledgerCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if ledgerCount != 0 {
		t.Fatalf("expected no ledger rows, got %d", ledgerCount)
	}
}

func TestWithdrawalServiceRejectIsTerminal(t *testing.T) {
	svc, _, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 205, decimal.NewFromInt(40))

	request, err := svc.Create(205, models.NewMoneyFromDecimal(decimal.NewFromInt(40)), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	rejected, err := svc.Reject(request.ID, 1, "invalid bank details")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("unexpected status: %s", rejected.Status)
	}
	_, err = svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		ProofURL:  "/uploads/proof/x.png",
	})
	if !errors.Is(err, ErrWithdrawalInvalidState) {
		t.Fatalf("expected invalid state, got: %v", err)
	}
}

func TestWithdrawalServiceCreateInvalidAmount(t *testing.T) {
	svc, _, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 206, decimal.NewFromInt(40))

	if _, err := svc.Create(206, models.NewMoneyFromDecimal(decimal.Zero), ""); !errors.Is(err, ErrWithdrawalInvalidAmount) {
		t.Fatalf("expected invalid amount, got: %v", err)
	}
}

func TestWithdrawalServiceReplaceProofRequiresPayment(t *testing.T) {
	svc, _, db := setupWithdrawalServiceTest(t)
	createTestDistributor(t, db, 207, decimal.NewFromInt(90))

	request, err := svc.Create(207, models.NewMoneyFromDecimal(decimal.NewFromInt(90)), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.ReplaceProof(request.ID, 1, "/uploads/proof/new.png"); !errors.Is(err, ErrWithdrawalPaymentMissing) {
		t.Fatalf("expected payment missing, got: %v", err)
	}

	if _, err := svc.Approve(AdminApproveWithdrawalInput{
		RequestID: request.ID,
		AdminID:   1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(90)),
		ProofURL:  "/uploads/proof/old.png",
	}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	payment, err := svc.ReplaceProof(request.ID, 1, "/uploads/proof/new.png")
	if err != nil {
		t.Fatalf("replace proof failed: %v", err)
	}
	if payment.ProofImageURL != "/uploads/proof/new.png" {
		t.Fatalf("proof not replaced: %s", payment.ProofImageURL)
	}
	if !payment.Amount.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("amount changed on proof replacement: %s", payment.Amount.String())
	}
}
