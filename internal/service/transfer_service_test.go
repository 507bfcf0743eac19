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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupTransferServiceTest(t *testing.T) (*TransferService, *WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:transfer_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Distributor{}, &models.WalletTransaction{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	distributorRepo := repository.NewDistributorRepository(db)
	walletService := NewWalletService(distributorRepo, repository.NewWalletRepository(db))
	return NewTransferService(distributorRepo, walletService), walletService, db
}

func setTestPassword(t *testing.T, db *gorm.DB, id uint, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := db.Model(&models.Distributor{}).Where("id = ?", id).Update("password_hash", string(hash)).Error; err != nil {
		t.Fatalf("set password failed: %v", err)
	}
}

func TestTransferServiceMovesFunds(t *testing.T) {
	svc, walletService, db := setupTransferServiceTest(t)
	createTestDistributor(t, db, 401, decimal.NewFromInt(200))
	createTestDistributor(t, db, 402, decimal.NewFromInt(10))
	setTestPassword(t, db, 401, "s3cret-pass")

	result, err := svc.Transfer(TransferInput{
		FromID:   401,
		ToID:     402,
		Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(75)),
		Password: "s3cret-pass",
		Remark:   "family support",
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if !result.FromBalance.Decimal.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("unexpected sender balance: %s", result.FromBalance.String())
	}
	if !result.ToBalance.Decimal.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("unexpected receiver balance: %s", result.ToBalance.String())
	}

	sum, err := walletService.LedgerSum(401)
	if err != nil {
		t.Fatalf("ledger sum failed: %v", err)
	}
	if !sum.Decimal.Equal(decimal.NewFromInt(-75)) {
		t.Fatalf("sender ledger does not replay: %s", sum.String())
	}
}

func TestTransferServiceWrongPasswordMutatesNothing(t *testing.T) {
	svc, walletService, db := setupTransferServiceTest(t)
	createTestDistributor(t, db, 403, decimal.NewFromInt(200))
	createTestDistributor(t, db, 404, decimal.NewFromInt(10))
	setTestPassword(t, db, 403, "s3cret-pass")

	_, err := svc.Transfer(TransferInput{
		FromID:   403,
		ToID:     404,
		Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(75)),
		Password: "wrong",
	})
	if !errors.Is(err, ErrTransferAuthFailed) {
		t.Fatalf("expected auth failed, got: %v", err)
	}

	balance, _ := walletService.Balance(403)
	if !balance.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("sender balance changed: %s", balance.String())
	}
	var ledgerCount int64
	db.Model(&models.WalletTransaction{}).Count(&ledgerCount)
	if ledgerCount != 0 {
		t.Fatalf("expected no ledger rows, got %d", ledgerCount)
	}
}

func TestTransferServiceReceiverMissing(t *testing.T) {
	svc, _, db := setupTransferServiceTest(t)
	createTestDistributor(t, db, 405, decimal.NewFromInt(50))
	setTestPassword(t, db, 405, "s3cret-pass")

	_, err := svc.Transfer(TransferInput{
		FromID:   405,
		ToID:     999,
		Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrTransferReceiverNotFound) {
		t.Fatalf("expected receiver not found, got: %v", err)
	}
}

func TestTransferServiceSelfTransferRejected(t *testing.T) {
	svc, _, db := setupTransferServiceTest(t)
	createTestDistributor(t, db, 406, decimal.NewFromInt(50))
	setTestPassword(t, db, 406, "s3cret-pass")

	_, err := svc.Transfer(TransferInput{
		FromID:   406,
		ToID:     406,
		Amount:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrWalletSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got: %v", err)
	}
}
