package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Distributor{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	distributorRepo := repository.NewDistributorRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	return NewWalletService(distributorRepo, walletRepo), db
}

func createTestDistributor(t *testing.T, db *gorm.DB, id uint, balance decimal.Decimal) {
	t.Helper()
	now := time.Now()
	distributor := models.Distributor{
		ID:           id,
		Email:        fmt.Sprintf("distributor_%d@example.com", id),
		PasswordHash: "hash",
		Status:       constants.DistributorStatusActive,
		TotalWallet:  models.NewMoneyFromDecimal(balance),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&distributor).Error; err != nil {
		t.Fatalf("create distributor failed: %v", err)
	}
}

func TestWalletServiceCreditAppendsLedgerRow(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 101, decimal.Zero)

	txn, err := svc.Credit(WalletChangeInput{
		DistributorID: 101,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		TxnType:       constants.WalletTxnTypeAdminAdjust,
		Reference:     "adjust:101:1",
		Remark:        "opening balance",
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if txn.Direction != constants.WalletTxnDirectionIn {
		t.Fatalf("unexpected direction: %s", txn.Direction)
	}
	if !txn.BalanceBefore.Decimal.IsZero() || !txn.BalanceAfter.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected before/after: %s/%s", txn.BalanceBefore, txn.BalanceAfter)
	}

	balance, err := svc.Balance(101)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected balance: %s", balance.String())
	}
}

func TestWalletServiceDebitInsufficientLeavesState(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 102, decimal.NewFromInt(10))

	_, err := svc.Debit(WalletChangeInput{
		DistributorID: 102,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		TxnType:       constants.WalletTxnTypeAdminAdjust,
		Reference:     "adjust:102:1",
	})
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	balance, err := svc.Balance(102)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance changed after failed debit: %s", balance.String())
	}
	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("distributor_id = ?", 102).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no ledger rows, got %d", count)
	}
}

func TestWalletServiceInvalidAmount(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 103, decimal.Zero)

	_, err := svc.Credit(WalletChangeInput{
		DistributorID: 103,
		Amount:        models.NewMoneyFromDecimal(decimal.Zero),
		TxnType:       constants.WalletTxnTypeAdminAdjust,
		Reference:     "adjust:103:1",
	})
	if !errors.Is(err, ErrWalletInvalidAmount) {
		t.Fatalf("expected invalid amount, got: %v", err)
	}
}

func TestWalletServiceDuplicateReferenceIdempotent(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 104, decimal.Zero)

	input := WalletChangeInput{
		DistributorID: 104,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		TxnType:       constants.WalletTxnTypeCommission,
		Reference:     "commission:104:week1",
	}
	first, err := svc.Credit(input)
	if err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	second, err := svc.Credit(input)
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected recorded outcome, got new row %d vs %d", second.ID, first.ID)
	}

	balance, err := svc.Balance(104)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("duplicate reference changed balance: %s", balance.String())
	}
	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("distributor_id = ?", 104).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one ledger row, got %d", count)
	}
}

func TestWalletServiceTransferRoundTrip(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 105, decimal.NewFromInt(200))
	createTestDistributor(t, db, 106, decimal.NewFromInt(30))

	result, err := svc.Transfer(WalletTransferInput{
		FromID:    105,
		ToID:      106,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(70)),
		Reference: "transfer:105:abc",
	})
	if err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	if !result.FromBalance.Decimal.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("unexpected sender balance: %s", result.FromBalance.String())
	}
	if !result.ToBalance.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected receiver balance: %s", result.ToBalance.String())
	}

	back, err := svc.Transfer(WalletTransferInput{
		FromID:    106,
		ToID:      105,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(70)),
		Reference: "transfer:106:def",
	})
	if err != nil {
		t.Fatalf("return transfer failed: %v", err)
	}
	if !back.FromBalance.Decimal.Equal(decimal.NewFromInt(30)) || !back.ToBalance.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("round trip did not restore balances: %s / %s", back.FromBalance, back.ToBalance)
	}

	var count int64
	if err := db.Model(&models.WalletTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected four ledger rows, got %d", count)
	}
	for _, id := range []uint{105, 106} {
		sum, err := svc.LedgerSum(id)
		if err != nil {
			t.Fatalf("ledger sum failed: %v", err)
		}
		balance, err := svc.Balance(id)
		if err != nil {
			t.Fatalf("balance failed: %v", err)
		}
		diff := balance.Decimal.Sub(sum.Decimal)
		opening := decimal.NewFromInt(200)
		if id == 106 {
			opening = decimal.NewFromInt(30)
		}
		if !diff.Equal(opening) {
			t.Fatalf("ledger replay mismatch for %d: balance %s, ledger %s", id, balance, sum)
		}
	}
}

func TestWalletServiceTransferSelfRejected(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 107, decimal.NewFromInt(100))

	_, err := svc.Transfer(WalletTransferInput{
		FromID: 107,
		ToID:   107,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	})
	if !errors.Is(err, ErrWalletSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got: %v", err)
	}
}

func TestWalletServiceTransferDuplicateReference(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createTestDistributor(t, db, 108, decimal.NewFromInt(100))
	createTestDistributor(t, db, 109, decimal.Zero)

	input := WalletTransferInput{
		FromID:    108,
		ToID:      109,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Reference: "transfer:108:once",
	}
	if _, err := svc.Transfer(input); err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}
	replay, err := svc.Transfer(input)
	if err != nil {
		t.Fatalf("replay transfer failed: %v", err)
	}
	if !replay.FromBalance.Decimal.Equal(decimal.NewFromInt(60)) || !replay.ToBalance.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("replay changed balances: %s / %s", replay.FromBalance, replay.ToBalance)
	}
	var count int64
	if err := db.Model(&models.WalletTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two ledger rows, got %d", count)
	}
}
