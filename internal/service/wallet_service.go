package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService append-only wallet ledger over the distributor balance.
// Every mutation locks the distributor row, re-checks the balance under the
// lock and appends exactly one WalletTransaction per leg. Reference is the
// idempotency key: a duplicate reference short-circuits and returns the
// recorded outcome without touching the balance again.
type WalletService struct {
	distributorRepo repository.DistributorRepository
	walletRepo      repository.WalletRepository
}

// WalletChangeInput single-leg credit/debit input
type WalletChangeInput struct {
	DistributorID       uint
	Amount              models.Money
	TxnType             string
	Reference           string
	Remark              string
	OrderID             *uint
	WithdrawalRequestID *uint
}

// WalletTransferInput peer-to-peer transfer input
type WalletTransferInput struct {
	FromID    uint
	ToID      uint
	Amount    models.Money
	Reference string
	Remark    string
}

// WalletTransferResult balances after both legs settled
type WalletTransferResult struct {
	FromBalance models.Money
	ToBalance   models.Money
	OutTxn      *models.WalletTransaction
	InTxn       *models.WalletTransaction
}

// NewWalletService creates the wallet service
func NewWalletService(distributorRepo repository.DistributorRepository, walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{
		distributorRepo: distributorRepo,
		walletRepo:      walletRepo,
	}
}

// Balance reads the current balance
func (s *WalletService) Balance(distributorID uint) (models.Money, error) {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return models.Money{}, err
	}
	if distributor == nil {
		return models.Money{}, ErrWalletDistributorNotFound
	}
	return distributor.TotalWallet, nil
}

// ListTransactions lists ledger rows
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// LedgerSum replays the signed ledger for one distributor. The result must
// equal the distributor's TotalWallet at all times.
func (s *WalletService) LedgerSum(distributorID uint) (models.Money, error) {
	return s.walletRepo.SumByDistributor(distributorID)
}

// Credit adds funds and appends one in-leg ledger row
func (s *WalletService) Credit(input WalletChangeInput) (*models.WalletTransaction, error) {
	var txnResult *models.WalletTransaction
	if err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		txn, err := s.CreditInTx(tx, input)
		if err != nil {
			return err
		}
		txnResult = txn
		return nil
	}); err != nil {
		return nil, err
	}
	return txnResult, nil
}

// Debit removes funds and appends one out-leg ledger row.
// Returns ErrWalletInsufficientBalance when the balance would go negative.
func (s *WalletService) Debit(input WalletChangeInput) (*models.WalletTransaction, error) {
	var txnResult *models.WalletTransaction
	if err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		txn, err := s.DebitInTx(tx, input)
		if err != nil {
			return err
		}
		txnResult = txn
		return nil
	}); err != nil {
		return nil, err
	}
	return txnResult, nil
}

// CreditInTx performs a credit inside an existing transaction
func (s *WalletService) CreditInTx(tx *gorm.DB, input WalletChangeInput) (*models.WalletTransaction, error) {
	return s.changeBalanceInTx(tx, input, constants.WalletTxnDirectionIn)
}

// DebitInTx performs a debit inside an existing transaction
func (s *WalletService) DebitInTx(tx *gorm.DB, input WalletChangeInput) (*models.WalletTransaction, error) {
	return s.changeBalanceInTx(tx, input, constants.WalletTxnDirectionOut)
}

// Transfer moves funds between two distributors atomically: both balance
// changes and both ledger legs commit together or not at all. Rows are locked
// in ascending ID order so two opposing transfers cannot deadlock.
func (s *WalletService) Transfer(input WalletTransferInput) (*WalletTransferResult, error) {
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	if input.FromID == 0 || input.ToID == 0 {
		return nil, ErrWalletDistributorNotFound
	}
	if input.FromID == input.ToID {
		return nil, ErrWalletSelfTransfer
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = buildWalletReference("transfer", input.FromID)
	}
	remark := cleanWalletRemark(input.Remark, "balance transfer")

	var result *WalletTransferResult
	if err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		walletRepo := s.walletRepo.WithTx(tx)
		distributorRepo := s.distributorRepo.WithTx(tx)

		// Duplicate reference: both legs were already written, return them.
		outRef := reference + ":out"
		inRef := reference + ":in"
		existingOut, err := walletRepo.GetTransactionByReference(outRef)
		if err != nil {
			return err
		}
		if existingOut != nil {
			existingIn, err := walletRepo.GetTransactionByReference(inRef)
			if err != nil {
				return err
			}
			if existingIn == nil {
				return ErrWalletTransactionCreateFailed
			}
			result = &WalletTransferResult{
				FromBalance: existingOut.BalanceAfter,
				ToBalance:   existingIn.BalanceAfter,
				OutTxn:      existingOut,
				InTxn:       existingIn,
			}
			return nil
		}

		lockOrder := []uint{input.FromID, input.ToID}
		if lockOrder[0] > lockOrder[1] {
			lockOrder[0], lockOrder[1] = lockOrder[1], lockOrder[0]
		}
		locked := make(map[uint]*models.Distributor, 2)
		for _, id := range lockOrder {
			distributor, err := distributorRepo.GetByIDForUpdate(id)
			if err != nil {
				return err
			}
			if distributor == nil {
				return ErrWalletDistributorNotFound
			}
			locked[id] = distributor
		}
		sender := locked[input.FromID]
		receiver := locked[input.ToID]

		now := time.Now()
		senderBefore := sender.TotalWallet.Decimal.Round(2)
		senderAfter := senderBefore.Sub(amount).Round(2)
		if senderAfter.LessThan(decimal.Zero) {
			return ErrWalletInsufficientBalance
		}
		receiverBefore := receiver.TotalWallet.Decimal.Round(2)
		receiverAfter := receiverBefore.Add(amount).Round(2)

		if err := s.updateBalance(tx, sender.ID, senderAfter, now); err != nil {
			return err
		}
		if err := s.updateBalance(tx, receiver.ID, receiverAfter, now); err != nil {
			return err
		}

		outTxn := &models.WalletTransaction{
			DistributorID: sender.ID,
			Type:          constants.WalletTxnTypeTransferOut,
			Direction:     constants.WalletTxnDirectionOut,
			Amount:        models.NewMoneyFromDecimal(amount),
			BalanceBefore: models.NewMoneyFromDecimal(senderBefore),
			BalanceAfter:  models.NewMoneyFromDecimal(senderAfter),
			Currency:      constants.SiteCurrencyDefault,
			Reference:     outRef,
			Remark:        remark,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := walletRepo.CreateTransaction(outTxn); err != nil {
			return ErrWalletTransactionCreateFailed
		}
		inTxn := &models.WalletTransaction{
			DistributorID: receiver.ID,
			Type:          constants.WalletTxnTypeTransferIn,
			Direction:     constants.WalletTxnDirectionIn,
			Amount:        models.NewMoneyFromDecimal(amount),
			BalanceBefore: models.NewMoneyFromDecimal(receiverBefore),
			BalanceAfter:  models.NewMoneyFromDecimal(receiverAfter),
			Currency:      constants.SiteCurrencyDefault,
			Reference:     inRef,
			Remark:        remark,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := walletRepo.CreateTransaction(inTxn); err != nil {
			return ErrWalletTransactionCreateFailed
		}

		result = &WalletTransferResult{
			FromBalance: models.NewMoneyFromDecimal(senderAfter),
			ToBalance:   models.NewMoneyFromDecimal(receiverAfter),
			OutTxn:      outTxn,
			InTxn:       inTxn,
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *WalletService) changeBalanceInTx(tx *gorm.DB, input WalletChangeInput, direction string) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletBalanceUpdateFailed
	}
	if input.DistributorID == 0 {
		return nil, ErrWalletDistributorNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrWalletTransactionCreateFailed
	}
	walletRepo := s.walletRepo.WithTx(tx)

	exists, err := walletRepo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	distributor, err := s.distributorRepo.WithTx(tx).GetByIDForUpdate(input.DistributorID)
	if err != nil {
		return nil, err
	}
	if distributor == nil {
		return nil, ErrWalletDistributorNotFound
	}

	now := time.Now()
	before := distributor.TotalWallet.Decimal.Round(2)
	var after decimal.Decimal
	if direction == constants.WalletTxnDirectionOut {
		after = before.Sub(amount).Round(2)
		if after.LessThan(decimal.Zero) {
			return nil, ErrWalletInsufficientBalance
		}
	} else {
		after = before.Add(amount).Round(2)
	}
	if err := s.updateBalance(tx, distributor.ID, after, now); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		DistributorID:       distributor.ID,
		OrderID:             input.OrderID,
		WithdrawalRequestID: input.WithdrawalRequestID,
		Type:                strings.TrimSpace(input.TxnType),
		Direction:           direction,
		Amount:              models.NewMoneyFromDecimal(amount),
		BalanceBefore:       models.NewMoneyFromDecimal(before),
		BalanceAfter:        models.NewMoneyFromDecimal(after),
		Currency:            constants.SiteCurrencyDefault,
		Reference:           reference,
		Remark:              cleanWalletRemark(input.Remark, "wallet entry"),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := walletRepo.CreateTransaction(txn); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	return txn, nil
}

func (s *WalletService) updateBalance(tx *gorm.DB, distributorID uint, after decimal.Decimal, now time.Time) error {
	if err := tx.Model(&models.Distributor{}).
		Where("id = ?", distributorID).
		Updates(map[string]interface{}{
			"total_wallet": models.NewMoneyFromDecimal(after),
			"updated_at":   now,
		}).Error; err != nil {
		return ErrWalletBalanceUpdateFailed
	}
	return nil
}

func cleanWalletRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func buildWalletReference(prefix string, id uint) string {
	normalized := strings.TrimSpace(prefix)
	if normalized == "" {
		normalized = "wallet"
	}
	return fmt.Sprintf("%s:%d:%d", normalized, id, time.Now().UnixNano())
}
