package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/queue"
	"github.com/carenation/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService withdrawal workflow: pending -> paid | rejected, both
// terminal. Approval debits the wallet and writes the Payment record in one
// transaction; two concurrent approvals of the same request settle exactly
// once because the request row is locked and re-checked under the lock.
type WithdrawalService struct {
	cfg            *config.Config
	withdrawalRepo repository.WithdrawalRepository
	paymentRepo    repository.PaymentRepository
	walletService  *WalletService
	uploadService  *UploadService
	queueClient    *queue.Client
}

// AdminApproveWithdrawalInput approval input. Amount is the amount the admin
// confirms paying out and must match the requested amount exactly.
type AdminApproveWithdrawalInput struct {
	RequestID uint
	AdminID   uint
	Amount    models.Money
	ProofURL  string
	Remark    string
}

// NewWithdrawalService creates the withdrawal service
func NewWithdrawalService(
	cfg *config.Config,
	withdrawalRepo repository.WithdrawalRepository,
	paymentRepo repository.PaymentRepository,
	walletService *WalletService,
	uploadService *UploadService,
	queueClient *queue.Client,
) *WithdrawalService {
	return &WithdrawalService{
		cfg:            cfg,
		withdrawalRepo: withdrawalRepo,
		paymentRepo:    paymentRepo,
		walletService:  walletService,
		uploadService:  uploadService,
		queueClient:    queueClient,
	}
}

// Create files a withdrawal request. The balance is not checked here; the
// request amount is validated against the wallet only at approval time.
func (s *WithdrawalService) Create(distributorID uint, amount models.Money, remark string) (*models.WithdrawalRequest, error) {
	if distributorID == 0 {
		return nil, ErrWalletDistributorNotFound
	}
	rounded := amount.Decimal.Round(2)
	if rounded.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWithdrawalInvalidAmount
	}
	min := decimal.NewFromFloat(s.cfg.Withdrawal.MinAmount)
	if min.GreaterThan(decimal.Zero) && rounded.LessThan(min) {
		return nil, ErrWithdrawalInvalidAmount
	}

	now := time.Now()
	request := &models.WithdrawalRequest{
		DistributorID: distributorID,
		Amount:        models.NewMoneyFromDecimal(rounded),
		Status:        constants.WithdrawalStatusPending,
		Remark:        strings.TrimSpace(remark),
		RequestDate:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.withdrawalRepo.Create(request); err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_created",
		"request_id", request.ID,
		"distributor_id", distributorID,
		"amount", request.Amount.String(),
	)
	return request, nil
}

// GetByID fetches a request with its payment
func (s *WithdrawalService) GetByID(requestID uint) (*models.WithdrawalRequest, error) {
	request, err := s.withdrawalRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrWithdrawalNotFound
	}
	return request, nil
}

// List lists requests
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.List(filter)
}

// ListPayouts lists settled withdrawal payments for the payouts report
func (s *WithdrawalService) ListPayouts(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	filter.PaymentType = constants.PaymentTypeWithdrawal
	return s.paymentRepo.List(filter)
}

// Approve settles a pending request: debits the wallet, writes the Payment
// record and marks the request paid, all in one transaction.
func (s *WithdrawalService) Approve(input AdminApproveWithdrawalInput) (*models.Payment, error) {
	if input.RequestID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	var paymentResult *models.Payment
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		request, err := s.withdrawalRepo.WithTx(tx).GetByIDForUpdate(input.RequestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}
		if request.Status != constants.WithdrawalStatusPending {
			if request.Status == constants.WithdrawalStatusPaid {
				return ErrWithdrawalAlreadyPaid
			}
			return ErrWithdrawalInvalidState
		}
		existing, err := s.paymentRepo.WithTx(tx).GetByWithdrawalRequestID(request.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrWithdrawalAlreadyPaid
		}
		if !input.Amount.Decimal.Round(2).Equal(request.Amount.Decimal.Round(2)) {
			return ErrWithdrawalAmountMismatch
		}

		now := time.Now()
		if _, err := s.walletService.DebitInTx(tx, WalletChangeInput{
			DistributorID:       request.DistributorID,
			Amount:              request.Amount,
			TxnType:             constants.WalletTxnTypeWithdrawalPayout,
			Reference:           fmt.Sprintf("withdrawal:%d:payout", request.ID),
			Remark:              "withdrawal payout",
			WithdrawalRequestID: &request.ID,
		}); err != nil {
			return err
		}

		proofURL := strings.TrimSpace(input.ProofURL)
		if proofURL == "" {
			proofURL = strings.TrimSpace(request.PaymentProofURL)
		}
		if proofURL == "" {
			return ErrWithdrawalMissingProof
		}

		payment := &models.Payment{
			PaymentType:         constants.PaymentTypeWithdrawal,
			Status:              constants.PaymentStatusCompleted,
			Amount:              request.Amount,
			Currency:            constants.SiteCurrencyDefault,
			ProofImageURL:       proofURL,
			PaidByID:            input.AdminID,
			PaidToID:            request.DistributorID,
			WithdrawalRequestID: &request.ID,
			Remark:              strings.TrimSpace(input.Remark),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.paymentRepo.WithTx(tx).Create(payment); err != nil {
			return err
		}

		request.Status = constants.WithdrawalStatusPaid
		request.ProcessedDate = &now
		request.ProcessedByID = &input.AdminID
		request.PaymentProofURL = proofURL
		request.UpdatedAt = now
		if err := s.withdrawalRepo.WithTx(tx).Update(request); err != nil {
			return err
		}
		paymentResult = payment
		return nil
	})
	if err != nil {
		logger.Warnw("withdrawal_approve_failed",
			"request_id", input.RequestID,
			"admin_id", input.AdminID,
			"error", err,
		)
		return nil, err
	}

	logger.Infow("withdrawal_approved",
		"request_id", input.RequestID,
		"admin_id", input.AdminID,
		"payment_id", paymentResult.ID,
	)
	s.notify(input.RequestID, constants.NotificationEventWithdrawalPaid)
	return paymentResult, nil
}

// Reject declines a pending request. No wallet effect.
func (s *WithdrawalService) Reject(requestID, adminID uint, remark string) (*models.WithdrawalRequest, error) {
	if requestID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	var result *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		request, err := s.withdrawalRepo.WithTx(tx).GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}
		if request.Status != constants.WithdrawalStatusPending {
			if request.Status == constants.WithdrawalStatusPaid {
				return ErrWithdrawalAlreadyPaid
			}
			return ErrWithdrawalInvalidState
		}
		now := time.Now()
		request.Status = constants.WithdrawalStatusRejected
		request.ProcessedDate = &now
		request.ProcessedByID = &adminID
		if trimmed := strings.TrimSpace(remark); trimmed != "" {
			request.Remark = trimmed
		}
		request.UpdatedAt = now
		if err := s.withdrawalRepo.WithTx(tx).Update(request); err != nil {
			return err
		}
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_rejected", "request_id", requestID, "admin_id", adminID)
	s.notify(requestID, constants.NotificationEventWithdrawalRejected)
	return result, nil
}

// ReplaceProof swaps the stored proof image on a settled payout. The amount
// and the wallet are never touched; the old image is removed from storage.
func (s *WithdrawalService) ReplaceProof(requestID, adminID uint, newProofURL string) (*models.Payment, error) {
	if requestID == 0 {
		return nil, ErrWithdrawalNotFound
	}
	newProofURL = strings.TrimSpace(newProofURL)
	if newProofURL == "" {
		return nil, ErrWithdrawalMissingProof
	}

	var oldProofURL string
	var paymentResult *models.Payment
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		request, err := s.withdrawalRepo.WithTx(tx).GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrWithdrawalNotFound
		}
		payment, err := s.paymentRepo.WithTx(tx).GetByWithdrawalRequestID(request.ID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrWithdrawalPaymentMissing
		}

		now := time.Now()
		oldProofURL = payment.ProofImageURL
		payment.ProofImageURL = newProofURL
		payment.UpdatedAt = now
		if err := s.paymentRepo.WithTx(tx).Update(payment); err != nil {
			return err
		}
		request.PaymentProofURL = newProofURL
		request.UpdatedAt = now
		if err := s.withdrawalRepo.WithTx(tx).Update(request); err != nil {
			return err
		}
		paymentResult = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldProofURL != "" && oldProofURL != newProofURL && s.uploadService != nil {
		if err := s.uploadService.RemoveStoredFile(oldProofURL); err != nil {
			logger.Warnw("withdrawal_proof_cleanup_failed",
				"request_id", requestID,
				"path", oldProofURL,
				"error", err,
			)
		}
	}
	logger.Infow("withdrawal_proof_replaced", "request_id", requestID, "admin_id", adminID)
	return paymentResult, nil
}

func (s *WithdrawalService) notify(requestID uint, event string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueWithdrawalNotify(queue.WithdrawalNotifyPayload{
		RequestID: requestID,
		Event:     event,
	}); err != nil {
		logger.Warnw("withdrawal_notify_enqueue_failed",
			"request_id", requestID,
			"event", event,
			"error", err,
		)
	}
}
