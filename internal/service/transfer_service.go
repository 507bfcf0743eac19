package service

import (
	"strings"

	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TransferService peer-to-peer balance transfers. Moving money to another
// distributor is the one wallet operation a member can trigger directly, so
// it demands a fresh password check on every call regardless of the session
// token being valid.
type TransferService struct {
	distributorRepo repository.DistributorRepository
	walletService   *WalletService
}

// TransferInput member-initiated transfer input. Password is the sender's
// login password, re-verified before any money moves.
type TransferInput struct {
	FromID    uint
	ToID      uint
	Amount    models.Money
	Password  string
	Reference string
	Remark    string
}

// NewTransferService creates the transfer service
func NewTransferService(distributorRepo repository.DistributorRepository, walletService *WalletService) *TransferService {
	return &TransferService{
		distributorRepo: distributorRepo,
		walletService:   walletService,
	}
}

// Transfer re-authenticates the sender, checks the receiver and delegates
// the atomic two-leg move to the wallet service. Nothing is mutated before
// the password check passes.
func (s *TransferService) Transfer(input TransferInput) (*WalletTransferResult, error) {
	sender, err := s.distributorRepo.GetByID(input.FromID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrWalletDistributorNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(sender.PasswordHash), []byte(input.Password)) != nil {
		logger.Warnw("transfer_auth_failed", "distributor_id", input.FromID)
		return nil, ErrTransferAuthFailed
	}

	receiver, err := s.distributorRepo.GetByID(input.ToID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrTransferReceiverNotFound
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = "transfer:" + uuid.New().String()
	}
	result, err := s.walletService.Transfer(WalletTransferInput{
		FromID:    input.FromID,
		ToID:      input.ToID,
		Amount:    input.Amount,
		Reference: reference,
		Remark:    input.Remark,
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("transfer_completed",
		"from_id", input.FromID,
		"to_id", input.ToID,
		"amount", input.Amount.String(),
		"reference", reference,
	)
	return result, nil
}
