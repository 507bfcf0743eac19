package admin

import (
	"errors"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

func respondAdminAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondError(c, response.CodeBadRequest, "captcha verification failed", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		respondError(c, response.CodeForbidden, "account is disabled", nil)
	case errors.Is(err, service.ErrAdminUsernameExists):
		respondError(c, response.CodeConflict, "username is already taken", nil)
	case errors.Is(err, service.ErrInvalidPassword):
		respondError(c, response.CodeBadRequest, "current password is incorrect", nil)
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "request failed", err)
	}
}

func respondWithdrawalAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWithdrawalNotFound):
		respondError(c, response.CodeNotFound, "withdrawal request not found", nil)
	case errors.Is(err, service.ErrWithdrawalInvalidState):
		respondError(c, response.CodeConflict, "withdrawal request is not pending", nil)
	case errors.Is(err, service.ErrWithdrawalAlreadyPaid):
		respondError(c, response.CodeConflict, "withdrawal request is already paid", nil)
	case errors.Is(err, service.ErrWithdrawalAmountMismatch):
		respondError(c, response.CodeBadRequest, "approved amount does not match the request", nil)
	case errors.Is(err, service.ErrWithdrawalMissingProof):
		respondError(c, response.CodeBadRequest, "payment proof is required", nil)
	case errors.Is(err, service.ErrWithdrawalPaymentMissing):
		respondError(c, response.CodeNotFound, "payout record not found", nil)
	case errors.Is(err, service.ErrWalletInsufficientBalance):
		respondError(c, response.CodeBadRequest, "member balance is insufficient", nil)
	case errors.Is(err, service.ErrWalletDistributorNotFound):
		respondError(c, response.CodeNotFound, "member not found", nil)
	default:
		respondError(c, response.CodeInternal, "withdrawal operation failed", err)
	}
}

func respondTreeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTreeNodeNotFound):
		respondError(c, response.CodeNotFound, "member not found in the tree", nil)
	case errors.Is(err, service.ErrTreeCycle):
		respondError(c, response.CodeBadRequest, "move would place a member under its own downline", nil)
	case errors.Is(err, service.ErrTreeSlotOccupied):
		respondError(c, response.CodeConflict, "target position is already taken", nil)
	case errors.Is(err, service.ErrTreeSlotInvalid):
		respondError(c, response.CodeBadRequest, "position must be left or right", nil)
	case errors.Is(err, service.ErrTreeRootImmovable):
		respondError(c, response.CodeBadRequest, "the root member cannot be moved", nil)
	default:
		respondError(c, response.CodeInternal, "tree operation failed", err)
	}
}

func respondWalletAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWalletInvalidAmount):
		respondError(c, response.CodeBadRequest, "amount must be positive", nil)
	case errors.Is(err, service.ErrWalletInsufficientBalance):
		respondError(c, response.CodeBadRequest, "member balance is insufficient", nil)
	case errors.Is(err, service.ErrWalletDistributorNotFound):
		respondError(c, response.CodeNotFound, "member not found", nil)
	default:
		respondError(c, response.CodeInternal, "wallet operation failed", err)
	}
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUploadFileTooLarge):
		respondError(c, response.CodeBadRequest, "file is too large", nil)
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		respondError(c, response.CodeBadRequest, "file type is not allowed", nil)
	default:
		respondError(c, response.CodeInternal, "upload failed", err)
	}
}
