package public

import (
	"errors"

	"github.com/carenation/backend/internal/http/response"
	"github.com/carenation/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Sentinel-to-reply tables. Every branch maps one service error to a
// stable business code and a message the frontend can show as-is.

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, response.CodeBadRequest, "invalid email address", nil)
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrEmailExists):
		respondError(c, response.CodeConflict, "email is already registered", nil)
	case errors.Is(err, service.ErrSponsorNotFound):
		respondError(c, response.CodeBadRequest, "sponsor not found", nil)
	case errors.Is(err, service.ErrPlacementOccupied):
		respondError(c, response.CodeConflict, "the chosen position is already taken", nil)
	case errors.Is(err, service.ErrPlacementInvalid):
		respondError(c, response.CodeBadRequest, "position must be left or right", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		respondError(c, response.CodeForbidden, "account is disabled", nil)
	case errors.Is(err, service.ErrInvalidPassword):
		respondError(c, response.CodeBadRequest, "current password is incorrect", nil)
	default:
		respondError(c, response.CodeInternal, "request failed", err)
	}
}

func respondWalletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWalletInvalidAmount):
		respondError(c, response.CodeBadRequest, "amount must be positive", nil)
	case errors.Is(err, service.ErrWalletInsufficientBalance):
		respondError(c, response.CodeBadRequest, "insufficient balance", nil)
	case errors.Is(err, service.ErrWalletSelfTransfer):
		respondError(c, response.CodeBadRequest, "cannot transfer to yourself", nil)
	case errors.Is(err, service.ErrWalletDistributorNotFound):
		respondError(c, response.CodeNotFound, "account not found", nil)
	case errors.Is(err, service.ErrTransferAuthFailed):
		respondError(c, response.CodeUnauthorized, "password verification failed", nil)
	case errors.Is(err, service.ErrTransferReceiverNotFound):
		respondError(c, response.CodeNotFound, "receiver not found", nil)
	default:
		respondError(c, response.CodeInternal, "wallet operation failed", err)
	}
}

func respondWithdrawalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWithdrawalInvalidAmount):
		respondError(c, response.CodeBadRequest, "withdrawal amount is below the minimum", nil)
	case errors.Is(err, service.ErrWalletDistributorNotFound):
		respondError(c, response.CodeNotFound, "account not found", nil)
	case errors.Is(err, service.ErrWithdrawalNotFound):
		respondError(c, response.CodeNotFound, "withdrawal request not found", nil)
	default:
		respondError(c, response.CodeInternal, "withdrawal request failed", err)
	}
}

func respondKhaltiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrKhaltiEmptyCart):
		respondError(c, response.CodeBadRequest, "cart is empty", nil)
	case errors.Is(err, service.ErrKhaltiPidxRequired):
		respondError(c, response.CodeBadRequest, "pidx is required", nil)
	case errors.Is(err, service.ErrKhaltiRecordNotFound):
		respondError(c, response.CodeNotFound, "payment session not found", nil)
	case errors.Is(err, service.ErrKhaltiForbidden):
		respondError(c, response.CodeForbidden, "payment session belongs to another account", nil)
	case errors.Is(err, service.ErrKhaltiPaymentIncomplete):
		respondError(c, response.CodeBadRequest, "payment is not completed yet", nil)
	case errors.Is(err, service.ErrKhaltiAmountMismatch):
		respondError(c, response.CodeBadRequest, "paid amount does not match the order", nil)
	case errors.Is(err, service.ErrKhaltiOrderApproval):
		respondError(c, response.CodeInternal, "payment received but order approval failed, please retry", nil)
	case errors.Is(err, service.ErrKhaltiGateway):
		respondError(c, response.CodeInternal, "payment gateway is unavailable", err)
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrProductOutOfStock):
		respondCartError(c, err)
	default:
		respondError(c, response.CodeInternal, "payment request failed", err)
	}
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCartQuantityInvalid):
		respondError(c, response.CodeBadRequest, "quantity must be positive", nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrProductInactive):
		respondError(c, response.CodeBadRequest, "product is not available", nil)
	case errors.Is(err, service.ErrProductOutOfStock):
		respondError(c, response.CodeBadRequest, "not enough stock", nil)
	default:
		respondError(c, response.CodeInternal, "cart operation failed", err)
	}
}

func respondImpersonationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImpersonationInvalidCode):
		respondError(c, response.CodeUnauthorized, "code is invalid or expired", nil)
	case errors.Is(err, service.ErrImpersonationSessionMismatch):
		respondError(c, response.CodeForbidden, "code was issued to a different session", nil)
	case errors.Is(err, service.ErrImpersonationTargetNotFound):
		respondError(c, response.CodeNotFound, "account not found", nil)
	default:
		respondError(c, response.CodeInternal, "request failed", err)
	}
}
