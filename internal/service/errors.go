package service

import "errors"

// Wallet ledger errors
var (
	ErrWalletInvalidAmount           = errors.New("wallet amount invalid")
	ErrWalletInsufficientBalance     = errors.New("wallet balance insufficient")
	ErrWalletSelfTransfer            = errors.New("wallet self transfer rejected")
	ErrWalletDistributorNotFound     = errors.New("wallet distributor not found")
	ErrWalletTransactionCreateFailed = errors.New("wallet transaction create failed")
	ErrWalletBalanceUpdateFailed     = errors.New("wallet balance update failed")
)

// Binary tree errors
var (
	ErrTreeNodeNotFound  = errors.New("tree node not found")
	ErrTreeCycle         = errors.New("tree reparent would create cycle")
	ErrTreeSlotOccupied  = errors.New("tree slot occupied")
	ErrTreeSlotInvalid   = errors.New("tree slot invalid")
	ErrTreeRootImmovable = errors.New("tree root cannot be moved")
)

// Withdrawal workflow errors
var (
	ErrWithdrawalNotFound       = errors.New("withdrawal request not found")
	ErrWithdrawalInvalidAmount  = errors.New("withdrawal amount invalid")
	ErrWithdrawalInvalidState   = errors.New("withdrawal request not pending")
	ErrWithdrawalAlreadyPaid    = errors.New("withdrawal request already paid")
	ErrWithdrawalAmountMismatch = errors.New("withdrawal amount mismatch")
	ErrWithdrawalMissingProof   = errors.New("withdrawal payment proof missing")
	ErrWithdrawalPaymentMissing = errors.New("withdrawal payment record missing")
)

// Khalti reconciliation errors
var (
	ErrKhaltiEmptyCart         = errors.New("khalti cart empty")
	ErrKhaltiPidxRequired      = errors.New("khalti pidx required")
	ErrKhaltiRecordNotFound    = errors.New("khalti payment record not found")
	ErrKhaltiForbidden         = errors.New("khalti payment record owned by another account")
	ErrKhaltiGateway           = errors.New("khalti gateway error")
	ErrKhaltiPaymentIncomplete = errors.New("khalti payment not completed")
	ErrKhaltiAmountMismatch    = errors.New("khalti amount mismatch")
	ErrKhaltiOrderApproval     = errors.New("khalti order approval failed")
)

// Balance transfer errors
var (
	ErrTransferAuthFailed       = errors.New("transfer re-authentication failed")
	ErrTransferReceiverNotFound = errors.New("transfer receiver not found")
)

// Impersonation errors
var (
	ErrImpersonationTargetNotFound  = errors.New("impersonation target not found")
	ErrImpersonationInvalidCode     = errors.New("impersonation code invalid or expired")
	ErrImpersonationSessionMismatch = errors.New("impersonation session mismatch")
)

// Account errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailExists         = errors.New("email already registered")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrWeakPassword        = errors.New("password too weak")
	ErrCaptchaInvalid      = errors.New("captcha invalid")
	ErrSponsorNotFound     = errors.New("sponsor not found")
	ErrPlacementOccupied   = errors.New("placement slot occupied")
	ErrPlacementInvalid    = errors.New("placement slot invalid")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrAdminUsernameExists = errors.New("admin username already exists")
)

// Catalog and order errors
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInactive     = errors.New("product inactive")
	ErrProductOutOfStock   = errors.New("product out of stock")
	ErrCartQuantityInvalid = errors.New("cart quantity invalid")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderStatusInvalid  = errors.New("order status invalid")
)

// Upload errors
var (
	ErrUploadFileTooLarge   = errors.New("upload file too large")
	ErrUploadTypeNotAllowed = errors.New("upload file type not allowed")
)
