package constants

// order status constants
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusApproved       = "approved"
	OrderStatusCanceled       = "canceled"
)

// payment record constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"

	PaymentTypeOrder      = "order"
	PaymentTypeWithdrawal = "withdrawal"
)

// withdrawal request status constants
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusPaid     = "paid"
	WithdrawalStatusRejected = "rejected"
)

// Khalti reconciliation record status constants
const (
	KhaltiStatusInitiated = "initiated"
	KhaltiStatusCompleted = "completed"
)

// Khalti gateway lookup status values (as returned by the gateway)
const (
	KhaltiLookupStatusCompleted = "Completed"
	KhaltiLookupStatusPending   = "Pending"
	KhaltiLookupStatusRefunded  = "Refunded"
	KhaltiLookupStatusExpired   = "Expired"
)

// wallet transaction type constants
const (
	WalletTxnTypeOrderPay         = "order_pay"
	WalletTxnTypeWithdrawalPayout = "withdrawal_payout"
	WalletTxnTypeTransferOut      = "transfer_out"
	WalletTxnTypeTransferIn       = "transfer_in"
	WalletTxnTypeAdminAdjust      = "admin_adjust"
	WalletTxnTypeCommission       = "commission"
)

// wallet transaction direction constants
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// binary tree slot constants
const (
	TreeSlotLeft  = "left"
	TreeSlotRight = "right"
)

// distributor status constants
const (
	DistributorStatusActive   = "active"
	DistributorStatusDisabled = "disabled"
)

// queue constants
const (
	QueueDefault         = "default"
	TaskKhaltiReconcile  = "khalti:reconcile"
	TaskWithdrawalNotify = "withdrawal:notify"
)

// notification event constants
const (
	NotificationEventWithdrawalPaid     = "withdrawal_paid"
	NotificationEventWithdrawalRejected = "withdrawal_rejected"

	NotificationBizTypeWithdrawal = "withdrawal"
)

// cache defaults
const (
	RedisPrefixDefault = "cn"
)

// currency constants
const (
	SiteCurrencyDefault = "NPR"
)
