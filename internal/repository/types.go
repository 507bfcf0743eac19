package repository

import "time"

// DistributorListFilter filter for distributor listing
type DistributorListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	ParentID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// WalletTransactionListFilter filter for wallet ledger listing
type WalletTransactionListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	OrderID       uint
	Type          string
	Direction     string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// WithdrawalListFilter filter for withdrawal request listing
type WithdrawalListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	Status        string
	RequestFrom   *time.Time
	RequestTo     *time.Time
}

// PaymentListFilter filter for payment record listing
type PaymentListFilter struct {
	Page        int
	PageSize    int
	PaymentType string
	Status      string
	PaidByID    uint
	PaidToID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// OrderListFilter filter for order listing
type OrderListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	Status        string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ProductListFilter filter for product listing
type ProductListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// KhaltiPaymentListFilter filter for gateway reconciliation record listing
type KhaltiPaymentListFilter struct {
	Page          int
	PageSize      int
	DistributorID uint
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}
