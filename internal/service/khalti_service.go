package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carenation/backend/internal/config"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/payment/khalti"
	"github.com/carenation/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// KhaltiService gateway checkout and reconciliation. The gateway is the
// source of truth for whether money moved: a session becomes an order only
// after a successful lookup, and verification of one pidx is serialized by a
// row lock on the reconciliation record. The order is placed exactly once,
// guarded by OrderID being persisted before approval is attempted.
type KhaltiService struct {
	cfg             *config.Config
	khaltiRepo      repository.KhaltiPaymentRepository
	cartRepo        repository.CartRepository
	distributorRepo repository.DistributorRepository
	orderService    *OrderService
}

// KhaltiInitiateResult checkout session handle returned to the client
type KhaltiInitiateResult struct {
	Pidx       string       `json:"pidx"`
	PaymentURL string       `json:"payment_url"`
	Amount     models.Money `json:"amount"`
}

// KhaltiVerifyResult settled state of one checkout session
type KhaltiVerifyResult struct {
	OrderID uint          `json:"order_id"`
	Status  string        `json:"status"`
	Amount  models.Money  `json:"amount"`
	PaidOn  *time.Time    `json:"paid_on"`
	Order   *models.Order `json:"order,omitempty"`
}

// NewKhaltiService creates the gateway service
func NewKhaltiService(
	cfg *config.Config,
	khaltiRepo repository.KhaltiPaymentRepository,
	cartRepo repository.CartRepository,
	distributorRepo repository.DistributorRepository,
	orderService *OrderService,
) *KhaltiService {
	return &KhaltiService{
		cfg:             cfg,
		khaltiRepo:      khaltiRepo,
		cartRepo:        cartRepo,
		distributorRepo: distributorRepo,
		orderService:    orderService,
	}
}

// List lists reconciliation records
func (s *KhaltiService) List(filter repository.KhaltiPaymentListFilter) ([]models.KhaltiPayment, int64, error) {
	return s.khaltiRepo.List(filter)
}

// Initiate opens a checkout session for the caller's cart. The total comes
// from live product prices, never from the client.
func (s *KhaltiService) Initiate(ctx context.Context, distributorID uint, returnURL string) (*KhaltiInitiateResult, error) {
	distributor, err := s.distributorRepo.GetByID(distributorID)
	if err != nil {
		return nil, err
	}
	if distributor == nil {
		return nil, ErrNotFound
	}

	items, err := s.cartRepo.ListByDistributor(distributorID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrKhaltiEmptyCart
	}

	total := models.Money{}
	products := make([]khalti.ProductDetail, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, ErrProductNotFound
		}
		if !item.Product.IsActive {
			return nil, ErrProductInactive
		}
		unitPaisa := khalti.AmountToPaisa(item.Product.Price.Decimal)
		linePaisa := unitPaisa * int64(item.Quantity)
		total = models.NewMoneyFromDecimal(total.Decimal.Add(
			item.Product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))))
		products = append(products, khalti.ProductDetail{
			Identity:   fmt.Sprintf("%d", item.ProductID),
			Name:       item.Product.Name,
			TotalPrice: linePaisa,
			Quantity:   item.Quantity,
			UnitPrice:  unitPaisa,
		})
	}

	amountPaisa := khalti.AmountToPaisa(total.Decimal)
	purchaseOrderID := fmt.Sprintf("ORD-%d-%s", time.Now().Unix(), strings.SplitN(uuid.New().String(), "-", 2)[0])

	session, err := khalti.Initiate(ctx, s.gatewayConfig(), khalti.InitiateInput{
		ReturnURL:       strings.TrimSpace(returnURL),
		AmountPaisa:     amountPaisa,
		PurchaseOrderID: purchaseOrderID,
		OrderName:       "CareNation order",
		Customer: khalti.CustomerInfo{
			Name:  customerName(distributor),
			Email: distributor.Email,
			Phone: distributor.Phone,
		},
		Products: products,
	})
	if err != nil {
		logger.Warnw("khalti_initiate_failed",
			"distributor_id", distributorID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrKhaltiGateway, err)
	}

	now := time.Now()
	record := &models.KhaltiPayment{
		DistributorID:   distributorID,
		Pidx:            session.Pidx,
		PurchaseOrderID: purchaseOrderID,
		Amount:          total,
		AmountPaisa:     amountPaisa,
		Status:          constants.KhaltiStatusInitiated,
		PaymentURL:      session.PaymentURL,
		RawResponse:     models.JSON(session.Raw),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.khaltiRepo.Create(record); err != nil {
		return nil, err
	}
	logger.Infow("khalti_initiated",
		"distributor_id", distributorID,
		"pidx", session.Pidx,
		"amount_paisa", amountPaisa,
	)
	return &KhaltiInitiateResult{
		Pidx:       session.Pidx,
		PaymentURL: session.PaymentURL,
		Amount:     total,
	}, nil
}

// Verify reconciles one checkout session against the gateway. Idempotent: a
// session already Completed with an order returns the stored result without
// another gateway call. distributorID 0 skips the ownership check and is
// reserved for the background sweep.
func (s *KhaltiService) Verify(ctx context.Context, distributorID uint, pidx string) (*KhaltiVerifyResult, error) {
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, ErrKhaltiPidxRequired
	}

	var record *models.KhaltiPayment
	var settled *KhaltiVerifyResult
	err := s.khaltiRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.khaltiRepo.WithTx(tx)
		locked, err := repo.GetByPidxForUpdate(pidx)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrKhaltiRecordNotFound
		}
		if distributorID != 0 && locked.DistributorID != distributorID {
			return ErrKhaltiForbidden
		}
		if locked.Status == constants.KhaltiStatusCompleted && locked.OrderID != nil {
			settled = buildKhaltiVerifyResult(locked)
			return nil
		}

		lookup, err := khalti.Lookup(ctx, s.gatewayConfig(), pidx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrKhaltiGateway, err)
		}
		if lookup.Status != khalti.LookupStatusCompleted {
			return ErrKhaltiPaymentIncomplete
		}
		if lookup.TotalAmount != locked.AmountPaisa {
			logger.Warnw("khalti_amount_mismatch",
				"pidx", pidx,
				"expected_paisa", locked.AmountPaisa,
				"gateway_paisa", lookup.TotalAmount,
			)
			return ErrKhaltiAmountMismatch
		}

		now := time.Now()
		if locked.OrderID == nil {
			items, err := s.cartRepo.WithTx(tx).ListByDistributor(locked.DistributorID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return ErrKhaltiEmptyCart
			}
			order, err := s.orderService.PlaceFromCartInTx(tx, locked.DistributorID, items, now)
			if err != nil {
				return err
			}
			locked.OrderID = &order.ID
		}
		locked.RawResponse = models.JSON(lookup.Raw)
		locked.UpdatedAt = now
		if err := repo.Update(locked); err != nil {
			return err
		}
		record = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settled != nil {
		if order, err := s.orderService.GetByID(settled.OrderID); err == nil {
			settled.Order = order
		}
		return settled, nil
	}

	// Approval runs after the placement commit: OrderID is already on disk,
	// so a failure here is retried without placing a second order.
	order, err := s.orderService.Approve(*record.OrderID)
	if err != nil {
		logger.Warnw("khalti_order_approval_failed",
			"pidx", record.Pidx,
			"order_id", *record.OrderID,
			"error", err,
		)
		return nil, ErrKhaltiOrderApproval
	}

	now := time.Now()
	err = s.khaltiRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.khaltiRepo.WithTx(tx)
		locked, err := repo.GetByPidxForUpdate(pidx)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrKhaltiRecordNotFound
		}
		if locked.Status != constants.KhaltiStatusCompleted {
			locked.Status = constants.KhaltiStatusCompleted
			locked.CompletedAt = &now
			locked.UpdatedAt = now
			if err := repo.Update(locked); err != nil {
				return err
			}
			if err := s.cartRepo.WithTx(tx).ClearByDistributor(locked.DistributorID); err != nil {
				return err
			}
		}
		record = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("khalti_verify_success",
		"pidx", record.Pidx,
		"order_id", *record.OrderID,
		"distributor_id", record.DistributorID,
	)
	result := buildKhaltiVerifyResult(record)
	result.Order = order
	return result, nil
}

// ReconcileStale re-verifies initiated sessions older than the configured
// sweep age. Incomplete sessions are left alone for the next pass.
func (s *KhaltiService) ReconcileStale(ctx context.Context, limit int) (int, error) {
	minutes := s.cfg.Khalti.ReconcileMinutes
	if minutes <= 0 {
		minutes = 30
	}
	olderThan := time.Now().Add(-time.Duration(minutes) * time.Minute)
	records, err := s.khaltiRepo.ListStaleInitiated(olderThan, limit)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, record := range records {
		if _, err := s.Verify(ctx, 0, record.Pidx); err != nil {
			if errors.Is(err, ErrKhaltiPaymentIncomplete) {
				continue
			}
			logger.Warnw("khalti_reconcile_failed",
				"pidx", record.Pidx,
				"error", err,
			)
			continue
		}
		settled++
	}
	if settled > 0 {
		logger.Infow("khalti_reconcile_swept", "checked", len(records), "settled", settled)
	}
	return settled, nil
}

func (s *KhaltiService) gatewayConfig() *khalti.Config {
	return &khalti.Config{
		BaseURL:        s.cfg.Khalti.BaseURL,
		SecretKey:      s.cfg.Khalti.SecretKey,
		WebsiteURL:     s.cfg.Khalti.WebsiteURL,
		TimeoutSeconds: s.cfg.Khalti.TimeoutSeconds,
	}
}

func buildKhaltiVerifyResult(record *models.KhaltiPayment) *KhaltiVerifyResult {
	result := &KhaltiVerifyResult{
		Status: record.Status,
		Amount: record.Amount,
		PaidOn: record.CompletedAt,
	}
	if record.OrderID != nil {
		result.OrderID = *record.OrderID
	}
	return result
}

func customerName(distributor *models.Distributor) string {
	if name := strings.TrimSpace(distributor.FullName); name != "" {
		return name
	}
	return distributor.Email
}
