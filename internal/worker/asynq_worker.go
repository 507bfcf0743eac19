package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/provider"
	"github.com/carenation/backend/internal/queue"
	"github.com/carenation/backend/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer background task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register wires the task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskKhaltiReconcile, c.handleKhaltiReconcile)
	mux.HandleFunc(queue.TaskWithdrawalNotify, c.handleWithdrawalNotify)
}

// handleKhaltiReconcile re-verifies one checkout session against the
// gateway. A session that is simply not paid yet is not an error; asynq
// must not retry it, the periodic sweep will see it again.
func (c *Consumer) handleKhaltiReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.KhaltiReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_khalti_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.Pidx) == "" {
		logger.Debugw("worker_khalti_reconcile_skip_empty_pidx")
		return nil
	}
	if c.KhaltiService == nil {
		logger.Warnw("worker_khalti_reconcile_skip_service_nil", "pidx", payload.Pidx)
		return nil
	}

	_, err := c.KhaltiService.Verify(ctx, 0, payload.Pidx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrKhaltiPaymentIncomplete):
		logger.Debugw("worker_khalti_reconcile_still_pending", "pidx", payload.Pidx)
		return nil
	case errors.Is(err, service.ErrKhaltiRecordNotFound):
		logger.Debugw("worker_khalti_reconcile_skip_record_not_found", "pidx", payload.Pidx)
		return nil
	case errors.Is(err, service.ErrKhaltiAmountMismatch):
		// needs a human, retrying will not change the gateway's answer
		logger.Errorw("worker_khalti_reconcile_amount_mismatch", "pidx", payload.Pidx)
		return nil
	default:
		logger.Warnw("worker_khalti_reconcile_failed", "pidx", payload.Pidx, "error", err)
		return err
	}
}

// handleWithdrawalNotify records the member-facing notification for a
// processed withdrawal
func (c *Consumer) handleWithdrawalNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.WithdrawalNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.RequestID == 0 {
		logger.Debugw("worker_withdrawal_notify_skip_invalid_payload")
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_withdrawal_notify_skip_service_nil", "request_id", payload.RequestID)
		return nil
	}
	if err := c.NotificationService.RecordWithdrawalEvent(payload.RequestID, payload.Event); err != nil {
		logger.Warnw("worker_withdrawal_notify_failed",
			"request_id", payload.RequestID,
			"event", payload.Event,
			"error", err,
		)
		return err
	}
	return nil
}
