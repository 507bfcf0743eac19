package queue

import (
	"encoding/json"

	"github.com/carenation/backend/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskKhaltiReconcile re-verifies a stale initiated gateway session
	TaskKhaltiReconcile = constants.TaskKhaltiReconcile
	// TaskWithdrawalNotify records a notification for a processed withdrawal
	TaskWithdrawalNotify = constants.TaskWithdrawalNotify
)

// KhaltiReconcilePayload reconciliation task payload
type KhaltiReconcilePayload struct {
	Pidx string `json:"pidx"`
}

// WithdrawalNotifyPayload withdrawal notification task payload
type WithdrawalNotifyPayload struct {
	RequestID uint   `json:"request_id"`
	Event     string `json:"event"`
}

// NewKhaltiReconcileTask creates a reconciliation task
func NewKhaltiReconcileTask(payload KhaltiReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskKhaltiReconcile, body), nil
}

// NewWithdrawalNotifyTask creates a withdrawal notification task
func NewWithdrawalNotifyTask(payload WithdrawalNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalNotify, body), nil
}
