package service

import (
	"fmt"
	"time"

	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/models"
	"github.com/carenation/backend/internal/repository"
)

// NotificationService member notification log. Entries are written from the
// background worker, never inline with the settling transaction.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	withdrawalRepo   repository.WithdrawalRepository
}

// NewNotificationService creates the notification service
func NewNotificationService(notificationRepo repository.NotificationRepository, withdrawalRepo repository.WithdrawalRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		withdrawalRepo:   withdrawalRepo,
	}
}

// ListByDistributor lists the newest notifications for one member
func (s *NotificationService) ListByDistributor(distributorID uint, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.notificationRepo.ListByDistributor(distributorID, limit)
}

// RecordWithdrawalEvent writes the notification for a settled or rejected
// withdrawal. Unknown events and missing requests are ignored: the settling
// transaction already committed, so there is nothing to retry against.
func (s *NotificationService) RecordWithdrawalEvent(requestID uint, event string) error {
	request, err := s.withdrawalRepo.GetByID(requestID)
	if err != nil {
		return err
	}
	if request == nil {
		logger.Warnw("withdrawal_notify_orphan", "request_id", requestID, "event", event)
		return nil
	}

	var message string
	switch event {
	case constants.NotificationEventWithdrawalPaid:
		message = fmt.Sprintf("Your withdrawal of %s has been paid.", request.Amount.String())
	case constants.NotificationEventWithdrawalRejected:
		message = fmt.Sprintf("Your withdrawal of %s was rejected.", request.Amount.String())
		if request.Remark != "" {
			message = fmt.Sprintf("%s Reason: %s", message, request.Remark)
		}
	default:
		logger.Warnw("withdrawal_notify_unknown_event", "request_id", requestID, "event", event)
		return nil
	}

	entry := &models.NotificationLog{
		DistributorID: request.DistributorID,
		Event:         event,
		BizType:       "withdrawal_request",
		BizID:         request.ID,
		Message:       message,
		CreatedAt:     time.Now(),
	}
	if err := s.notificationRepo.Create(entry); err != nil {
		return err
	}
	logger.Infow("notification_recorded",
		"distributor_id", request.DistributorID,
		"event", event,
		"biz_id", request.ID,
	)
	return nil
}
