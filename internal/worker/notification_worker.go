package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/service"
)

// StartNotificationWorker subscribes the notifier to loan and session events.
func StartNotificationWorker(notifier *service.NotificationService, logger *zap.Logger) {
	if notifier == nil {
		return
	}
	notifier.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker subscribed")
	}
}
