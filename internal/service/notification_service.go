package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/loan-portal/internal/config"
	"github.com/spec-kit/loan-portal/internal/events"
)

// NotificationService turns domain events into audit logs and branch notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLoanEvaluated, n.handleLoanEvaluated)
	n.dispatcher.Subscribe(events.EventLoanPreApproved, n.handleLoanPreApproved)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleSessionEvent)
	n.dispatcher.Subscribe(events.EventUserLoggedOut, n.handleSessionEvent)
}

func (n *NotificationService) handleLoanEvaluated(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.LoanEvaluatedPayload)
	n.logger.Info("LoanEvaluated",
		zap.String("event_id", event.ID),
		zap.String("customer_id", payload.CustomerID),
		zap.String("outcome", string(payload.Outcome)),
		zap.String("subject", event.Actor.Subject))
	return nil
}

func (n *NotificationService) handleLoanPreApproved(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.LoanEvaluatedPayload)
	n.logger.Info("LoanPreApproved",
		zap.String("event_id", event.ID),
		zap.String("customer_id", payload.CustomerID),
		zap.Float64("loan_amount", payload.LoanAmount),
		zap.Int("installments", payload.Installments))
	n.sendBranchEmailStub(ctx, event, payload)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionEvent(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SessionPayload)
	n.logger.Info(string(event.Type),
		zap.String("subject", event.Actor.Subject),
		zap.String("session_id", event.Actor.SessionID),
		zap.String("display_name", payload.DisplayName))
	return nil
}

func (n *NotificationService) sendBranchEmailStub(_ context.Context, event events.Event, payload events.LoanEvaluatedPayload) {
	if strings.TrimSpace(n.cfg.BranchEmail) == "" {
		return
	}
	n.logger.Debug("sendBranchEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", n.cfg.BranchEmail),
		zap.String("customer", payload.CustomerName),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
