package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/mail"
)

// NotificationService turns account lifecycle events into outbound email.
// Code values travel only in the event payload and the mail body; they are
// never logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventVerificationCodeIssued, n.handleVerificationCodeIssued)
	n.dispatcher.Subscribe(events.EventPasswordResetCodeIssued, n.handlePasswordResetCodeIssued)
	n.dispatcher.Subscribe(events.EventEmailVerified, n.handleEmailVerified)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.Int64("uid", event.SubjectID))
	return nil
}

func (n *NotificationService) handleVerificationCodeIssued(ctx context.Context, event events.Event) error {
	code, ok := event.Payload["code"].(string)
	if !ok {
		n.logger.Warn("verification event without code", zap.Int64("uid", event.SubjectID))
		return nil
	}
	subject, body := mail.VerificationEmail(code)
	return n.send(ctx, event, subject, body)
}

func (n *NotificationService) handlePasswordResetCodeIssued(ctx context.Context, event events.Event) error {
	code, ok := event.Payload["code"].(string)
	if !ok {
		n.logger.Warn("reset event without code", zap.Int64("uid", event.SubjectID))
		return nil
	}
	subject, body := mail.PasswordResetEmail(code)
	return n.send(ctx, event, subject, body)
}

func (n *NotificationService) handleEmailVerified(_ context.Context, event events.Event) error {
	n.logger.Info("EmailVerified", zap.Int64("uid", event.SubjectID))
	return nil
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	subject, body := mail.PasswordChangedEmail()
	return n.send(ctx, event, subject, body)
}

func (n *NotificationService) send(ctx context.Context, event events.Event, subject, body string) error {
	if err := n.mailer.Send(ctx, event.Email, subject, body); err != nil {
		n.logger.Error("email delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("uid", event.SubjectID),
			zap.Error(err))
		return err
	}
	return nil
}
