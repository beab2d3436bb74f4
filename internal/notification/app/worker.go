package app

import (
	"context"
	"errors"
	"fmt"

	chatdomain "chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/internal/notification/repository"
	errprocess "chat_gateway_service/pkg/err"
	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// UserLookup load notification preferences
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*chatdomain.User, error)
}

// Worker deliver jobs according to the recipient's preferences
type Worker struct {
	users UserLookup
	email repository.EmailSender
	push  repository.PushSender
}

// NewWorker create Worker
func NewWorker(users UserLookup, email repository.EmailSender, push repository.PushSender) *Worker {
	return &Worker{users: users, email: email, push: push}
}

// Handle email when is_email_notif, push when is_push_notif
func (w *Worker) Handle(ctx context.Context, job domain.Job) error {
	recipient, err := w.users.FindByID(ctx, job.RecipientID)
	if err != nil {
		return errprocess.Wrap(fmt.Sprintf("load recipient %d", job.RecipientID), err)
	}
	if !recipient.IsEmailNotif && !recipient.IsPushNotif {
		return nil
	}
	sender, err := w.users.FindByID(ctx, job.SenderID)
	if err != nil {
		return fmt.Errorf("load sender %d: %w", job.SenderID, err)
	}

	body := domain.EmailBody(job.Content, sender.Username)
	var errs []error
	if recipient.IsEmailNotif {
		if err := w.email.SendEmail(ctx, recipient.Email, domain.EmailSubject, body); err != nil {
			errs = append(errs, err)
		}
	}
	if recipient.IsPushNotif {
		if err := w.push.Push(ctx, recipient.ID, body); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		logger.Log.Debug("notification delivered", zap.Int64("recipient_id", recipient.ID))
	}
	return errors.Join(errs...)
}

// Run consume until ctx is done
func (w *Worker) Run(ctx context.Context, consumer repository.Consumer) error {
	logger.Log.Info("notify worker started")
	return consumer.Consume(ctx, w.Handle)
}
