package app

import (
	"context"
	"errors"
	"testing"

	chatdomain "chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/notification/domain"
	"chat_gateway_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindByID(ctx context.Context, id int64) (*chatdomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*chatdomain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Push(ctx context.Context, userID int64, text string) error {
	return m.Called(ctx, userID, text).Error(0)
}

func TestWorkerHandle(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	sender := &chatdomain.User{ID: 1, Username: "alice"}
	job := domain.Job{RecipientID: 2, SenderID: 1, Content: "hi"}
	body := "A message 'hi' sent by alice"

	tests := []struct {
		name      string
		recipient *chatdomain.User
		emailErr  error
		wantEmail bool
		wantPush  bool
		wantErr   bool
	}{
		{name: "no preference", recipient: &chatdomain.User{ID: 2}},
		{name: "email", recipient: &chatdomain.User{ID: 2, Email: "bob@x", IsEmailNotif: true}, wantEmail: true},
		{name: "push", recipient: &chatdomain.User{ID: 2, IsPushNotif: true}, wantPush: true},
		{name: "both", recipient: &chatdomain.User{ID: 2, Email: "bob@x", IsEmailNotif: true, IsPushNotif: true}, wantEmail: true, wantPush: true},
		{
			name:      "email failure still pushes",
			recipient: &chatdomain.User{ID: 2, Email: "bob@x", IsEmailNotif: true, IsPushNotif: true},
			emailErr:  errors.New("relay down"),
			wantEmail: true, wantPush: true, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserLookup)
			email := new(MockEmailSender)
			push := new(MockPushSender)
			users.On("FindByID", ctx, int64(2)).Return(tt.recipient, nil)
			users.On("FindByID", ctx, int64(1)).Return(sender, nil).Maybe()
			if tt.wantEmail {
				email.On("SendEmail", ctx, "bob@x", domain.EmailSubject, body).Return(tt.emailErr)
			}
			if tt.wantPush {
				push.On("Push", ctx, int64(2), body).Return(nil)
			}

			err := NewWorker(users, email, push).Handle(ctx, job)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			email.AssertExpectations(t)
			push.AssertExpectations(t)
		})
	}
}

func TestWorkerUnknownRecipient(t *testing.T) {
	logger.SetNewNop()
	users := new(MockUserLookup)
	users.On("FindByID", mock.Anything, int64(2)).Return(nil, chatdomain.ErrNotFound)

	err := NewWorker(users, new(MockEmailSender), new(MockPushSender)).Handle(context.Background(), domain.Job{RecipientID: 2, SenderID: 1})
	assert.ErrorIs(t, err, chatdomain.ErrNotFound)
}
