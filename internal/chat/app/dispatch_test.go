package app

import (
	"context"
	"errors"
	"testing"

	"chat_gateway_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockHandlers struct {
	mock.Mock
}

func (m *mockHandlers) OnChatMessage(ctx context.Context, content string) error {
	return m.Called(ctx, content).Error(0)
}

func (m *mockHandlers) OnAcknowledge(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func strPtr(s string) *string { return &s }

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	long := make([]rune, domain.MaxContentLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name    string
		ev      domain.InboundEvent
		setup   func(h *mockHandlers)
		wantErr error
	}{
		{
			name:  "chat message",
			ev:    domain.InboundEvent{Type: domain.EventChatMessage, Message: strPtr("hi")},
			setup: func(h *mockHandlers) { h.On("OnChatMessage", ctx, "hi").Return(nil) },
		},
		{
			name:  "acknowledge",
			ev:    domain.InboundEvent{Type: domain.EventAcknowledge},
			setup: func(h *mockHandlers) { h.On("OnAcknowledge", ctx).Return(nil) },
		},
		{
			name:    "handler error is returned",
			ev:      domain.InboundEvent{Type: domain.EventAcknowledge},
			setup:   func(h *mockHandlers) { h.On("OnAcknowledge", ctx).Return(errors.New("redis down")) },
			wantErr: errors.New("redis down"),
		},
		{
			name:    "chat message without content",
			ev:      domain.InboundEvent{Type: domain.EventChatMessage},
			wantErr: domain.ErrMalformedEvent,
		},
		{
			name:    "chat message empty",
			ev:      domain.InboundEvent{Type: domain.EventChatMessage, Message: strPtr("")},
			wantErr: domain.ErrMalformedEvent,
		},
		{
			name:    "chat message too long",
			ev:      domain.InboundEvent{Type: domain.EventChatMessage, Message: strPtr(string(long))},
			wantErr: domain.ErrMalformedEvent,
		},
		{
			name: "unknown type ignored",
			ev:   domain.InboundEvent{Type: "typing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := new(mockHandlers)
			if tt.setup != nil {
				tt.setup(h)
			}
			err := Dispatch(ctx, h, tt.ev)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
			h.AssertExpectations(t)
		})
	}
}
