package app

import (
	"context"

	"chat_gateway_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMembershipStore Mock MembershipStore
type MockMembershipStore struct {
	mock.Mock
}

// ChannelExists mock channel exists
func (m *MockMembershipStore) ChannelExists(ctx context.Context, channelID int64) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

// IsMember mock is member
func (m *MockMembershipStore) IsMember(ctx context.Context, userID, channelID int64) (bool, error) {
	args := m.Called(ctx, userID, channelID)
	return args.Bool(0), args.Error(1)
}

// ListMembers mock list members
func (m *MockMembershipStore) ListMembers(ctx context.Context, channelID int64) ([]int64, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) != nil {
		return args.Get(0).([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageStore Mock MessageStore
type MockMessageStore struct {
	mock.Mock
}

// CreateMessage mock create message
func (m *MockMessageStore) CreateMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	args := m.Called(ctx, channelID, senderID, content)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkMessageRead mock mark read
func (m *MockMessageStore) MarkMessageRead(ctx context.Context, messageID int64) (bool, error) {
	args := m.Called(ctx, messageID)
	return args.Bool(0), args.Error(1)
}

// GetMessage mock get message
func (m *MockMessageStore) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListBySender mock list by sender
func (m *MockMessageStore) ListBySender(ctx context.Context, senderID int64) ([]domain.Message, error) {
	args := m.Called(ctx, senderID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

// ListByChannel mock list by channel
func (m *MockMessageStore) ListByChannel(ctx context.Context, channelID int64) ([]domain.Message, error) {
	args := m.Called(ctx, channelID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

// UpdateContent mock update content
func (m *MockMessageStore) UpdateContent(ctx context.Context, messageID int64, content string) error {
	return m.Called(ctx, messageID, content).Error(0)
}

// Delete mock delete
func (m *MockMessageStore) Delete(ctx context.Context, messageID int64) error {
	return m.Called(ctx, messageID).Error(0)
}

// DeleteByChannel mock delete by channel
func (m *MockMessageStore) DeleteByChannel(ctx context.Context, channelID int64) error {
	return m.Called(ctx, channelID).Error(0)
}

// MockUnreadIndex Mock UnreadIndex
type MockUnreadIndex struct {
	mock.Mock
}

// MarkUnread mock mark unread
func (m *MockUnreadIndex) MarkUnread(ctx context.Context, channelID, messageID int64, members []int64) error {
	return m.Called(ctx, channelID, messageID, members).Error(0)
}

// Pending mock pending
func (m *MockUnreadIndex) Pending(ctx context.Context, channelID, userID int64) ([]int64, error) {
	args := m.Called(ctx, channelID, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// Acknowledge mock acknowledge
func (m *MockUnreadIndex) Acknowledge(ctx context.Context, channelID, userID, messageID int64, others []int64) (bool, error) {
	args := m.Called(ctx, channelID, userID, messageID, others)
	return args.Bool(0), args.Error(1)
}

// MockCredentialResolver Mock CredentialResolver
type MockCredentialResolver struct {
	mock.Mock
}

// Resolve mock resolve
func (m *MockCredentialResolver) Resolve(ctx context.Context, credential string) (int64, error) {
	args := m.Called(ctx, credential)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

// NotifyAsync mock notify
func (m *MockNotifier) NotifyAsync(recipientID int64, content string, senderID int64) {
	m.Called(recipientID, content, senderID)
}
