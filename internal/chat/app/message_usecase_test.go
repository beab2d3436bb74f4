package app

import (
	"context"
	"errors"
	"testing"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/hub"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mocks struct {
	hub      *hub.Hub
	members  *MockMembershipStore
	messages *MockMessageStore
	unread   *MockUnreadIndex
	notifier *MockNotifier
	svc      *ChatService
	conn     *hub.Connection
}

func newMocks() *mocks {
	logger.SetNewNop()
	m := &mocks{
		hub:      hub.New(),
		members:  new(MockMembershipStore),
		messages: new(MockMessageStore),
		unread:   new(MockUnreadIndex),
		notifier: new(MockNotifier),
	}
	m.svc = NewChatService(m.hub, m.members, m.messages, m.unread, new(MockCredentialResolver), m.notifier, config.WebsocketConfig{})
	m.conn = hub.NewConnection("watcher", userA, chanC, 16)
	m.hub.Register(m.conn)
	return m
}

func (m *mocks) assertAll(t *testing.T) {
	m.members.AssertExpectations(t)
	m.messages.AssertExpectations(t)
	m.unread.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestSendMessage(t *testing.T) {
	m := newMocks()
	msg := &domain.Message{ID: 7, ChannelID: chanC, SenderID: userA, Content: "hello"}

	m.messages.On("CreateMessage", mock.Anything, chanC, userA, "hello").Return(msg, nil)
	m.members.On("ListMembers", mock.Anything, chanC).Return([]int64{userA, userB, userD}, nil)
	m.unread.On("MarkUnread", mock.Anything, chanC, int64(7), []int64{userB, userD}).Return(nil)
	m.notifier.On("NotifyAsync", userB, "hello", userA).Return()
	m.notifier.On("NotifyAsync", userD, "hello", userA).Return()

	got, err := m.svc.SendMessage(context.Background(), chanC, userA, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Len(t, m.conn.Outbound(), 1)
	m.assertAll(t)
}

func TestSendMessagePersistFailureDropsEvent(t *testing.T) {
	m := newMocks()
	m.messages.On("CreateMessage", mock.Anything, chanC, userA, "hello").Return(nil, errors.New("db down"))

	_, err := m.svc.SendMessage(context.Background(), chanC, userA, "hello")
	assert.Error(t, err)
	assert.Len(t, m.conn.Outbound(), 0)
	m.members.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "NotifyAsync", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageUnreadFailureStillBroadcasts(t *testing.T) {
	m := newMocks()
	msg := &domain.Message{ID: 7, ChannelID: chanC, SenderID: userA, Content: "hello"}
	m.messages.On("CreateMessage", mock.Anything, chanC, userA, "hello").Return(msg, nil)
	m.members.On("ListMembers", mock.Anything, chanC).Return([]int64{userA, userB}, nil)
	m.unread.On("MarkUnread", mock.Anything, chanC, int64(7), []int64{userB}).Return(errors.New("redis down"))
	m.notifier.On("NotifyAsync", userB, "hello", userA).Return()

	got, err := m.svc.SendMessage(context.Background(), chanC, userA, "hello")
	assert.Error(t, err)
	require.NotNil(t, got)
	assert.Len(t, m.conn.Outbound(), 1)
	m.assertAll(t)
}

func TestSendMessageRejectsInvalidContent(t *testing.T) {
	m := newMocks()
	_, err := m.svc.SendMessage(context.Background(), chanC, userA, "")
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
	m.messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcknowledgeAllNothingPending(t *testing.T) {
	m := newMocks()
	m.unread.On("Pending", mock.Anything, chanC, userB).Return([]int64{}, nil)

	fired, err := m.svc.AcknowledgeAll(context.Background(), chanC, userB)
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	m.members.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
}

func TestAcknowledgeAllStopsAtFirstError(t *testing.T) {
	m := newMocks()
	others := []int64{userA, userD}
	m.unread.On("Pending", mock.Anything, chanC, userB).Return([]int64{1, 2}, nil)
	m.members.On("ListMembers", mock.Anything, chanC).Return([]int64{userA, userB, userD}, nil)
	m.unread.On("Acknowledge", mock.Anything, chanC, userB, int64(1), others).Return(false, errors.New("redis down"))

	fired, err := m.svc.AcknowledgeAll(context.Background(), chanC, userB)
	assert.Error(t, err)
	assert.Equal(t, 0, fired)
	m.unread.AssertNotCalled(t, "Acknowledge", mock.Anything, chanC, userB, int64(2), others)
}

func TestAcknowledgeAllSkipsAlreadyReadMessage(t *testing.T) {
	m := newMocks()
	others := []int64{userA}
	m.unread.On("Pending", mock.Anything, chanC, userB).Return([]int64{1, 2}, nil)
	m.members.On("ListMembers", mock.Anything, chanC).Return([]int64{userA, userB}, nil)
	m.unread.On("Acknowledge", mock.Anything, chanC, userB, int64(1), others).Return(true, nil)
	m.unread.On("Acknowledge", mock.Anything, chanC, userB, int64(2), others).Return(true, nil)
	m.messages.On("MarkMessageRead", mock.Anything, int64(1)).Return(false, nil)
	m.messages.On("MarkMessageRead", mock.Anything, int64(2)).Return(true, nil)
	m.messages.On("GetMessage", mock.Anything, int64(2)).Return(&domain.Message{ID: 2, SenderID: userA}, nil)

	fired, err := m.svc.AcknowledgeAll(context.Background(), chanC, userB)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Len(t, m.conn.Outbound(), 1)
	m.messages.AssertNotCalled(t, "GetMessage", mock.Anything, int64(1))
	m.assertAll(t)
}

func TestEnsureMember(t *testing.T) {
	m := newMocks()
	m.members.On("ChannelExists", mock.Anything, int64(1)).Return(false, nil)
	m.members.On("ChannelExists", mock.Anything, chanC).Return(true, nil)
	m.members.On("IsMember", mock.Anything, outsider, chanC).Return(false, nil)
	m.members.On("IsMember", mock.Anything, userA, chanC).Return(true, nil)

	ctx := context.Background()
	assert.ErrorIs(t, m.svc.EnsureMember(ctx, 1, userA), domain.ErrNotFound)
	assert.ErrorIs(t, m.svc.EnsureMember(ctx, chanC, outsider), domain.ErrForbidden)
	assert.NoError(t, m.svc.EnsureMember(ctx, chanC, userA))
}

func TestBroadcastEncodeFailureDoesNotPropagate(t *testing.T) {
	m := newMocks()
	assert.NotPanics(t, func() {
		m.svc.broadcast(context.Background(), chanC, make(chan int), nil)
	})
	assert.Len(t, m.conn.Outbound(), 0)
	assert.True(t, m.hub.IsRegistered(m.conn))
}
