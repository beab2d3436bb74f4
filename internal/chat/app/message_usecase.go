package app

import (
	"context"
	"fmt"
	"time"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/hub"
	"chat_gateway_service/internal/chat/repository"
	"chat_gateway_service/pkg"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// Notifier fire-and-forget delivery to offline channels, must never block
type Notifier interface {
	NotifyAsync(recipientID int64, content string, senderID int64)
}

// ChatService 負責聊天訊息與已讀回條, 所有連線共用
type ChatService struct {
	hub      *hub.Hub
	members  repository.MembershipStore
	messages repository.MessageStore
	unread   repository.UnreadIndex
	creds    repository.CredentialResolver
	notifier Notifier

	sendLocks *channelLocks

	opTimeout  time.Duration
	sendBuffer int
}

// NewChatService init ChatService
func NewChatService(
	h *hub.Hub,
	members repository.MembershipStore,
	messages repository.MessageStore,
	unread repository.UnreadIndex,
	creds repository.CredentialResolver,
	notifier Notifier,
	ws config.WebsocketConfig,
) *ChatService {
	ws = ws.WithDefaults()
	return &ChatService{
		hub:        h,
		members:    members,
		messages:   messages,
		unread:     unread,
		creds:      creds,
		notifier:   notifier,
		sendLocks:  newChannelLocks(),
		opTimeout:  ws.OpTimeout,
		sendBuffer: ws.SendBuffer,
	}
}

// opContext detach from the connection so a disconnect does not abort work already started
func (s *ChatService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
}

// SendMessage persist, mark unread for every other member, broadcast, notify.
// Only a persistence failure drops the message; later failures are logged and the
// broadcast still goes out. Sends in one channel are serialized from CreateMessage
// to the broadcast so subscribers see ids in increasing order.
func (s *ChatService) SendMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if !domain.ValidContent(content) {
		return nil, domain.ErrMalformedEvent
	}

	release, err := s.sendLocks.acquire(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer release()

	// 1. 寫入訊息
	msg, err := s.messages.CreateMessage(ctx, channelID, senderID, content)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	log := logger.Log.With(zap.Int64("channel_id", channelID), zap.Int64("message_id", msg.ID))

	// 2. 除了 sender 之外全部標記未讀, 要在廣播之前
	var recipients []int64
	var firstErr error
	members, err := s.members.ListMembers(ctx, channelID)
	if err != nil {
		log.Error("list members failed", zap.Error(err))
		firstErr = err
	} else {
		recipients = pkg.Without(members, senderID)
		if err := s.unread.MarkUnread(ctx, channelID, msg.ID, recipients); err != nil {
			log.Error("mark unread failed", zap.Error(err))
			firstErr = err
		}
	}

	// 3. 廣播給聊天室內所有連線, 包含 sender
	s.broadcast(ctx, channelID, domain.NewChatMessageEvent(msg), nil)
	release()

	// 4. 通知
	if s.notifier != nil {
		for _, r := range recipients {
			s.notifier.NotifyAsync(r, content, senderID)
		}
	}

	if firstErr != nil {
		return msg, fmt.Errorf("send message: %w", firstErr)
	}
	return msg, nil
}

// AcknowledgeAll clear every pending marker of userID in channelID in ascending id order
// and broadcast message_read for each message whose last marker this call removed.
// Stops at the first store error. Returns the number of read receipts sent.
func (s *ChatService) AcknowledgeAll(ctx context.Context, channelID, userID int64) (int, error) {
	return s.acknowledgeAll(ctx, channelID, userID, nil)
}

// acknowledgeAll self, when set, is the acknowledging connection: it waits for room
// in its own buffer instead of being dropped by a long run of receipts
func (s *ChatService) acknowledgeAll(ctx context.Context, channelID, userID int64, self *hub.Connection) (int, error) {
	pending, others, err := s.pending(ctx, channelID, userID)
	if err != nil {
		return 0, fmt.Errorf("acknowledge: %w", err)
	}

	fired := 0
	for _, messageID := range pending {
		ok, err := s.readByAll(ctx, channelID, userID, messageID, others, self)
		if err != nil {
			return fired, fmt.Errorf("acknowledge message %d: %w", messageID, err)
		}
		if ok {
			fired++
		}
	}
	return fired, nil
}

// pending ids of userID plus the other current members, nil ids when nothing is pending
func (s *ChatService) pending(ctx context.Context, channelID, userID int64) ([]int64, []int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	pending, err := s.unread.Pending(ctx, channelID, userID)
	if err != nil || len(pending) == 0 {
		return nil, nil, err
	}
	members, err := s.members.ListMembers(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	return pending, pkg.Without(members, userID), nil
}

// readByAll true when this call performed the read-by-all transition.
// Each message gets its own operation timeout.
func (s *ChatService) readByAll(ctx context.Context, channelID, userID, messageID int64, others []int64, self *hub.Connection) (bool, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	last, err := s.unread.Acknowledge(ctx, channelID, userID, messageID, others)
	if err != nil || !last {
		return false, err
	}

	// 已經是已讀代表別人做過轉換, 不重複廣播
	flipped, err := s.messages.MarkMessageRead(ctx, messageID)
	if err != nil || !flipped {
		return false, err
	}

	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return false, err
	}
	s.broadcast(ctx, channelID, domain.NewMessageReadEvent(messageID, msg.SenderID), self)
	logger.Log.Debug("message read by all",
		zap.Int64("channel_id", channelID),
		zap.Int64("message_id", messageID),
		zap.Int64("sender_id", msg.SenderID))
	return true, nil
}

// broadcast encode failures are logged here and never fail the operation that produced the event
func (s *ChatService) broadcast(ctx context.Context, channelID int64, event any, self *hub.Connection) {
	if _, err := s.hub.BroadcastWaiting(ctx, channelID, event, self); err != nil {
		logger.Log.Error("broadcast failed", zap.Int64("channel_id", channelID), zap.Error(err))
	}
}

// EnsureMember error unless userID belongs to channelID
func (s *ChatService) EnsureMember(ctx context.Context, channelID, userID int64) error {
	exists, err := s.members.ChannelExists(ctx, channelID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	member, err := s.members.IsMember(ctx, userID, channelID)
	if err != nil {
		return err
	}
	if !member {
		return domain.ErrForbidden
	}
	return nil
}
