package chattest

import (
	"context"
	"sync"

	"chat_gateway_service/internal/chat/domain"
)

// Tokens static credential table
type Tokens map[string]int64

// Resolve lookup credential, domain.ErrUnauthenticated when unknown
func (t Tokens) Resolve(_ context.Context, credential string) (int64, error) {
	if id, ok := t[credential]; ok {
		return id, nil
	}
	return 0, domain.ErrUnauthenticated
}

// Notification one recorded NotifyAsync call
type Notification struct {
	RecipientID int64
	Content     string
	SenderID    int64
}

// Notifier record every NotifyAsync call
type Notifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NotifyAsync record the call
func (n *Notifier) NotifyAsync(recipientID int64, content string, senderID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{RecipientID: recipientID, Content: content, SenderID: senderID})
}

// Sent copy of recorded calls
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification{}, n.sent...)
}
