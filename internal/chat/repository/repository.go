package repository

import (
	"context"

	"chat_gateway_service/internal/chat/domain"
)

// MembershipStore definition who belongs to which channel, read only for the gateway
type MembershipStore interface {
	ChannelExists(ctx context.Context, channelID int64) (bool, error)
	IsMember(ctx context.Context, userID, channelID int64) (bool, error)
	ListMembers(ctx context.Context, channelID int64) ([]int64, error)
}

// MessageStore definition durable message log
type MessageStore interface {
	// CreateMessage assign id and timestamp, read flag starts false
	CreateMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error)
	// MarkMessageRead flip the read flag, true only for the call that flipped it
	MarkMessageRead(ctx context.Context, messageID int64) (bool, error)
	GetMessage(ctx context.Context, messageID int64) (*domain.Message, error)

	ListBySender(ctx context.Context, senderID int64) ([]domain.Message, error)
	ListByChannel(ctx context.Context, channelID int64) ([]domain.Message, error)
	UpdateContent(ctx context.Context, messageID int64, content string) error
	Delete(ctx context.Context, messageID int64) error
	DeleteByChannel(ctx context.Context, channelID int64) error
}

// UnreadIndex definition per (channel, member) set of pending message ids
type UnreadIndex interface {
	// MarkUnread add messageID to the pending set of every member
	MarkUnread(ctx context.Context, channelID, messageID int64, members []int64) error
	// Pending message ids still unread by userID, ascending
	Pending(ctx context.Context, channelID, userID int64) ([]int64, error)
	// Acknowledge atomically remove userID's marker and report whether it was the
	// last one among userID and others. A missing marker reports false.
	Acknowledge(ctx context.Context, channelID, userID, messageID int64, others []int64) (bool, error)
}

// CredentialResolver map an opaque credential to a user id, domain.ErrUnauthenticated when unknown
type CredentialResolver interface {
	Resolve(ctx context.Context, credential string) (int64, error)
}

// TokenIssuer hand out a credential for a logged in user
type TokenIssuer interface {
	CredentialResolver
	Issue(ctx context.Context, userID int64) (string, error)
}
