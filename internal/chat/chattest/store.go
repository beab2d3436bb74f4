// Package chattest provides in-memory collaborators for exercising the chat core without databases.
package chattest

import (
	"context"
	"sort"
	"sync"
	"time"

	"chat_gateway_service/internal/chat/domain"
)

// Store MembershipStore and MessageStore kept in memory
type Store struct {
	mu       sync.Mutex
	channels map[int64][]int64
	messages map[int64]*domain.Message
	nextID   int64
}

// NewStore create empty Store
func NewStore() *Store {
	return &Store{
		channels: make(map[int64][]int64),
		messages: make(map[int64]*domain.Message),
	}
}

// SetMembers create or replace a channel's member set
func (s *Store) SetMembers(channelID int64, members ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[channelID] = append([]int64{}, members...)
}

// Message stored copy, nil when absent
func (s *Store) Message(id int64) *domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

func (s *Store) ChannelExists(_ context.Context, channelID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[channelID]
	return ok, nil
}

func (s *Store) IsMember(_ context.Context, userID, channelID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.channels[channelID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListMembers(_ context.Context, channelID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64{}, s.channels[channelID]...), nil
}

func (s *Store) CreateMessage(_ context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m := &domain.Message{ID: s.nextID, ChannelID: channelID, SenderID: senderID, Content: content, CreatedAt: time.Now()}
	s.messages[m.ID] = m
	cp := *m
	return &cp, nil
}

func (s *Store) MarkMessageRead(_ context.Context, messageID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok || m.IsRead {
		return false, nil
	}
	m.IsRead = true
	return true, nil
}

func (s *Store) GetMessage(_ context.Context, messageID int64) (*domain.Message, error) {
	if m := s.Message(messageID); m != nil {
		return m, nil
	}
	return nil, domain.ErrNotFound
}

func (s *Store) list(match func(*domain.Message) bool) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Message{}
	for _, m := range s.messages {
		if match(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListBySender(_ context.Context, senderID int64) ([]domain.Message, error) {
	return s.list(func(m *domain.Message) bool { return m.SenderID == senderID }), nil
}

func (s *Store) ListByChannel(_ context.Context, channelID int64) ([]domain.Message, error) {
	return s.list(func(m *domain.Message) bool { return m.ChannelID == channelID }), nil
}

func (s *Store) UpdateContent(_ context.Context, messageID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return domain.ErrNotFound
	}
	m.Content = content
	return nil
}

func (s *Store) Delete(_ context.Context, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.messages, messageID)
	return nil
}

func (s *Store) DeleteByChannel(_ context.Context, channelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.messages {
		if m.ChannelID == channelID {
			delete(s.messages, id)
		}
	}
	return nil
}
