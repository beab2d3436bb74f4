package domain

import (
	"encoding/json"
	"fmt"
)

// EventType websocket event discriminator
type EventType string

const (
	// EventChatMessage inbound send / outbound fan-out of a chat message
	EventChatMessage EventType = "chat_message"
	// EventAcknowledge inbound, acknowledge every pending message
	EventAcknowledge EventType = "acknowledge_message"
	// EventMessageRead outbound, message read by every recipient
	EventMessageRead EventType = "message_read"
)

// ReadByAllInfo text carried by message_read
const ReadByAllInfo = "Your message has been read by all recipients."

// InboundEvent event received from a client
type InboundEvent struct {
	Type    EventType `json:"type"`
	Message *string   `json:"message,omitempty"`
}

// ParseInboundEvent decode a client frame, unknown types are returned as is
func ParseInboundEvent(raw []byte) (InboundEvent, error) {
	var ev InboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return InboundEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Type == "" {
		return InboundEvent{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return ev, nil
}

// ChatMessageEvent outbound chat_message
type ChatMessageEvent struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	MessageID int64     `json:"message_id"`
}

// NewChatMessageEvent build chat_message from a persisted message
func NewChatMessageEvent(m *Message) ChatMessageEvent {
	return ChatMessageEvent{Type: EventChatMessage, Message: m.Content, MessageID: m.ID}
}

// MessageReadEvent outbound message_read
type MessageReadEvent struct {
	Type      EventType `json:"type"`
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	Info      string    `json:"info"`
}

// NewMessageReadEvent build message_read for the read-by-all transition
func NewMessageReadEvent(messageID, senderID int64) MessageReadEvent {
	return MessageReadEvent{Type: EventMessageRead, MessageID: messageID, SenderID: senderID, Info: ReadByAllInfo}
}
