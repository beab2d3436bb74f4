package app

import (
	"context"

	"chat_gateway_service/internal/chat/domain"
)

// EventHandlers one handler per recognized inbound event
type EventHandlers interface {
	OnChatMessage(ctx context.Context, content string) error
	OnAcknowledge(ctx context.Context) error
}

// Dispatch route ev to its handler. Unknown types are ignored, invalid chat content is ErrMalformedEvent.
func Dispatch(ctx context.Context, h EventHandlers, ev domain.InboundEvent) error {
	switch ev.Type {
	case domain.EventChatMessage:
		if ev.Message == nil || !domain.ValidContent(*ev.Message) {
			return domain.ErrMalformedEvent
		}
		return h.OnChatMessage(ctx, *ev.Message)
	case domain.EventAcknowledge:
		return h.OnAcknowledge(ctx)
	default:
		return nil
	}
}
