package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// Hub connection registry and broadcaster for every channel on this process
type Hub struct {
	mu       sync.RWMutex
	channels map[int64]map[*Connection]struct{}
}

// New create empty Hub
func New() *Hub {
	return &Hub{channels: make(map[int64]map[*Connection]struct{})}
}

// Register subscribe conn to conn.ChannelID
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[conn.ChannelID]
	if !ok {
		subs = make(map[*Connection]struct{})
		h.channels[conn.ChannelID] = subs
	}
	subs[conn] = struct{}{}
}

// Unregister remove conn, no-op when absent
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.channels[conn.ChannelID]
	if !ok {
		return
	}
	delete(subs, conn)
	if len(subs) == 0 {
		delete(h.channels, conn.ChannelID)
	}
}

// IsRegistered report whether conn is subscribed
func (h *Hub) IsRegistered(conn *Connection) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[conn.ChannelID][conn]
	return ok
}

// Count number of connections subscribed to channelID
func (h *Hub) Count(channelID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

// Broadcast encode event once and deliver it to every subscriber of channelID.
// A subscriber that can not take the frame is unregistered and closed,
// the rest still receive it. Returns the number of deliveries.
func (h *Hub) Broadcast(channelID int64, event any) (int, error) {
	return h.BroadcastWaiting(context.Background(), channelID, event, nil)
}

// BroadcastWaiting same as Broadcast, except that self (when subscribed) is given
// until ctx is done to make room instead of being dropped on a full buffer.
// Used when self is the connection producing a burst of frames for itself.
func (h *Hub) BroadcastWaiting(ctx context.Context, channelID int64, event any, self *Connection) (int, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("encode broadcast: %w", err)
	}

	h.mu.RLock()
	snapshot := make([]*Connection, 0, len(h.channels[channelID]))
	waitSelf := false
	for conn := range h.channels[channelID] {
		if conn == self {
			waitSelf = true
			continue
		}
		snapshot = append(snapshot, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	var stale []*Connection
	for _, conn := range snapshot {
		if conn.trySend(payload) {
			delivered++
			continue
		}
		stale = append(stale, conn)
	}
	if waitSelf {
		if err := self.Send(ctx, payload); err != nil {
			stale = append(stale, self)
		} else {
			delivered++
		}
	}

	for _, conn := range stale {
		logger.Log.Warn("drop stale connection",
			zap.String("conn_id", conn.ID),
			zap.Int64("user_id", conn.UserID),
			zap.Int64("channel_id", channelID))
		h.Unregister(conn)
		conn.Close()
	}
	return delivered, nil
}
