package hub

import (
	"context"
	"errors"
	"sync"
)

// ErrConnectionClosed frame offered after Close
var ErrConnectionClosed = errors.New("connection closed")

// Connection one live websocket session subscribed to a channel
type Connection struct {
	ID        string
	UserID    int64
	ChannelID int64

	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	closed bool
}

// NewConnection create Connection with a bounded outbound buffer
func NewConnection(id string, userID, channelID int64, buffer int) *Connection {
	if buffer <= 0 {
		buffer = 1
	}
	return &Connection{
		ID:        id,
		UserID:    userID,
		ChannelID: channelID,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
	}
}

// Outbound frames waiting to be written, closed once the connection is dropped
func (c *Connection) Outbound() <-chan []byte {
	return c.send
}

// trySend never blocks, false when closed or the buffer is full
func (c *Connection) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Send wait for room in the buffer until ctx is done or the connection closes
func (c *Connection) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stop accepting frames, safe to call more than once
func (c *Connection) Close() {
	c.once.Do(func() {
		// 先喚醒等待中的 Send 再拿鎖
		close(c.done)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		close(c.send)
	})
}

// Closed report whether Close was called
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
