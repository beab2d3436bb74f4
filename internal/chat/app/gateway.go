package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/hub"
	"chat_gateway_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway one per client connection, drives Unauthenticated -> Authorized -> Subscribed -> Closed
type Gateway struct {
	svc *ChatService
	id  string
	log *logger.LogInfo

	mu        sync.Mutex
	state     domain.ConnState
	userID    int64
	channelID int64
	conn      *hub.Connection

	closeOnce sync.Once
}

// NewGateway create Gateway in StateUnauthenticated
func (s *ChatService) NewGateway() *Gateway {
	id := uuid.NewString()
	return &Gateway{
		svc: s,
		id:  id,
		log: logger.Log.With(zap.String("conn_id", id)),
	}
}

// ID connection id used in logs
func (g *Gateway) ID() string {
	return g.id
}

// State current lifecycle state
func (g *Gateway) State() domain.ConnState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Outbound frames for the socket writer, nil before Connect succeeds
func (g *Gateway) Outbound() <-chan []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	return g.conn.Outbound()
}

// Connect authenticate, authorize and subscribe. Pending messages are handled by Replay.
// Returns ErrUnauthenticated, ErrNotFound or ErrForbidden without touching the registry.
func (g *Gateway) Connect(ctx context.Context, channelParam, credential string) error {
	if g.State() != domain.StateUnauthenticated {
		return domain.ErrInvalidState
	}

	channelID, err := strconv.ParseInt(channelParam, 10, 64)
	if err != nil || channelID <= 0 {
		return domain.ErrNotFound
	}
	if credential == "" {
		return domain.ErrUnauthenticated
	}

	userID, err := g.authorize(ctx, channelID, credential)
	if err != nil {
		g.log.Info("connect rejected", zap.String("channel", channelParam), zap.Error(err))
		return err
	}

	g.mu.Lock()
	if g.state == domain.StateClosed {
		g.mu.Unlock()
		return domain.ErrInvalidState
	}
	g.state = domain.StateAuthorized
	g.userID, g.channelID = userID, channelID
	g.log = g.log.With(zap.Int64("user_id", userID), zap.Int64("channel_id", channelID))

	g.conn = hub.NewConnection(g.id, userID, channelID, g.svc.sendBuffer)
	g.svc.hub.Register(g.conn)
	g.state = domain.StateSubscribed
	g.mu.Unlock()

	g.log.Info("websocket subscribed")
	return nil
}

// Replay acknowledge everything left unread while the user was away.
// Call it once something is draining Outbound: the receipts it produces for this
// connection wait for buffer room rather than overflow it.
func (g *Gateway) Replay(ctx context.Context) (int, error) {
	if g.State() != domain.StateSubscribed {
		return 0, domain.ErrInvalidState
	}
	fired, err := g.svc.acknowledgeAll(ctx, g.channelID, g.userID, g.conn)
	if err != nil {
		g.log.Warn("replay pending messages failed", zap.Error(err))
	}
	return fired, err
}

func (g *Gateway) authorize(ctx context.Context, channelID int64, credential string) (int64, error) {
	ctx, cancel := g.svc.opContext(ctx)
	defer cancel()

	userID, err := g.svc.creds.Resolve(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if err := g.svc.EnsureMember(ctx, channelID, userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// Disconnect unregister and close, safe to call repeatedly or before Connect
func (g *Gateway) Disconnect() {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.conn != nil {
			g.svc.hub.Unregister(g.conn)
			g.conn.Close()
		}
		g.state = domain.StateClosed
		g.log.Info("websocket closed")
	})
}

// Receive decode one client frame and dispatch it.
// A malformed frame returns ErrMalformedEvent and leaves the connection open.
func (g *Gateway) Receive(ctx context.Context, raw []byte) error {
	if g.State() != domain.StateSubscribed {
		return domain.ErrInvalidState
	}

	ev, err := domain.ParseInboundEvent(raw)
	if err != nil {
		g.log.Debug("drop malformed event", zap.Error(err))
		return err
	}
	if err := Dispatch(ctx, g, ev); err != nil {
		g.log.Warn("event failed", zap.String("type", string(ev.Type)), zap.Error(err))
		return err
	}
	return nil
}

// OnChatMessage EventHandlers
func (g *Gateway) OnChatMessage(ctx context.Context, content string) error {
	_, err := g.svc.SendMessage(ctx, g.channelID, g.userID, content)
	return err
}

// OnAcknowledge EventHandlers
func (g *Gateway) OnAcknowledge(ctx context.Context) error {
	_, err := g.svc.acknowledgeAll(ctx, g.channelID, g.userID, g.conn)
	return err
}
