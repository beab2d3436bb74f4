package router

import (
	"context"
	"time"

	"chat_gateway_service/internal/chat/app"
	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/logger"
	"chat_gateway_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler websocket transport for the chat Gateway
type ChatWebsocketHandler struct {
	chat *app.ChatService
	ws   config.WebsocketConfig
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(chat *app.ChatService, ws config.WebsocketConfig) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{chat: chat, ws: ws.WithDefaults()}
}

// HandleConnection 是 WebSocket 連線的進入點, 一條連線一個 goroutine
func (h *ChatWebsocketHandler) HandleConnection(c *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := h.chat.NewGateway()
	if err := gw.Connect(ctx, c.Params("channel_id"), c.Query(middlewares.QueryToken)); err != nil {
		// 不透露是哪一個檢查失敗
		gw.Disconnect()
		h.closeWith(c, domain.CloseForbidden)
		return
	}
	defer gw.Disconnect()

	pongWait := h.ws.PingPeriod * 10 / 9
	c.SetReadLimit(h.ws.MaxMessageSize)
	_ = c.SetReadDeadline(time.Now().Add(pongWait))

	//server發出ping之後client連線正常會回pong
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.writePump(c, gw, done)

	// writer 已啟動, 再補送離線期間的已讀回條
	_, _ = gw.Replay(ctx)

	for {
		mt, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Warn("websocket read error", zap.String("conn_id", gw.ID()), zap.Error(err))
			}
			break
		}
		if mt != websocket.TextMessage {
			continue
		}
		// 錯誤只影響這一個 event, 連線保持
		_ = gw.Receive(ctx, msg)
	}

	cancel()
	gw.Disconnect()
	<-done
}

// writePump 唯一的 writer, outbound 關閉時送出 close frame
func (h *ChatWebsocketHandler) writePump(c *websocket.Conn, gw *app.Gateway, done chan<- struct{}) {
	ticker := time.NewTicker(h.ws.PingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	out := gw.Outbound()
	for {
		select {
		case frame, ok := <-out:
			if !ok {
				h.closeWith(c, domain.CloseNormal)
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(h.ws.WriteWait))
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Log.Warn("websocket write error", zap.String("conn_id", gw.ID()), zap.Error(err))
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(h.ws.WriteWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}

func (h *ChatWebsocketHandler) closeWith(c *websocket.Conn, code int) {
	_ = c.SetWriteDeadline(time.Now().Add(h.ws.WriteWait))
	if err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, "")); err != nil {
		logger.Log.Debug("send close frame failed", zap.Int("code", code), zap.Error(err))
	}
	_ = c.Close()
}
