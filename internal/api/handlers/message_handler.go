package handlers

import (
	"chat_gateway_service/internal/chat/app"
	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/repository"
	"chat_gateway_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler message CRUD, detail/update/delete are sender only
type MessageHandler struct {
	messages repository.MessageStore
	chat     *app.ChatService
}

// NewMessageHandler create MessageHandler
func NewMessageHandler(messages repository.MessageStore, chat *app.ChatService) *MessageHandler {
	return &MessageHandler{messages: messages, chat: chat}
}

// List messages sent by the caller
// @Summary list my messages
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.Message
// @Router /messages [get]
func (h *MessageHandler) List(c *fiber.Ctx) error {
	ms, err := h.messages.ListBySender(c.UserContext(), middlewares.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ms)
}

// Create send a message through the same path as the websocket
// @Summary send message
// @Tags Messages
// @Accept json
// @Produce json
// @Success 201 {object} domain.Message
// @Router /messages [post]
func (h *MessageHandler) Create(c *fiber.Ctx) error {
	type request struct {
		ChannelID int64  `json:"channel_id"`
		Content   string `json:"content"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if !domain.ValidContent(req.Content) {
		return badRequest(c, "content must be 1 to 1000 characters")
	}

	userID := middlewares.UserID(c)
	if err := h.chat.EnsureMember(c.UserContext(), req.ChannelID, userID); err != nil {
		return errorResponse(c, err)
	}
	msg, err := h.chat.SendMessage(c.UserContext(), req.ChannelID, userID, req.Content)
	if msg == nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *MessageHandler) ownMessage(c *fiber.Ctx) (*domain.Message, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, err
	}
	msg, err := h.messages.GetMessage(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != middlewares.UserID(c) {
		return nil, domain.ErrForbidden
	}
	return msg, nil
}

// Get message detail
// @Summary message detail
// @Tags Messages
// @Produce json
// @Param id path int true "message id"
// @Success 200 {object} domain.Message
// @Router /messages/{id} [get]
func (h *MessageHandler) Get(c *fiber.Ctx) error {
	msg, err := h.ownMessage(c)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(msg)
}

// Update message content
// @Summary edit message
// @Tags Messages
// @Accept json
// @Produce json
// @Param id path int true "message id"
// @Success 200 {object} domain.Message
// @Router /messages/{id} [patch]
func (h *MessageHandler) Update(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
	}

	msg, err := h.ownMessage(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req request
	if err := c.BodyParser(&req); err != nil || !domain.ValidContent(req.Content) {
		return badRequest(c, "content must be 1 to 1000 characters")
	}
	if err := h.messages.UpdateContent(c.UserContext(), msg.ID, req.Content); err != nil {
		return errorResponse(c, err)
	}
	msg.Content = req.Content
	return c.JSON(msg)
}

// Delete message
// @Summary delete message
// @Tags Messages
// @Param id path int true "message id"
// @Success 204
// @Router /messages/{id} [delete]
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	msg, err := h.ownMessage(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.messages.Delete(c.UserContext(), msg.ID); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
