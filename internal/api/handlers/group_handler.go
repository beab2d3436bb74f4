package handlers

import (
	"context"

	"chat_gateway_service/internal/chat/app"
	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/repository"
	"chat_gateway_service/pkg/logger"
	"chat_gateway_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GroupHandler group chat CRUD, detail/update/delete are creator only
type GroupHandler struct {
	channels repository.ChannelRepository
	messages repository.MessageStore
	chat     *app.ChatService
}

// NewGroupHandler create GroupHandler
func NewGroupHandler(channels repository.ChannelRepository, messages repository.MessageStore, chat *app.ChatService) *GroupHandler {
	return &GroupHandler{channels: channels, messages: messages, chat: chat}
}

// List groups the caller belongs to
// @Summary list my groups
// @Tags Groups
// @Produce json
// @Success 200 {array} domain.Channel
// @Router /groups [get]
func (h *GroupHandler) List(c *fiber.Ctx) error {
	chs, err := h.channels.ListForUser(c.UserContext(), middlewares.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(chs)
}

// Create group, caller becomes creator and member
// @Summary create group
// @Tags Groups
// @Accept json
// @Produce json
// @Success 201 {object} domain.Channel
// @Router /groups [post]
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	type request struct {
		Name     string                 `json:"name"`
		Member   []int64                `json:"member"`
		Category domain.ChannelCategory `json:"category"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return badRequest(c, "invalid request")
	}
	if req.Category == "" {
		req.Category = domain.CategoryPrivate
	}
	if !req.Category.Valid() {
		return badRequest(c, "invalid category")
	}

	ch := &domain.Channel{Name: req.Name, CreatorID: middlewares.UserID(c), Category: req.Category}
	if err := h.channels.Create(c.UserContext(), ch, req.Member); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

func (h *GroupHandler) ownChannel(c *fiber.Ctx) (*domain.Channel, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, err
	}
	ch, err := h.channels.GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if ch.CreatorID != middlewares.UserID(c) {
		return nil, domain.ErrForbidden
	}
	return ch, nil
}

// Get group detail
// @Summary group detail
// @Tags Groups
// @Produce json
// @Param id path int true "group id"
// @Success 200 {object} domain.Channel
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	ch, err := h.ownChannel(c)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ch)
}

// Update name, category or members. Removed members have their unread markers cleared.
// @Summary update group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path int true "group id"
// @Success 200 {object} domain.Channel
// @Router /groups/{id} [patch]
func (h *GroupHandler) Update(c *fiber.Ctx) error {
	type request struct {
		Name     *string                 `json:"name"`
		Member   []int64                 `json:"member"`
		Category *domain.ChannelCategory `json:"category"`
	}

	ch, err := h.ownChannel(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.Name != nil {
		if *req.Name == "" {
			return badRequest(c, "invalid name")
		}
		ch.Name = *req.Name
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return badRequest(c, "invalid category")
		}
		ch.Category = *req.Category
	}

	removed, err := h.channels.Update(c.UserContext(), ch, req.Member)
	if err != nil {
		return errorResponse(c, err)
	}
	h.purgeRemoved(c.UserContext(), ch.ID, removed)

	updated, err := h.channels.GetByID(c.UserContext(), ch.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(updated)
}

// purgeRemoved 被移除的成員視為已讀全部訊息
func (h *GroupHandler) purgeRemoved(ctx context.Context, channelID int64, removed []int64) {
	for _, userID := range removed {
		if _, err := h.chat.AcknowledgeAll(ctx, channelID, userID); err != nil {
			logger.Log.Warn("purge unread for removed member failed",
				zap.Int64("channel_id", channelID),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}
}

// Delete group and its messages
// @Summary delete group
// @Tags Groups
// @Param id path int true "group id"
// @Success 204
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	ch, err := h.ownChannel(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.channels.Delete(c.UserContext(), ch.ID); err != nil {
		return errorResponse(c, err)
	}
	if err := h.messages.DeleteByChannel(c.UserContext(), ch.ID); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListWithMessages caller's groups with their messages, newest group first
// @Summary my groups with messages
// @Tags Groups
// @Produce json
// @Success 200 {array} domain.Channel
// @Router /mgroup-messages [get]
func (h *GroupHandler) ListWithMessages(c *fiber.Ctx) error {
	chs, err := h.channels.ListForUser(c.UserContext(), middlewares.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	for i := range chs {
		msgs, err := h.messages.ListByChannel(c.UserContext(), chs[i].ID)
		if err != nil {
			return errorResponse(c, err)
		}
		chs[i].Messages = msgs
	}
	return c.JSON(chs)
}
