package handlers

import (
	"errors"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/internal/chat/repository"
	"chat_gateway_service/pkg/encrypt"
	"chat_gateway_service/pkg/logger"
	"chat_gateway_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler register, login and preferences
type AuthHandler struct {
	users  repository.UserRepository
	tokens repository.TokenIssuer
}

// NewAuthHandler create AuthHandler
func NewAuthHandler(users repository.UserRepository, tokens repository.TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register 注册新用户
// @Summary 注册新用户
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} domain.User
// @Failure 400 {object} string "请求错误"
// @Failure 409 {object} string "username exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return badRequest(c, "invalid request")
	}
	if err := encrypt.ValidatePasswordStrength(req.Password); err != nil {
		return badRequest(c, err.Error())
	}

	hash, err := encrypt.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, err)
	}
	user := &domain.User{Username: req.Username, Email: req.Email, Password: hash}
	if err := h.users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return errorResponse(c, err)
	}

	logger.Log.Info("user registered", zap.Int64("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login 用户登录
// @Summary 用户登录, 回傳 token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} string "token"
// @Failure 401 {object} string "登录失败"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	user, err := h.users.FindByUsername(c.UserContext(), req.Username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return errorResponse(c, err)
	}
	if user == nil || encrypt.CheckPassword(user.Password, req.Password) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	token, err := h.tokens.Issue(c.UserContext(), user.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}

// GetPreferences 取得通知設定
// @Summary current user's profile and notification settings
// @Tags User
// @Produce json
// @Success 200 {object} domain.User
// @Router /user/preferences [get]
func (h *AuthHandler) GetPreferences(c *fiber.Ctx) error {
	user, err := h.users.FindByID(c.UserContext(), middlewares.UserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}

// UpdatePreferences 更新通知設定
// @Summary update phone number and notification flags
// @Tags User
// @Accept json
// @Produce json
// @Success 200 {object} domain.User
// @Router /user/preferences [patch]
func (h *AuthHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req repository.UserPreferences
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.PhoneNumber != nil && len(*req.PhoneNumber) > 11 {
		return badRequest(c, "phone_number too long")
	}

	user, err := h.users.UpdatePreferences(c.UserContext(), middlewares.UserID(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(user)
}
