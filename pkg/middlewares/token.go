package middlewares

import (
	"context"

	"chat_gateway_service/pkg/logger"
	t_token "chat_gateway_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	//QueryToken token in query name, websocket client 無法帶 header
	QueryToken = "token"

	//TokenUserID resolved user id, set c.locals name
	TokenUserID = "UserID"
)

// CredentialResolver map a presented credential to a user id
type CredentialResolver interface {
	Resolve(ctx context.Context, credential string) (int64, error)
}

// Credential read the credential from Authorization header, fallback to query
func Credential(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		return t_token.StripScheme(h)
	}
	return c.Query(QueryToken)
}

// AuthMiddleware resolve the credential and store the user id in c.Locals
func AuthMiddleware(resolver CredentialResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential := Credential(c)
		if credential == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		userID, err := resolver.Resolve(c.UserContext(), credential)
		if err != nil {
			logger.Log.Debug("credential rejected", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenUserID, userID)
		return c.Next()
	}
}

// UserID get the authenticated user id, 0 if the middleware did not run
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(TokenUserID).(int64)
	return id
}
