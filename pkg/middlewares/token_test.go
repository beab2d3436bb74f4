package middlewares

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string]int64

func (s staticResolver) Resolve(_ context.Context, credential string) (int64, error) {
	if id, ok := s[credential]; ok {
		return id, nil
	}
	return 0, errors.New("unknown")
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(staticResolver{"good": 7}))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatInt(UserID(c), 10))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{name: "missing", target: "/me", status: fiber.StatusUnauthorized},
		{name: "unknown query", target: "/me?token=bad", status: fiber.StatusUnauthorized},
		{name: "query token", target: "/me?token=good", status: fiber.StatusOK, body: "7"},
		{name: "header token", target: "/me", header: "Token good", status: fiber.StatusOK, body: "7"},
		{name: "bearer header", target: "/me", header: "Bearer good", status: fiber.StatusOK, body: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(b))
			}
		})
	}
}
