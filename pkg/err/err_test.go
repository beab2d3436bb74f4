package errprocess

import (
	"errors"
	"testing"

	"chat_gateway_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	logger.SetNewNop()
	cause := errors.New("connection refused")

	err := Wrap("issue token", cause)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "issue token: connection refused")
}
