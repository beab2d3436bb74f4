package errprocess

import (
	"fmt"

	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// Wrap log the cause and return errMsg wrapping it
func Wrap(errMsg string, err error) error {
	logger.Log.Error(errMsg, zap.Error(err))
	return fmt.Errorf("%s: %w", errMsg, err)
}
