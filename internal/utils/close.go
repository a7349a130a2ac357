package utils

import (
	"io"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// CloseLogged closes c and logs the outcome under name. Nil closers are
// skipped. The close error is returned for callers that aggregate them.
func CloseLogged(c io.Closer, name string, log logger.Logger) error {
	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
		return err
	}
	log.Debug("closed", logger.String("resource", name))
	return nil
}
