package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FromEcho retrieves the request-scoped logger set by the request-ID
// middleware, falling back to the global logger.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}
