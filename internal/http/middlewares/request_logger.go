package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request after it
// completes.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Route the error through the error handler first so
				// the logged status is the one actually sent.
				c.Error(err)
			}

			logger.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"ip":         c.RealIP(),
				"latency_ms": time.Since(start).Milliseconds(),
			}).Info("request handled")

			return nil
		}
	}
}
