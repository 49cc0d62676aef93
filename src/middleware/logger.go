package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"go.uber.org/zap"
)

// RequestLogger logs every request and records its latency. Errors from
// the chain are rendered here so the logged status is the final one.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		route := c.Route().Path
		metrics.ObserveRequest(c.Method(), route, status, start)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if id, ok := c.Locals("requestid").(string); ok {
			fields = append(fields, zap.String("requestId", id))
		}
		if uid := UserID(c); uid != "" {
			fields = append(fields, zap.String("userId", uid))
		}

		if status >= fiber.StatusInternalServerError {
			lib.Log.Error("request", fields...)
		} else {
			lib.Log.Info("request", fields...)
		}
		return nil
	}
}
