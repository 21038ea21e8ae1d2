package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// EnsurePlayerID resolves the caller's player ID from the X-Player-ID header or the
// playerId query parameter and stores it in the "playerID" local.
func EnsurePlayerID(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			logger.Debug("request without player id", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// fiber reuses the request buffer, and games keep this ID after the handler returns.
		c.Locals("playerID", utils.CopyString(playerID))
		return c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Error(err),
		)
		return err
	}
}
