package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
)

// UserIDKey is the Locals key holding the authenticated user's hex id.
const UserIDKey = "userId"

// ProtectRoute checks for a valid JWT and attaches the user id to the request context
func ProtectRoute(tokens *lib.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - No token provided"))
		}

		userID, err := tokens.VerifyJWT(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(lib.MessageResponse("Unauthorized - Invalid token"))
		}

		c.Locals(UserIDKey, userID.Hex())
		return c.Next()
	}
}

// Extracts the token from "Authorization: Bearer <token>", falling back to x-auth-token
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Get("x-auth-token"))
}

// UserID returns the id stored by ProtectRoute, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
