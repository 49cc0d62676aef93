// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/middleware"
	"github.com/theleywin/Backend-Twitter-Clone/src/services"
)

type Handler struct {
	svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{svc: svc}
}

// parseBody decodes the request body, reporting malformed input as a
// validation failure. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return lib.Validation("Invalid request body.")
	}
	return nil
}

func actor(c *fiber.Ctx) string { return middleware.UserID(c) }
