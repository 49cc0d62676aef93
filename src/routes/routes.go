package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/theleywin/Backend-Twitter-Clone/src/controllers"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/middleware"
)

// Guards bundles the middleware shared by the route groups.
type Guards struct {
	// Auth rejects anonymous requests and throttles their writes.
	Auth   []fiber.Handler
	Search fiber.Handler
}

func NewGuards(tokens *lib.TokenManager, limits lib.LimitsConfig) Guards {
	writes := middleware.NewWriteLimiter(limits.WritesPerSecond, limits.WriteBurst)
	return Guards{
		Auth:   []fiber.Handler{middleware.ProtectRoute(tokens), writes.Handler()},
		Search: middleware.SearchLimit(limits.SearchPerMinute),
	}
}

func (g Guards) protect(h fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(g.Auth)+1)
	chain = append(chain, g.Auth...)
	return append(chain, h)
}

// Register mounts every API route group plus health and metrics.
func Register(app *fiber.App, h *controllers.Handler, g Guards, withMetrics bool) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})
	if withMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	api := app.Group("/api")
	UserRoutes(api, h, g)
	AuthRoutes(api, h)
	TweetRoutes(api, h, g)
	TweetLikeRoutes(api, h, g)
	TweetCommentRoutes(api, h, g)
	RetweetRoutes(api, h, g)
	SearchRoutes(api, h, g)
}
