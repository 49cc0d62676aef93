package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/controllers"
)

// UserRoutes sets up account, profile and follow routes
func UserRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	user := api.Group("/users")

	user.Get("/all", h.ListUsers)
	user.Get("/me", g.protect(h.Me)...)
	user.Post("/new", h.Register)
	user.Put("/uploadavatar", g.protect(h.UploadAvatar)...)
	user.Patch("/updateme", g.protect(h.UpdateMe)...)
	user.Delete("/deleteme", g.protect(h.DeleteMe)...)
	user.Post("/follow/:userid", g.protect(h.ToggleFollow)...)
	user.Post("/removefollower/:userid", g.protect(h.RemoveFollower)...)
	user.Get("/followers/:userid", h.Followers)
	user.Get("/followings/:userid", h.Followings)
	user.Get("/:userid", h.GetUser)
}

func AuthRoutes(api fiber.Router, h *controllers.Handler) {
	api.Group("/auth").Post("/", h.Login)
}
