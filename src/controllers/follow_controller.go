package controllers

import "github.com/gofiber/fiber/v2"

// ToggleFollow follows the target user, or unfollows when already following
func (h *Handler) ToggleFollow(c *fiber.Ctx) error {
	result, err := h.svc.ToggleFollow(c.UserContext(), actor(c), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// RemoveFollower makes the target user stop following the caller
func (h *Handler) RemoveFollower(c *fiber.Ctx) error {
	result, err := h.svc.RemoveFollower(c.UserContext(), actor(c), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) Followers(c *fiber.Ctx) error {
	list, err := h.svc.Followers(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) Followings(c *fiber.Ctx) error {
	list, err := h.svc.Followings(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(list)
}
