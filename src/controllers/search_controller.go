package controllers

import "github.com/gofiber/fiber/v2"

type searchRequest struct {
	Search string `json:"search"`
	Tags   string `json:"tags"`
}

func (h *Handler) SearchUsers(c *fiber.Ctx) error {
	var req searchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	users, err := h.svc.SearchUsers(c.UserContext(), req.Search)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) SearchTweets(c *fiber.Ctx) error {
	var req searchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	tweets, err := h.svc.SearchTweets(c.UserContext(), req.Search)
	if err != nil {
		return err
	}
	return c.JSON(tweets)
}

// SearchTags accepts the query under "search" or "tags"
func (h *Handler) SearchTags(c *fiber.Ctx) error {
	var req searchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	query := req.Search
	if query == "" {
		query = req.Tags
	}
	tweets, err := h.svc.SearchTags(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(tweets)
}
