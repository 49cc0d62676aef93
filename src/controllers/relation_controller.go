package controllers

import "github.com/gofiber/fiber/v2"

type commentRequest struct {
	CommentText string `json:"commentText"`
}

type retweetRequest struct {
	RetweetText string `json:"retweetText"`
}

// ToggleLike likes the tweet, or removes the caller's like when present
func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	tweet, err := h.svc.ToggleLike(c.UserContext(), actor(c), c.Params("tweetid"))
	if err != nil {
		return err
	}
	return c.JSON(tweet)
}

func (h *Handler) ListComments(c *fiber.Ctx) error {
	comments, err := h.svc.ListComments(c.UserContext(), c.Params("tweetid"))
	if err != nil {
		return err
	}
	return c.JSON(comments)
}

func (h *Handler) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := h.svc.AddComment(c.UserContext(), actor(c), c.Params("tweetid"), req.CommentText)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := h.svc.EditComment(c.UserContext(), c.Params("commentid"), actor(c), req.CommentText)
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

// DeleteComment is allowed for the commenter and for the tweet's owner
func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	comment, err := h.svc.DeleteComment(c.UserContext(), c.Params("commentid"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(comment)
}

func (h *Handler) GetRetweet(c *fiber.Ctx) error {
	rt, err := h.svc.GetRetweet(c.UserContext(), c.Params("retweetid"))
	if err != nil {
		return err
	}
	return c.JSON(rt)
}

func (h *Handler) ListUserRetweets(c *fiber.Ctx) error {
	retweets, err := h.svc.ListUserRetweets(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(retweets)
}

// ShareTweet retweets, or undoes the caller's existing retweet
func (h *Handler) ShareTweet(c *fiber.Ctx) error {
	var req retweetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.svc.ToggleRetweet(c.UserContext(), actor(c), c.Params("tweetid"), req.RetweetText)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) UpdateRetweet(c *fiber.Ctx) error {
	var req retweetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	rt, err := h.svc.EditRetweet(c.UserContext(), c.Params("retweetid"), actor(c), req.RetweetText)
	if err != nil {
		return err
	}
	return c.JSON(rt)
}

func (h *Handler) DeleteRetweet(c *fiber.Ctx) error {
	rt, err := h.svc.DeleteRetweet(c.UserContext(), c.Params("retweetid"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(rt)
}
