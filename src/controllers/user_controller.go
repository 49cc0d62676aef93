package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/services"
)

// ListUsers returns every user sorted by follower count
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser returns a public profile with tweets and the pinned tweet
func (h *Handler) GetUser(c *fiber.Ctx) error {
	profile, err := h.svc.GetUser(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// Register creates an account and hands back an access token
func (h *Handler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	account, token, err := h.svc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	c.Set("x-auth-token", token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  account,
		"token": token,
	})
}

// Login exchanges credentials for an access token
func (h *Handler) Login(c *fiber.Ctx) error {
	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	c.Set("x-auth-token", token)
	return c.JSON(fiber.Map{"token": token})
}

func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var in services.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	account, err := h.svc.UpdateMe(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// DeleteMe removes the caller's account along with everything it owns
func (h *Handler) DeleteMe(c *fiber.Ctx) error {
	report, err := h.svc.DeleteUserCascade(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User was deleted.",
		"report":  report,
	})
}

// Me returns the caller's own account
func (h *Handler) Me(c *fiber.Ctx) error {
	account, err := h.svc.Me(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(account)
}

// UploadAvatar replaces the caller's profile photo with the multipart "avatar" file
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return lib.Validation("No image provided.")
	}

	f, err := fh.Open()
	if err != nil {
		return lib.Wrap(lib.KindValidation, "Could not read uploaded image.", err)
	}
	defer closeFile(f)

	avatar, err := h.svc.UploadAvatar(c.UserContext(), actor(c), &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(avatar)
}
