package controllers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/services"
	"go.uber.org/zap"
)

const maxImagesPerUpload = 4

type tweetRequest struct {
	TweetText string `json:"tweetText"`
	Tags      string `json:"tags"`
}

// ListUserTweets returns a user's tweets, pinned first
func (h *Handler) ListUserTweets(c *fiber.Ctx) error {
	tweets, err := h.svc.ListUserTweets(c.UserContext(), c.Params("userid"))
	if err != nil {
		return err
	}
	return c.JSON(tweets)
}

// Feed returns tweets and retweets of the users the caller follows, newest first
func (h *Handler) Feed(c *fiber.Ctx) error {
	items, err := h.svc.Feed(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *Handler) Favorites(c *fiber.Ctx) error {
	tweets, err := h.svc.Favorites(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(tweets)
}

func (h *Handler) CreateTweet(c *fiber.Ctx) error {
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	tweet, err := h.svc.CreateTweet(c.UserContext(), actor(c), req.TweetText, req.Tags)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tweet)
}

func (h *Handler) GetTweet(c *fiber.Ctx) error {
	tweet, err := h.svc.GetTweet(c.UserContext(), c.Params("tweetid"))
	if err != nil {
		return err
	}
	return c.JSON(tweet)
}

func (h *Handler) UpdateTweet(c *fiber.Ctx) error {
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	tweet, err := h.svc.EditTweet(c.UserContext(), c.Params("tweetid"), actor(c), req.TweetText)
	if err != nil {
		return err
	}
	return c.JSON(tweet)
}

// DeleteTweet runs the tweet cascade and returns its step report
func (h *Handler) DeleteTweet(c *fiber.Ctx) error {
	report, err := h.svc.DeleteTweetCascade(c.UserContext(), c.Params("tweetid"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Tweet was deleted.",
		"report":  report,
	})
}

func (h *Handler) PinTweet(c *fiber.Ctx) error {
	state, err := h.svc.TogglePin(c.UserContext(), actor(c), c.Params("tweetid"))
	if err != nil {
		return err
	}
	return c.JSON(state)
}

// UploadImages stores the multipart "tweetimages" files on the tweet
func (h *Handler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return lib.Validation("No images provided.")
	}

	headers := form.File["tweetimages"]
	if len(headers) > maxImagesPerUpload {
		return lib.Validation("You can upload at most 4 images at once.")
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return lib.Wrap(lib.KindValidation, "Could not read uploaded image.", err)
		}
		defer closeFile(f)

		uploads = append(uploads, services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		})
	}

	images, err := h.svc.UploadImages(c.UserContext(), c.Params("tweetid"), actor(c), uploads)
	if err != nil {
		return err
	}
	return c.JSON(images)
}

func (h *Handler) DeleteImages(c *fiber.Ctx) error {
	type deleteImagesRequest struct {
		ImagesIds []string `json:"imagesIds"`
	}

	var req deleteImagesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	images, err := h.svc.DeleteImages(c.UserContext(), c.Params("tweetid"), actor(c), req.ImagesIds)
	if err != nil {
		return err
	}
	return c.JSON(images)
}

func closeFile(f multipart.File) {
	if err := f.Close(); err != nil {
		lib.Log.Debug("failed to close upload", zap.Error(err))
	}
}
