package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/controllers"
)

// TweetRoutes sets up tweet creation, editing, images, pinning, feed and deletion
func TweetRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	tweet := api.Group("/tweets")

	tweet.Get("/all/:userid", h.ListUserTweets)
	tweet.Get("/feed", g.protect(h.Feed)...)
	tweet.Get("/favorites", g.protect(h.Favorites)...)
	tweet.Post("/create", g.protect(h.CreateTweet)...)
	tweet.Put("/uploadimages/:tweetid", g.protect(h.UploadImages)...)
	tweet.Delete("/deleteimages/:tweetid", g.protect(h.DeleteImages)...)
	tweet.Delete("/delete/:tweetid", g.protect(h.DeleteTweet)...)
	tweet.Patch("/update/:tweetid", g.protect(h.UpdateTweet)...)
	tweet.Post("/pintweet/:tweetid", g.protect(h.PinTweet)...)
	tweet.Get("/:tweetid", h.GetTweet)
}

func TweetLikeRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	api.Group("/tweetlikes").Post("/like/:tweetid", g.protect(h.ToggleLike)...)
}

func TweetCommentRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	comment := api.Group("/tweetcomments")

	comment.Get("/all/:tweetid", g.protect(h.ListComments)...)
	comment.Post("/create/:tweetid", g.protect(h.CreateComment)...)
	comment.Patch("/update/:commentid", g.protect(h.UpdateComment)...)
	comment.Delete("/delete/:commentid", g.protect(h.DeleteComment)...)
}

func RetweetRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	retweet := api.Group("/retweets")

	retweet.Get("/all/:userid", h.ListUserRetweets)
	retweet.Post("/share/:tweetid", g.protect(h.ShareTweet)...)
	retweet.Patch("/update/:retweetid", g.protect(h.UpdateRetweet)...)
	retweet.Delete("/delete/:retweetid", g.protect(h.DeleteRetweet)...)
	retweet.Get("/:retweetid", h.GetRetweet)
}

func SearchRoutes(api fiber.Router, h *controllers.Handler, g Guards) {
	search := api.Group("/search", g.Search)

	search.Post("/users", h.SearchUsers)
	search.Post("/tweets", h.SearchTweets)
	search.Post("/tags", h.SearchTags)
}
