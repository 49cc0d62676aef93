package services

import (
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorization predicates. Each one answers a single question about an
// actor and a resource and never touches the store.

func canManageTweet(actor primitive.ObjectID, t *models.Tweet) bool {
	return t != nil && t.User == actor
}

func canEditComment(actor primitive.ObjectID, c *models.TweetComment) bool {
	return c != nil && c.User == actor
}

// canDeleteComment lets the commenter or the owner of the parent tweet
// remove a comment. parent may be nil when the tweet is already gone.
func canDeleteComment(actor primitive.ObjectID, c *models.TweetComment, parent *models.Tweet) bool {
	if canEditComment(actor, c) {
		return true
	}
	return parent != nil && c != nil && parent.Id == c.Tweet && parent.User == actor
}

func canModifyRetweet(actor primitive.ObjectID, r *models.Retweet) bool {
	return r != nil && r.User == actor
}

func authorize(allowed bool) error {
	if !allowed {
		return lib.Unauthorized(msgNoPermission)
	}
	return nil
}
