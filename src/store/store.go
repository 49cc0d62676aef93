// Package store persists users, tweets and the relation entities that link
// them. Every implementation honours the same contract: documents are
// returned as private copies, array/counter pairs are written together and
// user and tweet writes are version-checked.
package store

import (
	"context"
	"errors"

	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("store: document not found")
	ErrVersionConflict = errors.New("store: version conflict")
	ErrDuplicate       = errors.New("store: duplicate key")
)

// errStale marks a lost compare-and-swap; callers retry on it.
var errStale = errors.New("store: stale version")

// DefaultRetries bounds read-modify-write attempts when none is configured.
const DefaultRetries = 5

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// GetUsers returns the users that exist, in the order of ids.
	GetUsers(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUserName(ctx context.Context, userName string) (*models.User, error)
	// UpdateUser loads the user, applies fn and writes it back only if no
	// other writer got there first, retrying on conflict.
	UpdateUser(ctx context.Context, id primitive.ObjectID, fn func(*models.User) error) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	EachUser(ctx context.Context, fn func(*models.User) error) error
}

type TweetStore interface {
	CreateTweet(ctx context.Context, t *models.Tweet) error
	GetTweet(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	GetTweets(ctx context.Context, ids []primitive.ObjectID) ([]*models.Tweet, error)
	// TweetsByUser returns a user's tweets, newest first.
	TweetsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Tweet, error)
	UpdateTweet(ctx context.Context, id primitive.ObjectID, fn func(*models.Tweet) error) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id primitive.ObjectID) error
	EachTweet(ctx context.Context, fn func(*models.Tweet) error) error
}

type LikeStore interface {
	// CreateLike fails with ErrDuplicate if the user already likes the tweet.
	CreateLike(ctx context.Context, l *models.TweetLike) error
	FindLike(ctx context.Context, userID, tweetID primitive.ObjectID) (*models.TweetLike, error)
	GetLikes(ctx context.Context, ids []primitive.ObjectID) ([]*models.TweetLike, error)
	LikesByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.TweetLike, error)
	LikesByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.TweetLike, error)
	DeleteLike(ctx context.Context, id primitive.ObjectID) error
	DeleteLikes(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.TweetComment) error
	GetComment(ctx context.Context, id primitive.ObjectID) (*models.TweetComment, error)
	GetComments(ctx context.Context, ids []primitive.ObjectID) ([]*models.TweetComment, error)
	CommentsByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.TweetComment, error)
	CommentsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.TweetComment, error)
	SetCommentText(ctx context.Context, id primitive.ObjectID, text string) (*models.TweetComment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type RetweetStore interface {
	// CreateRetweet fails with ErrDuplicate if the user already retweeted the tweet.
	CreateRetweet(ctx context.Context, r *models.Retweet) error
	GetRetweet(ctx context.Context, id primitive.ObjectID) (*models.Retweet, error)
	FindRetweet(ctx context.Context, userID, tweetID primitive.ObjectID) (*models.Retweet, error)
	GetRetweets(ctx context.Context, ids []primitive.ObjectID) ([]*models.Retweet, error)
	RetweetsByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.Retweet, error)
	RetweetsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Retweet, error)
	SetRetweetText(ctx context.Context, id primitive.ObjectID, text string) (*models.Retweet, error)
	DeleteRetweet(ctx context.Context, id primitive.ObjectID) error
	DeleteRetweets(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type Store interface {
	UserStore
	TweetStore
	LikeStore
	CommentStore
	RetweetStore
}
