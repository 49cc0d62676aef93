package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TweetLike is the (user, tweet) like relation. Its existence is the liked state.
type TweetLike struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user" bson:"user"`
	Tweet        primitive.ObjectID `json:"tweet" bson:"tweet"`
	CreationDate time.Time          `json:"creationDate" bson:"creationDate"`
}

type TweetComment struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user" bson:"user"`
	Tweet        primitive.ObjectID `json:"tweet" bson:"tweet"`
	CommentText  string             `json:"commentText" bson:"commentText"`
	CreationDate time.Time          `json:"creationDate" bson:"creationDate"`
}

type Retweet struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	User         primitive.ObjectID `json:"user" bson:"user"`
	Tweet        primitive.ObjectID `json:"tweet" bson:"tweet"`
	RetweetText  string             `json:"retweetText,omitempty" bson:"retweetText,omitempty"`
	IsRetweet    bool               `json:"isRetweet" bson:"isRetweet"`
	CreationDate time.Time          `json:"creationDate" bson:"creationDate"`
}

type LikeView struct {
	ID   primitive.ObjectID `json:"_id"`
	User UserSummary        `json:"user"`
}

type CommentView struct {
	ID           primitive.ObjectID `json:"_id"`
	User         UserSummary        `json:"user"`
	Tweet        primitive.ObjectID `json:"tweet"`
	CommentText  string             `json:"commentText"`
	CreationDate time.Time          `json:"creationDate"`
}

func (c *TweetComment) View(author UserSummary) CommentView {
	return CommentView{
		ID:           c.Id,
		User:         author,
		Tweet:        c.Tweet,
		CommentText:  c.CommentText,
		CreationDate: c.CreationDate,
	}
}

// RetweetView carries the retweeter and the original tweet with its author.
type RetweetView struct {
	ID           primitive.ObjectID `json:"_id"`
	User         UserSummary        `json:"user"`
	RetweetText  string             `json:"retweetText,omitempty"`
	IsRetweet    bool               `json:"isRetweet"`
	CreationDate time.Time          `json:"creationDate"`
	Tweet        *TweetView         `json:"tweet"`
}

func (r *Retweet) View(author UserSummary, original *TweetView) RetweetView {
	return RetweetView{
		ID:           r.Id,
		User:         author,
		RetweetText:  r.RetweetText,
		IsRetweet:    r.IsRetweet,
		CreationDate: r.CreationDate,
		Tweet:        original,
	}
}

// FollowResult is the compact pair returned by follow and removeFollower:
// the acting user first, the target second.
type FollowResult struct {
	Following bool     `json:"following"`
	Actor     UserCard `json:"actor"`
	Target    UserCard `json:"target"`
	Message   string   `json:"message,omitempty"`
}

// RetweetToggle reports the outcome of a retweet toggle. Retweet is nil
// when the toggle removed the retweet.
type RetweetToggle struct {
	Retweeted bool         `json:"retweeted"`
	Retweet   *RetweetView `json:"retweet,omitempty"`
	Tweet     TweetView    `json:"tweet"`
}
