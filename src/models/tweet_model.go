package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinTextLength = 1
	MaxTextLength = 322
	MaxTagsLength = 1000
)

type Tweet struct {
	Id               primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User             primitive.ObjectID   `json:"user" bson:"user"`
	TweetText        string               `json:"tweetText" bson:"tweetText"`
	TweetLikes       []primitive.ObjectID `json:"tweetLikes" bson:"tweetLikes"`
	TweetComments    []primitive.ObjectID `json:"tweetComments" bson:"tweetComments"`
	Retweets         []primitive.ObjectID `json:"retweets" bson:"retweets"`
	NumberOfLikes    int                  `json:"numberOfLikes" bson:"numberOfLikes"`
	NumberOfComments int                  `json:"numberOfComments" bson:"numberOfComments"`
	NumberOfRetweets int                  `json:"numberOfRetweets" bson:"numberOfRetweets"`
	Images           []string             `json:"images" bson:"images"`
	ImagesIds        []string             `json:"imagesIds" bson:"imagesIds"`
	Tags             []string             `json:"tags" bson:"tags"`
	IsPinned         bool                 `json:"isPinned" bson:"isPinned"`
	CreationDate     time.Time            `json:"creationDate" bson:"creationDate"`
	Version          int64                `json:"-" bson:"version"`
}

func NewTweet(owner primitive.ObjectID, text string, tags []string) *Tweet {
	if tags == nil {
		tags = []string{}
	}
	return &Tweet{
		Id:            primitive.NewObjectID(),
		User:          owner,
		TweetText:     text,
		TweetLikes:    []primitive.ObjectID{},
		TweetComments: []primitive.ObjectID{},
		Retweets:      []primitive.ObjectID{},
		Images:        []string{},
		ImagesIds:     []string{},
		Tags:          tags,
		CreationDate:  time.Now(),
	}
}

func (t *Tweet) AddLike(likeID primitive.ObjectID) bool {
	return addRef(&t.TweetLikes, &t.NumberOfLikes, likeID)
}
func (t *Tweet) RemoveLike(likeID primitive.ObjectID) bool {
	return removeRef(&t.TweetLikes, &t.NumberOfLikes, likeID)
}

func (t *Tweet) AddComment(commentID primitive.ObjectID) bool {
	return addRef(&t.TweetComments, &t.NumberOfComments, commentID)
}
func (t *Tweet) RemoveComment(commentID primitive.ObjectID) bool {
	return removeRef(&t.TweetComments, &t.NumberOfComments, commentID)
}

func (t *Tweet) AddRetweet(retweetID primitive.ObjectID) bool {
	return addRef(&t.Retweets, &t.NumberOfRetweets, retweetID)
}
func (t *Tweet) RemoveRetweet(retweetID primitive.ObjectID) bool {
	return removeRef(&t.Retweets, &t.NumberOfRetweets, retweetID)
}

// AddImage records an uploaded image url together with its storage key.
func (t *Tweet) AddImage(url, key string) {
	t.Images = append(t.Images, url)
	t.ImagesIds = append(t.ImagesIds, key)
}

// RemoveImage drops the image stored under key and its url.
func (t *Tweet) RemoveImage(key string) bool {
	for i, existing := range t.ImagesIds {
		if existing != key {
			continue
		}
		t.ImagesIds = append(t.ImagesIds[:i:i], t.ImagesIds[i+1:]...)
		if i < len(t.Images) {
			t.Images = append(t.Images[:i:i], t.Images[i+1:]...)
		}
		return true
	}
	return false
}

func (t *Tweet) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

func (t *Tweet) CountersConsistent() bool {
	return t.NumberOfLikes == len(t.TweetLikes) &&
		t.NumberOfComments == len(t.TweetComments) &&
		t.NumberOfRetweets == len(t.Retweets)
}

// TweetView is a tweet with its author populated. Relation id arrays are
// never exposed; likers and comments are filled only where an operation
// asks for them.
type TweetView struct {
	ID               primitive.ObjectID `json:"_id"`
	User             UserSummary        `json:"user"`
	TweetText        string             `json:"tweetText"`
	NumberOfLikes    int                `json:"numberOfLikes"`
	NumberOfComments int                `json:"numberOfComments"`
	NumberOfRetweets int                `json:"numberOfRetweets"`
	Images           []string           `json:"images"`
	Tags             []string           `json:"tags"`
	IsPinned         bool               `json:"isPinned"`
	CreationDate     time.Time          `json:"creationDate"`
	Likes            []LikeView         `json:"tweetLikes,omitempty"`
	Comments         []CommentView      `json:"tweetComments,omitempty"`
}

func (t *Tweet) View(author UserSummary) TweetView {
	return TweetView{
		ID:               t.Id,
		User:             author,
		TweetText:        t.TweetText,
		NumberOfLikes:    t.NumberOfLikes,
		NumberOfComments: t.NumberOfComments,
		NumberOfRetweets: t.NumberOfRetweets,
		Images:           t.Images,
		Tags:             t.Tags,
		IsPinned:         t.IsPinned,
		CreationDate:     t.CreationDate,
	}
}

// PinState is the response of a pin toggle.
type PinState struct {
	ID       primitive.ObjectID `json:"_id"`
	IsPinned bool               `json:"isPinned"`
}

// TweetImages is the response of an image upload or removal.
type TweetImages struct {
	ID        primitive.ObjectID `json:"_id"`
	Images    []string           `json:"images"`
	ImagesIds []string           `json:"imagesIds"`
}

// FeedItem is one entry of a user's feed: either a tweet or a retweet.
type FeedItem struct {
	Kind         string       `json:"kind"`
	CreationDate time.Time    `json:"creationDate"`
	Tweet        *TweetView   `json:"tweet,omitempty"`
	Retweet      *RetweetView `json:"retweet,omitempty"`
}

const (
	FeedKindTweet   = "tweet"
	FeedKindRetweet = "retweet"
)
