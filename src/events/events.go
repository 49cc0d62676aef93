package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TweetLiked      = "tweets.liked"
	TweetUnliked    = "tweets.unliked"
	TweetCommented  = "tweets.commented"
	TweetRetweeted  = "tweets.retweeted"
	TweetUnretweet  = "tweets.unretweeted"
	TweetDeleted    = "tweets.deleted"
	UserFollowed    = "users.followed"
	UserUnfollowed  = "users.unfollowed"
	UserDeleted     = "users.deleted"
	CascadeReported = "cascade.report"
)

// Event is the envelope published for every relation change.
type Event struct {
	ID        uuid.UUID `json:"eventId"`
	Subject   string    `json:"subject"`
	ActorID   string    `json:"actorId"`
	TargetID  string    `json:"targetId,omitempty"`
	TweetID   string    `json:"tweetId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

func New(subject, actorID string) Event {
	return Event{
		ID:        uuid.New(),
		Subject:   subject,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	}
}

func (e Event) WithTarget(id string) Event {
	e.TargetID = id
	return e
}

func (e Event) WithTweet(id string) Event {
	e.TweetID = id
	return e
}

func (e Event) WithPayload(p any) Event {
	e.Payload = p
	return e
}
