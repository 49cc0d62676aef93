package services

import (
	"context"
	"errors"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ToggleLike likes the tweet for the user, or removes the like if it
// already exists, and returns the tweet with its likers.
func (s *Service) ToggleLike(ctx context.Context, userID, tweetID string) (*models.TweetView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	if _, err := s.loadTweet(ctx, tid); err != nil {
		return nil, err
	}

	existing, err := s.store.FindLike(ctx, uid, tid)
	switch {
	case err == nil:
		err = s.unlike(ctx, existing)
	case errors.Is(err, store.ErrNotFound):
		err = s.like(ctx, uid, tid)
	}
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}

	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	return s.tweetViewWithLikes(ctx, tweet)
}

func (s *Service) like(ctx context.Context, uid, tid primitive.ObjectID) error {
	like := &models.TweetLike{Id: primitive.NewObjectID(), User: uid, Tweet: tid, CreationDate: time.Now()}
	if err := s.store.CreateLike(ctx, like); err != nil {
		return err
	}
	err := store.Apply(ctx, s.store,
		store.TweetMutation("tweet.tweetLikes", tid, func(t *models.Tweet) error {
			t.AddLike(like.Id)
			return nil
		}).WithUndo(store.TweetMutation("tweet.tweetLikes.undo", tid, func(t *models.Tweet) error {
			t.RemoveLike(like.Id)
			return nil
		})),
		store.UserMutation("user.favorites", uid, func(u *models.User) error {
			u.AddFavorite(like.Id)
			return nil
		}),
	)
	if err != nil {
		if derr := s.store.DeleteLike(context.WithoutCancel(ctx), like.Id); derr != nil {
			lib.Log.Warn("orphaned like left behind", zap.String("like", like.Id.Hex()), zap.Error(derr))
		}
		return err
	}
	metrics.IncRelationToggle("like", "created")
	s.publish(ctx, events.New(events.TweetLiked, uid.Hex()).WithTweet(tid.Hex()))
	return nil
}

func (s *Service) unlike(ctx context.Context, like *models.TweetLike) error {
	err := store.Apply(ctx, s.store,
		store.TweetMutation("tweet.tweetLikes", like.Tweet, func(t *models.Tweet) error {
			t.RemoveLike(like.Id)
			return nil
		}).WithUndo(store.TweetMutation("tweet.tweetLikes.undo", like.Tweet, func(t *models.Tweet) error {
			t.AddLike(like.Id)
			return nil
		})),
		store.UserMutation("user.favorites", like.User, func(u *models.User) error {
			u.RemoveFavorite(like.Id)
			return nil
		}).WithUndo(store.UserMutation("user.favorites.undo", like.User, func(u *models.User) error {
			u.AddFavorite(like.Id)
			return nil
		})),
		store.Step("tweetlike.delete", func(ctx context.Context, st store.Store) error {
			return ignoreMissing(st.DeleteLike(ctx, like.Id))
		}),
	)
	if err != nil {
		return err
	}
	metrics.IncRelationToggle("like", "removed")
	s.publish(ctx, events.New(events.TweetUnliked, like.User.Hex()).WithTweet(like.Tweet.Hex()))
	return nil
}
