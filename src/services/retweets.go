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

func parseRetweetID(hex string) (primitive.ObjectID, error) { return lib.ParseID(hex, "retweet") }

func (s *Service) loadRetweet(ctx context.Context, id primitive.ObjectID) (*models.Retweet, error) {
	r, err := s.store.GetRetweet(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgRetweetNotFound)
	}
	return r, nil
}

// ToggleRetweet shares the tweet, or removes the user's existing retweet
// of it. text is optional.
func (s *Service) ToggleRetweet(ctx context.Context, userID, tweetID, text string) (*models.RetweetToggle, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	if text != "" {
		if err := validateText("retweetText", text); err != nil {
			return nil, err
		}
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	if _, err := s.loadTweet(ctx, tid); err != nil {
		return nil, err
	}

	result := &models.RetweetToggle{}
	existing, err := s.store.FindRetweet(ctx, uid, tid)
	switch {
	case err == nil:
		err = s.unretweet(ctx, existing)
	case errors.Is(err, store.ErrNotFound):
		var created *models.Retweet
		created, err = s.retweet(ctx, uid, tid, text)
		if err == nil {
			views, verr := s.retweetViews(ctx, []*models.Retweet{created})
			if verr != nil {
				return nil, verr
			}
			result.Retweeted = true
			result.Retweet = &views[0]
		}
	}
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}

	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	view, err := s.tweetView(ctx, tweet)
	if err != nil {
		return nil, err
	}
	result.Tweet = *view
	return result, nil
}

func (s *Service) retweet(ctx context.Context, uid, tid primitive.ObjectID, text string) (*models.Retweet, error) {
	rt := &models.Retweet{
		Id:           primitive.NewObjectID(),
		User:         uid,
		Tweet:        tid,
		RetweetText:  text,
		IsRetweet:    true,
		CreationDate: time.Now(),
	}
	if err := s.store.CreateRetweet(ctx, rt); err != nil {
		return nil, err
	}
	err := store.Apply(ctx, s.store,
		store.TweetMutation("tweet.retweets", tid, func(t *models.Tweet) error {
			t.AddRetweet(rt.Id)
			return nil
		}).WithUndo(store.TweetMutation("tweet.retweets.undo", tid, func(t *models.Tweet) error {
			t.RemoveRetweet(rt.Id)
			return nil
		})),
		store.UserMutation("user.retweets", uid, func(u *models.User) error {
			u.AddRetweet(rt.Id)
			return nil
		}),
	)
	if err != nil {
		if derr := s.store.DeleteRetweet(context.WithoutCancel(ctx), rt.Id); derr != nil {
			lib.Log.Warn("orphaned retweet left behind", zap.String("retweet", rt.Id.Hex()), zap.Error(derr))
		}
		return nil, err
	}
	metrics.IncRelationToggle("retweet", "created")
	s.publish(ctx, events.New(events.TweetRetweeted, uid.Hex()).WithTweet(tid.Hex()).
		WithPayload(map[string]string{"retweetId": rt.Id.Hex()}))
	return rt, nil
}

// removeRetweet detaches the retweet from both mirrors and deletes it.
// A missing original tweet is tolerated.
func (s *Service) removeRetweet(ctx context.Context, rt *models.Retweet) error {
	return store.Apply(ctx, s.store,
		store.Step("tweet.retweets", func(ctx context.Context, st store.Store) error {
			_, err := st.UpdateTweet(ctx, rt.Tweet, func(t *models.Tweet) error {
				t.RemoveRetweet(rt.Id)
				return nil
			})
			return ignoreMissing(err)
		}).WithUndo(store.Step("tweet.retweets.undo", func(ctx context.Context, st store.Store) error {
			_, err := st.UpdateTweet(ctx, rt.Tweet, func(t *models.Tweet) error {
				t.AddRetweet(rt.Id)
				return nil
			})
			return ignoreMissing(err)
		})),
		store.UserMutation("user.retweets", rt.User, func(u *models.User) error {
			u.RemoveRetweet(rt.Id)
			return nil
		}).WithUndo(store.UserMutation("user.retweets.undo", rt.User, func(u *models.User) error {
			u.AddRetweet(rt.Id)
			return nil
		})),
		store.Step("retweet.delete", func(ctx context.Context, st store.Store) error {
			return ignoreMissing(st.DeleteRetweet(ctx, rt.Id))
		}),
	)
}

func (s *Service) unretweet(ctx context.Context, rt *models.Retweet) error {
	if err := s.removeRetweet(ctx, rt); err != nil {
		return err
	}
	metrics.IncRelationToggle("retweet", "removed")
	s.publish(ctx, events.New(events.TweetUnretweet, rt.User.Hex()).WithTweet(rt.Tweet.Hex()).
		WithPayload(map[string]string{"retweetId": rt.Id.Hex()}))
	return nil
}

// EditRetweet replaces the retweet text. Owner only. An empty text clears
// the comment, leaving a plain retweet.
func (s *Service) EditRetweet(ctx context.Context, retweetID, userID, text string) (*models.RetweetView, error) {
	rid, err := parseRetweetID(retweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if text != "" {
		if err := validateText("retweetText", text); err != nil {
			return nil, err
		}
	}
	rt, err := s.loadRetweet(ctx, rid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canModifyRetweet(uid, rt)); err != nil {
		return nil, err
	}
	updated, err := s.store.SetRetweetText(ctx, rid, text)
	if err != nil {
		return nil, storeErr(err, msgRetweetNotFound)
	}
	views, err := s.retweetViews(ctx, []*models.Retweet{updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteRetweet removes a retweet. Owner only; the tweet owner has no override.
func (s *Service) DeleteRetweet(ctx context.Context, retweetID, userID string) (*models.RetweetView, error) {
	rid, err := parseRetweetID(retweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	rt, err := s.loadRetweet(ctx, rid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canModifyRetweet(uid, rt)); err != nil {
		return nil, err
	}
	views, err := s.retweetViews(ctx, []*models.Retweet{rt})
	if err != nil {
		return nil, err
	}
	if err := s.unretweet(ctx, rt); err != nil {
		return nil, storeErr(err, msgRetweetNotFound)
	}
	return &views[0], nil
}

func (s *Service) GetRetweet(ctx context.Context, retweetID string) (*models.RetweetView, error) {
	rid, err := parseRetweetID(retweetID)
	if err != nil {
		return nil, err
	}
	rt, err := s.loadRetweet(ctx, rid)
	if err != nil {
		return nil, err
	}
	views, err := s.retweetViews(ctx, []*models.Retweet{rt})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListUserRetweets returns a user's retweets, newest first.
func (s *Service) ListUserRetweets(ctx context.Context, userID string) ([]models.RetweetView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	retweets, err := s.store.RetweetsByUser(ctx, uid)
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	return s.retweetViews(ctx, retweets)
}
