package services

import (
	"context"

	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
)

// TogglePin pins the tweet on its owner's profile, or unpins it if it is
// already pinned. A previously pinned tweet is unpinned first.
func (s *Service) TogglePin(ctx context.Context, userID, tweetID string) (*models.PinState, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canManageTweet(uid, tweet)); err != nil {
		return nil, err
	}
	owner, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	pin := !(tweet.IsPinned || owner.HasPinned(tid))
	var mutations []store.Mutation
	if pin && owner.PinnedTweet != nil && *owner.PinnedTweet != tid {
		prev := *owner.PinnedTweet
		mutations = append(mutations, store.Step("previous.isPinned", func(ctx context.Context, st store.Store) error {
			_, err := st.UpdateTweet(ctx, prev, func(t *models.Tweet) error {
				t.IsPinned = false
				return nil
			})
			return ignoreMissing(err)
		}).WithUndo(store.Step("previous.isPinned.undo", func(ctx context.Context, st store.Store) error {
			_, err := st.UpdateTweet(ctx, prev, func(t *models.Tweet) error {
				t.IsPinned = true
				return nil
			})
			return ignoreMissing(err)
		})))
	}
	mutations = append(mutations,
		store.TweetMutation("tweet.isPinned", tid, func(t *models.Tweet) error {
			t.IsPinned = pin
			return nil
		}).WithUndo(store.TweetMutation("tweet.isPinned.undo", tid, func(t *models.Tweet) error {
			t.IsPinned = !pin
			return nil
		})),
		store.UserMutation("user.pinnedTweet", uid, func(u *models.User) error {
			if pin {
				u.Pin(tid)
			} else if u.HasPinned(tid) {
				u.Unpin()
			}
			return nil
		}),
	)
	if err := store.Apply(ctx, s.store, mutations...); err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}

	if pin {
		metrics.IncRelationToggle("pin", "created")
	} else {
		metrics.IncRelationToggle("pin", "removed")
	}
	return &models.PinState{ID: tid, IsPinned: pin}, nil
}
