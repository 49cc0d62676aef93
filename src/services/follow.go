package services

import (
	"context"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgNotFollower = "This user does not follow you."

// link makes follower follow followee, or undoes it, as one unit of work.
// It returns the final state of both users.
func (s *Service) link(ctx context.Context, follower, followee primitive.ObjectID, follow bool) (*models.User, *models.User, error) {
	var a, b *models.User
	forward := func(u *models.User) error {
		if follow {
			u.AddFollowing(followee)
		} else {
			u.RemoveFollowing(followee)
		}
		a = u
		return nil
	}
	backward := func(u *models.User) error {
		if follow {
			u.RemoveFollowing(followee)
		} else {
			u.AddFollowing(followee)
		}
		return nil
	}

	err := store.Apply(ctx, s.store,
		store.UserMutation("actor.followings", follower, forward).
			WithUndo(store.UserMutation("actor.followings.undo", follower, backward)),
		store.UserMutation("target.followers", followee, func(u *models.User) error {
			if follow {
				u.AddFollower(follower)
			} else {
				u.RemoveFollower(follower)
			}
			b = u
			return nil
		}),
	)
	if err != nil {
		return nil, nil, storeErr(err, msgUserNotFound)
	}

	action, subject := "created", events.UserFollowed
	if !follow {
		action, subject = "removed", events.UserUnfollowed
	}
	metrics.IncRelationToggle("follow", action)
	s.publish(ctx, events.New(subject, follower.Hex()).WithTarget(followee.Hex()))
	return a, b, nil
}

// ToggleFollow follows the target, or unfollows it if the actor already
// follows it. Both users come back as compact projections.
func (s *Service) ToggleFollow(ctx context.Context, actorID, targetID string) (*models.FollowResult, error) {
	aid, err := parseUserID(actorID)
	if err != nil {
		return nil, err
	}
	tid, err := parseUserID(targetID)
	if err != nil {
		return nil, err
	}
	if aid == tid {
		return nil, lib.InvalidOperation("You cannot follow yourself.")
	}
	actor, err := s.loadUser(ctx, aid)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, tid); err != nil {
		return nil, err
	}

	follow := !actor.IsFollowing(tid)
	a, t, err := s.link(ctx, aid, tid, follow)
	if err != nil {
		return nil, err
	}
	return &models.FollowResult{Following: follow, Actor: a.Card(), Target: t.Card()}, nil
}

// RemoveFollower makes target stop following actor. When target is not a
// follower nothing changes and the result carries an explanatory message.
func (s *Service) RemoveFollower(ctx context.Context, actorID, targetID string) (*models.FollowResult, error) {
	aid, err := parseUserID(actorID)
	if err != nil {
		return nil, err
	}
	tid, err := parseUserID(targetID)
	if err != nil {
		return nil, err
	}
	if aid == tid {
		return nil, lib.InvalidOperation("You cannot do this with yourself.")
	}
	actor, err := s.loadUser(ctx, aid)
	if err != nil {
		return nil, err
	}
	target, err := s.loadUser(ctx, tid)
	if err != nil {
		return nil, err
	}
	if !actor.HasFollower(tid) {
		return &models.FollowResult{Actor: actor.Card(), Target: target.Card(), Message: msgNotFollower}, nil
	}

	t, a, err := s.link(ctx, tid, aid, false)
	if err != nil {
		return nil, err
	}
	return &models.FollowResult{Following: false, Actor: a.Card(), Target: t.Card()}, nil
}

func (s *Service) Followers(ctx context.Context, userID string) (*models.FollowList, error) {
	return s.followList(ctx, userID, func(u *models.User) []primitive.ObjectID { return u.Followers })
}

func (s *Service) Followings(ctx context.Context, userID string) (*models.FollowList, error) {
	return s.followList(ctx, userID, func(u *models.User) []primitive.ObjectID { return u.Followings })
}

func (s *Service) followList(ctx context.Context, userID string, pick func(*models.User) []primitive.ObjectID) (*models.FollowList, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	related, err := s.store.GetUsers(ctx, pick(u))
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	list := &models.FollowList{ID: u.Id, Count: len(pick(u)), Users: make([]models.UserCard, 0, len(related))}
	for _, r := range related {
		list.Users = append(list.Users, r.Card())
	}
	return list, nil
}
