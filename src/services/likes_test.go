package services

import (
	"context"
	"testing"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	tw := f.tweet(t, bob, "hello world")

	view, err := f.svc.ToggleLike(ctx, alice.Id.Hex(), tw.Id.Hex())
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if view.NumberOfLikes != 1 || len(view.Likes) != 1 || view.Likes[0].User.ID != alice.Id {
		t.Fatalf("unexpected liked view: %+v", view)
	}
	if got := f.getUser(t, alice.Id); len(got.Favorites) != 1 {
		t.Fatalf("expected one favorite, got %d", len(got.Favorites))
	}
	f.checkInvariants(t)

	view, err = f.svc.ToggleLike(ctx, alice.Id.Hex(), tw.Id.Hex())
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if view.NumberOfLikes != 0 || len(view.Likes) != 0 {
		t.Fatalf("expected no likes after second toggle: %+v", view)
	}
	if got := f.getUser(t, alice.Id); len(got.Favorites) != 0 {
		t.Fatalf("favorites not cleared: %v", got.Favorites)
	}
	if got := f.getTweet(t, tw.Id); len(got.TweetLikes) != 0 || got.NumberOfLikes != 0 {
		t.Fatalf("tweet likes not cleared: %+v", got)
	}
	if _, err := f.store.FindLike(ctx, alice.Id, tw.Id); err == nil {
		t.Fatalf("like document survived unlike")
	}
	f.checkInvariants(t)

	subjects := f.events.Subjects()
	if len(subjects) != 2 || subjects[0] != events.TweetLiked || subjects[1] != events.TweetUnliked {
		t.Fatalf("unexpected events: %v", subjects)
	}
}

func TestToggleLikeErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.svc.ToggleLike(ctx, alice.Id.Hex(), "not-an-id")
	expectKind(t, err, lib.KindInvalidID)

	_, err = f.svc.ToggleLike(ctx, alice.Id.Hex(), primitive.NewObjectID().Hex())
	expectKind(t, err, lib.KindNotFound)

	tw := f.tweet(t, alice, "mine")
	_, err = f.svc.ToggleLike(ctx, primitive.NewObjectID().Hex(), tw.Id.Hex())
	expectKind(t, err, lib.KindNotFound)
}

func TestManyUsersLikeOneTweet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner")
	tw := f.tweet(t, owner, "popular")

	names := []string{"ann", "ben", "cat", "dan"}
	for _, n := range names {
		u := f.user(t, n)
		if _, err := f.svc.ToggleLike(ctx, u.Id.Hex(), tw.Id.Hex()); err != nil {
			t.Fatalf("like by %s: %v", n, err)
		}
		f.checkInvariants(t)
	}
	if got := f.getTweet(t, tw.Id); got.NumberOfLikes != len(names) {
		t.Fatalf("expected %d likes, got %d", len(names), got.NumberOfLikes)
	}
}
