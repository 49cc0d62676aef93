package services

import (
	"context"
	"testing"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
)

func TestToggleFollowSymmetry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	res, err := f.svc.ToggleFollow(ctx, alice.Id.Hex(), bob.Id.Hex())
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !res.Following || res.Actor.NumberOfFollowings != 1 || res.Target.NumberOfFollowers != 1 {
		t.Fatalf("unexpected follow result: %+v", res)
	}
	if !f.getUser(t, alice.Id).IsFollowing(bob.Id) || !f.getUser(t, bob.Id).HasFollower(alice.Id) {
		t.Fatalf("follow not mirrored")
	}
	f.checkInvariants(t)

	res, err = f.svc.ToggleFollow(ctx, alice.Id.Hex(), bob.Id.Hex())
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if res.Following || res.Actor.NumberOfFollowings != 0 || res.Target.NumberOfFollowers != 0 {
		t.Fatalf("unexpected unfollow result: %+v", res)
	}
	f.checkInvariants(t)
}

func TestFollowYourselfIsRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	_, err := f.svc.ToggleFollow(context.Background(), alice.Id.Hex(), alice.Id.Hex())
	expectKind(t, err, lib.KindInvalidOperation)
}

func TestRemoveFollower(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	res, err := f.svc.RemoveFollower(ctx, alice.Id.Hex(), bob.Id.Hex())
	if err != nil {
		t.Fatalf("remove non-follower: %v", err)
	}
	if res.Message != msgNotFollower {
		t.Fatalf("expected no-op message, got %+v", res)
	}

	if _, err := f.svc.ToggleFollow(ctx, bob.Id.Hex(), alice.Id.Hex()); err != nil {
		t.Fatalf("bob follows alice: %v", err)
	}
	res, err = f.svc.RemoveFollower(ctx, alice.Id.Hex(), bob.Id.Hex())
	if err != nil {
		t.Fatalf("remove follower: %v", err)
	}
	if res.Message != "" || res.Actor.ID != alice.Id || res.Actor.NumberOfFollowers != 0 {
		t.Fatalf("unexpected remove result: %+v", res)
	}
	if f.getUser(t, bob.Id).IsFollowing(alice.Id) {
		t.Fatalf("bob still follows alice")
	}
	f.checkInvariants(t)
}

func TestFollowLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	for _, u := range []string{bob.Id.Hex(), carol.Id.Hex()} {
		if _, err := f.svc.ToggleFollow(ctx, u, alice.Id.Hex()); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}
	followers, err := f.svc.Followers(ctx, alice.Id.Hex())
	if err != nil || followers.Count != 2 || len(followers.Users) != 2 {
		t.Fatalf("followers: %+v (%v)", followers, err)
	}
	followings, err := f.svc.Followings(ctx, bob.Id.Hex())
	if err != nil || followings.Count != 1 || followings.Users[0].ID != alice.Id {
		t.Fatalf("followings: %+v (%v)", followings, err)
	}
}
