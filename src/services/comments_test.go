package services

import (
	"context"
	"strings"
	"testing"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTwoCommentsOnOneTweet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	tw := f.tweet(t, alice, "discuss")

	c1, err := f.svc.AddComment(ctx, bob.Id.Hex(), tw.Id.Hex(), "first")
	if err != nil {
		t.Fatalf("comment 1: %v", err)
	}
	c2, err := f.svc.AddComment(ctx, alice.Id.Hex(), tw.Id.Hex(), "second")
	if err != nil {
		t.Fatalf("comment 2: %v", err)
	}
	if c1.User.ID != bob.Id || c1.User.UserName != "bob" {
		t.Fatalf("comment author not populated: %+v", c1.User)
	}

	got := f.getTweet(t, tw.Id)
	if got.NumberOfComments != 2 || len(got.TweetComments) != 2 {
		t.Fatalf("expected 2 comments, got %d/%d", got.NumberOfComments, len(got.TweetComments))
	}
	want := map[primitive.ObjectID]bool{c1.ID: true, c2.ID: true}
	for _, id := range got.TweetComments {
		if !want[id] {
			t.Fatalf("unexpected comment id %s", id.Hex())
		}
		delete(want, id)
	}
	if len(want) != 0 {
		t.Fatalf("missing comments: %v", want)
	}

	list, err := f.svc.ListComments(ctx, tw.Id.Hex())
	if err != nil || len(list) != 2 {
		t.Fatalf("list comments: %d (%v)", len(list), err)
	}
	f.checkInvariants(t)
}

func TestCommentTextValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	tw := f.tweet(t, alice, "text")

	_, err := f.svc.AddComment(ctx, alice.Id.Hex(), tw.Id.Hex(), "")
	expectKind(t, err, lib.KindValidation)
	_, err = f.svc.AddComment(ctx, alice.Id.Hex(), tw.Id.Hex(), strings.Repeat("x", 323))
	expectKind(t, err, lib.KindValidation)
	if _, err := f.svc.AddComment(ctx, alice.Id.Hex(), tw.Id.Hex(), strings.Repeat("x", 322)); err != nil {
		t.Fatalf("322 chars must be accepted: %v", err)
	}
}

func TestCommentAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, commenter, stranger := f.user(t, "owner"), f.user(t, "commenter"), f.user(t, "stranger")
	tw := f.tweet(t, owner, "my tweet")

	c, err := f.svc.AddComment(ctx, commenter.Id.Hex(), tw.Id.Hex(), "nice")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	_, err = f.svc.EditComment(ctx, c.ID.Hex(), owner.Id.Hex(), "edited by owner")
	expectKind(t, err, lib.KindUnauthorized)
	_, err = f.svc.DeleteComment(ctx, c.ID.Hex(), stranger.Id.Hex())
	expectKind(t, err, lib.KindUnauthorized)

	edited, err := f.svc.EditComment(ctx, c.ID.Hex(), commenter.Id.Hex(), "nicer")
	if err != nil || edited.CommentText != "nicer" {
		t.Fatalf("edit by commenter: %+v (%v)", edited, err)
	}

	if _, err := f.svc.DeleteComment(ctx, c.ID.Hex(), owner.Id.Hex()); err != nil {
		t.Fatalf("tweet owner must be able to delete: %v", err)
	}
	got := f.getTweet(t, tw.Id)
	if got.NumberOfComments != 0 || len(got.TweetComments) != 0 {
		t.Fatalf("comment not detached: %+v", got)
	}
	_, err = f.svc.DeleteComment(ctx, c.ID.Hex(), commenter.Id.Hex())
	expectKind(t, err, lib.KindNotFound)
	f.checkInvariants(t)
}
