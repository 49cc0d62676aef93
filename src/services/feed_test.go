package services

import (
	"context"
	"testing"

	"github.com/theleywin/Backend-Twitter-Clone/src/models"
)

func TestFeedScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b, c := f.user(t, "aaron"), f.user(t, "betty"), f.user(t, "chris")
	x := f.tweet(t, c, "original x")

	feed, err := f.svc.Feed(ctx, a.Id.Hex())
	if err != nil {
		t.Fatalf("empty feed: %v", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Fatalf("expected empty non-nil feed, got %v", feed)
	}

	if _, err := f.svc.ToggleFollow(ctx, a.Id.Hex(), b.Id.Hex()); err != nil {
		t.Fatalf("follow: %v", err)
	}
	f.tweet(t, b, "hello")
	if _, err := f.svc.ToggleRetweet(ctx, b.Id.Hex(), x.Id.Hex(), ""); err != nil {
		t.Fatalf("retweet: %v", err)
	}

	feed, err = f.svc.Feed(ctx, a.Id.Hex())
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed items, got %d", len(feed))
	}
	kinds := map[string]bool{}
	for i, item := range feed {
		kinds[item.Kind] = true
		if i > 0 && feed[i-1].CreationDate.Before(item.CreationDate) {
			t.Fatalf("feed not ordered newest first")
		}
	}
	if !kinds[models.FeedKindTweet] || !kinds[models.FeedKindRetweet] {
		t.Fatalf("expected one tweet and one retweet, got %v", kinds)
	}
	for _, item := range feed {
		if item.Kind == models.FeedKindTweet && (item.Tweet.TweetText != "hello" || item.Tweet.User.ID != b.Id) {
			t.Fatalf("unexpected tweet item: %+v", item.Tweet)
		}
		if item.Kind == models.FeedKindRetweet && (item.Retweet.Tweet == nil || item.Retweet.Tweet.User.ID != c.Id) {
			t.Fatalf("retweet item missing original author: %+v", item.Retweet)
		}
	}
}

func TestFeedAcrossManyFollowings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reader := f.user(t, "reader")
	names := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	for _, n := range names {
		u := f.user(t, n)
		f.tweet(t, u, "post by "+n)
		if _, err := f.svc.ToggleFollow(ctx, reader.Id.Hex(), u.Id.Hex()); err != nil {
			t.Fatalf("follow: %v", err)
		}
	}
	feed, err := f.svc.Feed(ctx, reader.Id.Hex())
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(feed))
	}
}
