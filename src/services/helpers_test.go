package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	svc    *Service
	store  *store.Memory
	media  *media.Memory
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  store.NewMemory(),
		media:  media.NewMemory(),
		events: &events.Recorder{},
	}
	f.svc = New(Deps{
		Store:  f.store,
		Media:  f.media,
		Events: f.events,
		Tokens: lib.NewTokenManager("test-secret", time.Hour),
		Hasher: lib.NewPasswordHasher(4),
	})
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := models.NewUser(name, name+"@example.com", "hash", name+"First", name+"Last")
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) tweet(t *testing.T, owner *models.User, text string, tags ...string) *models.Tweet {
	t.Helper()
	view, err := f.svc.CreateTweet(context.Background(), owner.Id.Hex(), text, strings.Join(tags, " "))
	if err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	tw, err := f.store.GetTweet(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("reload tweet: %v", err)
	}
	return tw
}

func (f *fixture) getUser(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := f.store.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("get user %s: %v", id.Hex(), err)
	}
	return u
}

func (f *fixture) getTweet(t *testing.T, id primitive.ObjectID) *models.Tweet {
	t.Helper()
	tw, err := f.store.GetTweet(context.Background(), id)
	if err != nil {
		t.Fatalf("get tweet %s: %v", id.Hex(), err)
	}
	return tw
}

// checkInvariants asserts counter mirroring, follow symmetry, pin
// agreement and the absence of dangling relation ids across the store.
func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	users := map[primitive.ObjectID]*models.User{}
	_ = f.store.EachUser(ctx, func(u *models.User) error {
		users[u.Id] = u
		return nil
	})
	tweets := map[primitive.ObjectID]*models.Tweet{}
	_ = f.store.EachTweet(ctx, func(tw *models.Tweet) error {
		tweets[tw.Id] = tw
		return nil
	})

	for _, u := range users {
		if !u.CountersConsistent() {
			t.Fatalf("user %s counters drifted: %+v", u.UserName, u)
		}
		for _, other := range u.Followings {
			if o, ok := users[other]; !ok || !o.HasFollower(u.Id) {
				t.Fatalf("follow symmetry broken: %s follows %s", u.Id.Hex(), other.Hex())
			}
		}
		for _, other := range u.Followers {
			if o, ok := users[other]; !ok || !o.IsFollowing(u.Id) {
				t.Fatalf("follow symmetry broken: %s followed by %s", u.Id.Hex(), other.Hex())
			}
		}
		if u.PinnedTweet != nil {
			tw, ok := tweets[*u.PinnedTweet]
			if !ok || !tw.IsPinned || tw.User != u.Id {
				t.Fatalf("user %s pins a tweet that is not pinned to them", u.UserName)
			}
		}
		likes, _ := f.store.GetLikes(ctx, u.Favorites)
		if len(likes) != len(u.Favorites) {
			t.Fatalf("user %s has dangling favorites", u.UserName)
		}
		retweets, _ := f.store.GetRetweets(ctx, u.Retweets)
		if len(retweets) != len(u.Retweets) {
			t.Fatalf("user %s has dangling retweets", u.UserName)
		}
		for _, id := range u.Tweets {
			if _, ok := tweets[id]; !ok {
				t.Fatalf("user %s has dangling tweet %s", u.UserName, id.Hex())
			}
		}
	}
	for _, tw := range tweets {
		if !tw.CountersConsistent() {
			t.Fatalf("tweet %s counters drifted: %+v", tw.Id.Hex(), tw)
		}
		if tw.IsPinned {
			if owner, ok := users[tw.User]; !ok || !owner.HasPinned(tw.Id) {
				t.Fatalf("tweet %s pinned but owner disagrees", tw.Id.Hex())
			}
		}
		likes, _ := f.store.GetLikes(ctx, tw.TweetLikes)
		comments, _ := f.store.GetComments(ctx, tw.TweetComments)
		retweets, _ := f.store.GetRetweets(ctx, tw.Retweets)
		if len(likes) != len(tw.TweetLikes) || len(comments) != len(tw.TweetComments) || len(retweets) != len(tw.Retweets) {
			t.Fatalf("tweet %s has dangling relation ids", tw.Id.Hex())
		}
	}
}

func expectKind(t *testing.T, err error, kind lib.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := lib.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
