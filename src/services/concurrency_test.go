package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const parallelActors = 24

func (f *fixture) users(t *testing.T, prefix string, n int) []*models.User {
	t.Helper()
	out := make([]*models.User, n)
	for i := range out {
		out[i] = f.user(t, fmt.Sprintf("%s%02d", prefix, i))
	}
	return out
}

// runParallel starts fn for every index at once and collects the errors.
func runParallel(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func TestParallelLikesOnOneTweet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SetRetries(100)
	owner := f.user(t, "owner")
	tw := f.tweet(t, owner, "popular")
	likers := f.users(t, "liker", parallelActors)

	errs := runParallel(len(likers), func(i int) error {
		_, err := f.svc.ToggleLike(ctx, likers[i].Id.Hex(), tw.Id.Hex())
		return err
	})
	for i, err := range errs {
		if err != nil {
			t.Fatalf("liker %d: %v", i, err)
		}
	}

	got := f.getTweet(t, tw.Id)
	if got.NumberOfLikes != parallelActors || len(got.TweetLikes) != parallelActors {
		t.Fatalf("expected %d likes, got counter %d array %d", parallelActors, got.NumberOfLikes, len(got.TweetLikes))
	}
	likes, err := f.store.LikesByTweet(ctx, tw.Id)
	if err != nil || len(likes) != parallelActors {
		t.Fatalf("expected %d like documents, got %d (%v)", parallelActors, len(likes), err)
	}
	f.checkInvariants(t)
}

func TestParallelFollowsOfOneUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SetRetries(100)
	star := f.user(t, "star")
	fans := f.users(t, "fan", parallelActors)

	errs := runParallel(len(fans), func(i int) error {
		_, err := f.svc.ToggleFollow(ctx, fans[i].Id.Hex(), star.Id.Hex())
		return err
	})
	for i, err := range errs {
		if err != nil {
			t.Fatalf("fan %d: %v", i, err)
		}
	}

	got := f.getUser(t, star.Id)
	if got.NumberOfFollowers != parallelActors || len(got.Followers) != parallelActors {
		t.Fatalf("expected %d followers, got counter %d array %d", parallelActors, got.NumberOfFollowers, len(got.Followers))
	}
	f.checkInvariants(t)
}

// Simultaneous likes by one user all observe no existing like. The unique
// (user, tweet) pair lets exactly one insert win; the others surface a
// conflict without touching any mirror.
func TestParallelDoubleLikeBySameUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.SetRetries(100)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	tw := f.tweet(t, owner, "contested")

	errs := runParallel(8, func(int) error {
		return f.svc.like(ctx, fan.Id, tw.Id)
	})
	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrDuplicate):
			expectKind(t, storeErr(err, msgTweetNotFound), lib.KindConflict)
		default:
			t.Fatalf("expected success or duplicate, got %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning like, got %d", won)
	}

	likes, err := f.store.LikesByTweet(ctx, tw.Id)
	if err != nil || len(likes) != 1 {
		t.Fatalf("expected one like document, got %d (%v)", len(likes), err)
	}
	got := f.getTweet(t, tw.Id)
	if got.NumberOfLikes != 1 || len(got.TweetLikes) != 1 || got.TweetLikes[0] != likes[0].Id {
		t.Fatalf("tweet mirrors disagree with the like document: %+v", got)
	}
	if u := f.getUser(t, fan.Id); len(u.Favorites) != 1 || u.Favorites[0] != likes[0].Id {
		t.Fatalf("favorites disagree with the like document: %+v", u.Favorites)
	}
	f.checkInvariants(t)
}

func TestLosingLikeInsertIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	tw := f.tweet(t, owner, "contested")

	winner := &models.TweetLike{Id: primitive.NewObjectID(), User: fan.Id, Tweet: tw.Id, CreationDate: time.Now()}
	if err := f.store.CreateLike(ctx, winner); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	err := f.svc.like(ctx, fan.Id, tw.Id)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate from the store, got %v", err)
	}
	expectKind(t, storeErr(err, msgTweetNotFound), lib.KindConflict)
	expectKind(t, storeErr(store.ErrVersionConflict, msgTweetNotFound), lib.KindConflict)

	if got := f.getTweet(t, tw.Id); len(got.TweetLikes) != 0 || got.NumberOfLikes != 0 {
		t.Fatalf("losing insert touched the tweet: %+v", got)
	}
	if got := f.getUser(t, fan.Id); len(got.Favorites) != 0 {
		t.Fatalf("losing insert touched favorites: %+v", got.Favorites)
	}
}

// failingUsers fails UpdateUser for one user id and passes everything else
// through to the wrapped store.
type failingUsers struct {
	store.Store
	failFor primitive.ObjectID
	err     error
}

func (s *failingUsers) UpdateUser(ctx context.Context, id primitive.ObjectID, fn func(*models.User) error) (*models.User, error) {
	if id == s.failFor {
		return nil, s.err
	}
	return s.Store.UpdateUser(ctx, id, fn)
}

func TestLikeRollsBackWhenFavoritesFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner, fan := f.user(t, "owner"), f.user(t, "fan")
	tw := f.tweet(t, owner, "fragile")

	injected := errors.New("users collection unavailable")
	f.svc.store = &failingUsers{Store: f.store, failFor: fan.Id, err: injected}

	_, err := f.svc.ToggleLike(ctx, fan.Id.Hex(), tw.Id.Hex())
	if !errors.Is(err, injected) {
		t.Fatalf("expected the injected failure, got %v", err)
	}
	var stepErr *store.StepError
	if !errors.As(err, &stepErr) || !stepErr.RolledBack {
		t.Fatalf("expected a rolled back step error, got %v", err)
	}

	got := f.getTweet(t, tw.Id)
	if len(got.TweetLikes) != 0 || got.NumberOfLikes != 0 {
		t.Fatalf("tweetLikes not rolled back: %+v", got)
	}
	if _, err := f.store.FindLike(ctx, fan.Id, tw.Id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected the like document to be removed, got %v", err)
	}
	f.checkInvariants(t)
}

func TestFollowRollsBackWhenTargetFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fan, star := f.user(t, "fan"), f.user(t, "star")

	injected := errors.New("users collection unavailable")
	f.svc.store = &failingUsers{Store: f.store, failFor: star.Id, err: injected}

	_, err := f.svc.ToggleFollow(ctx, fan.Id.Hex(), star.Id.Hex())
	if !errors.Is(err, injected) {
		t.Fatalf("expected the injected failure, got %v", err)
	}

	if got := f.getUser(t, fan.Id); len(got.Followings) != 0 || got.NumberOfFollowings != 0 {
		t.Fatalf("followings not rolled back: %+v", got)
	}
	if got := f.getUser(t, star.Id); len(got.Followers) != 0 {
		t.Fatalf("followers changed: %+v", got)
	}
	f.checkInvariants(t)
}
