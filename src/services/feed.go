package services

import (
	"context"
	"errors"
	"sort"

	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type followedContent struct {
	tweets   []*models.Tweet
	retweets []*models.Retweet
}

// Feed returns every tweet and retweet authored by the users the given user
// follows, newest first. Following nobody yields an empty feed.
func (s *Service) Feed(ctx context.Context, userID string) ([]models.FeedItem, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(u.Followings) == 0 {
		metrics.ObserveFeedSize(0)
		return []models.FeedItem{}, nil
	}

	content := make([]followedContent, len(u.Followings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.feedConcurrency)
	for i, id := range u.Followings {
		g.Go(func() error {
			c, err := s.followedContent(gctx, id)
			if err != nil {
				return err
			}
			content[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}

	var tweets []*models.Tweet
	var retweets []*models.Retweet
	for _, c := range content {
		tweets = append(tweets, c.tweets...)
		retweets = append(retweets, c.retweets...)
	}
	tweetViews, err := s.tweetViews(ctx, tweets)
	if err != nil {
		return nil, err
	}
	retweetViews, err := s.retweetViews(ctx, retweets)
	if err != nil {
		return nil, err
	}

	feed := make([]models.FeedItem, 0, len(tweetViews)+len(retweetViews))
	for i := range tweetViews {
		feed = append(feed, models.FeedItem{Kind: models.FeedKindTweet, CreationDate: tweetViews[i].CreationDate, Tweet: &tweetViews[i]})
	}
	for i := range retweetViews {
		feed = append(feed, models.FeedItem{Kind: models.FeedKindRetweet, CreationDate: retweetViews[i].CreationDate, Retweet: &retweetViews[i]})
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].CreationDate.After(feed[j].CreationDate) })

	metrics.ObserveFeedSize(len(feed))
	return feed, nil
}

// followedContent loads one followed user's tweets and retweets. A followed
// user that no longer exists contributes nothing.
func (s *Service) followedContent(ctx context.Context, id primitive.ObjectID) (followedContent, error) {
	f, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return followedContent{}, nil
	}
	if err != nil {
		return followedContent{}, err
	}
	tweets, err := s.store.GetTweets(ctx, f.Tweets)
	if err != nil {
		return followedContent{}, err
	}
	retweets, err := s.store.GetRetweets(ctx, f.Retweets)
	if err != nil {
		return followedContent{}, err
	}
	return followedContent{tweets: tweets, retweets: retweets}, nil
}
