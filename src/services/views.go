package services

import (
	"context"

	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type authors map[primitive.ObjectID]models.UserSummary

// summaries loads the display projection of every distinct user in ids.
// Missing users resolve to a bare summary carrying only the id.
func (s *Service) summaries(ctx context.Context, ids []primitive.ObjectID) (authors, error) {
	users, err := s.store.GetUsers(ctx, dedupe(ids))
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	out := make(authors, len(users))
	for _, u := range users {
		out[u.Id] = u.Summary()
	}
	return out, nil
}

func (a authors) of(id primitive.ObjectID) models.UserSummary {
	if s, ok := a[id]; ok {
		return s
	}
	return models.UserSummary{ID: id}
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) tweetViews(ctx context.Context, tweets []*models.Tweet) ([]models.TweetView, error) {
	ids := make([]primitive.ObjectID, 0, len(tweets))
	for _, t := range tweets {
		ids = append(ids, t.User)
	}
	who, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.TweetView, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, t.View(who.of(t.User)))
	}
	return out, nil
}

func (s *Service) tweetView(ctx context.Context, t *models.Tweet) (*models.TweetView, error) {
	views, err := s.tweetViews(ctx, []*models.Tweet{t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// tweetViewWithLikes populates the likers of a tweet.
func (s *Service) tweetViewWithLikes(ctx context.Context, t *models.Tweet) (*models.TweetView, error) {
	likes, err := s.store.GetLikes(ctx, t.TweetLikes)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	ids := []primitive.ObjectID{t.User}
	for _, l := range likes {
		ids = append(ids, l.User)
	}
	who, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	view := t.View(who.of(t.User))
	view.Likes = make([]models.LikeView, 0, len(likes))
	for _, l := range likes {
		view.Likes = append(view.Likes, models.LikeView{ID: l.Id, User: who.of(l.User)})
	}
	return &view, nil
}

func (s *Service) commentViews(ctx context.Context, comments []*models.TweetComment) ([]models.CommentView, error) {
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.User)
	}
	who, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.View(who.of(c.User)))
	}
	return out, nil
}

// retweetViews populates retweeters and original tweets with their authors.
// A retweet whose original is gone carries a nil tweet.
func (s *Service) retweetViews(ctx context.Context, retweets []*models.Retweet) ([]models.RetweetView, error) {
	tweetIDs := make([]primitive.ObjectID, 0, len(retweets))
	for _, r := range retweets {
		tweetIDs = append(tweetIDs, r.Tweet)
	}
	originals, err := s.store.GetTweets(ctx, dedupe(tweetIDs))
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	byID := make(map[primitive.ObjectID]*models.Tweet, len(originals))
	userIDs := make([]primitive.ObjectID, 0, len(retweets)+len(originals))
	for _, t := range originals {
		byID[t.Id] = t
		userIDs = append(userIDs, t.User)
	}
	for _, r := range retweets {
		userIDs = append(userIDs, r.User)
	}
	who, err := s.summaries(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.RetweetView, 0, len(retweets))
	for _, r := range retweets {
		var original *models.TweetView
		if t, ok := byID[r.Tweet]; ok {
			v := t.View(who.of(t.User))
			original = &v
		}
		out = append(out, r.View(who.of(r.User), original))
	}
	return out, nil
}
