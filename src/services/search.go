package services

import (
	"context"
	"sort"
	"strings"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
)

const msgEmptyQuery = "Please enter your query!"

func queryTokens(query string) ([]string, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, lib.Validation(msgEmptyQuery)
	}
	return tokens, nil
}

// matchesAny reports whether any token is a case-insensitive substring of
// any field. tokens must already be lower-cased.
func matchesAny(tokens []string, fields ...string) bool {
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, t := range tokens {
			if strings.Contains(lf, t) {
				return true
			}
		}
	}
	return false
}

func lower(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.ToLower(t)
	}
	return out
}

// SearchUsers matches the query tokens against user name, first name and
// last name. Most followed users come first.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]models.UserCard, error) {
	tokens, err := queryTokens(query)
	if err != nil {
		return nil, err
	}
	tokens = lower(tokens)

	var matched []*models.User
	err = s.store.EachUser(ctx, func(u *models.User) error {
		if matchesAny(tokens, u.UserName, u.FirstName, u.LastName) {
			matched = append(matched, u)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	sortUsersByFollowers(matched)

	out := make([]models.UserCard, 0, len(matched))
	for _, u := range matched {
		out = append(out, u.Card())
	}
	return out, nil
}

// SearchTweets matches the query tokens against tweet text, newest first.
func (s *Service) SearchTweets(ctx context.Context, query string) ([]models.TweetView, error) {
	tokens, err := queryTokens(query)
	if err != nil {
		return nil, err
	}
	tokens = lower(tokens)
	return s.scanTweets(ctx, func(t *models.Tweet) bool { return matchesAny(tokens, t.TweetText) })
}

// SearchTags returns tweets carrying any of the query tokens as an exact tag.
func (s *Service) SearchTags(ctx context.Context, query string) ([]models.TweetView, error) {
	tokens, err := queryTokens(query)
	if err != nil {
		return nil, err
	}
	return s.scanTweets(ctx, func(t *models.Tweet) bool {
		for _, tok := range tokens {
			if t.HasTag(tok) {
				return true
			}
		}
		return false
	})
}

func (s *Service) scanTweets(ctx context.Context, match func(*models.Tweet) bool) ([]models.TweetView, error) {
	var matched []*models.Tweet
	err := s.store.EachTweet(ctx, func(t *models.Tweet) error {
		if match(t) {
			matched = append(matched, t)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreationDate.Equal(matched[j].CreationDate) {
			return matched[i].CreationDate.After(matched[j].CreationDate)
		}
		return matched[i].Id.Hex() > matched[j].Id.Hex()
	})
	return s.tweetViews(ctx, matched)
}
