// Package services holds the social graph engine: relation toggles, cascade
// deletes, feed aggregation and search, on top of a store.Store.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserNotFound    = "User was not found."
	msgTweetNotFound   = "Tweet was not found."
	msgCommentNotFound = "Comment was not found."
	msgRetweetNotFound = "Retweet was not found."
	msgNoPermission    = "You have no permission to do this."
)

type Deps struct {
	Store  store.Store
	Media  media.Store
	Events events.Publisher
	Tokens *lib.TokenManager
	Hasher lib.PasswordHasher
	// FeedConcurrency bounds parallel per-following fetches.
	FeedConcurrency int
}

type Service struct {
	store           store.Store
	media           media.Store
	events          events.Publisher
	tokens          *lib.TokenManager
	hasher          lib.PasswordHasher
	feedConcurrency int
}

func New(d Deps) *Service {
	s := &Service{
		store:           d.Store,
		media:           d.Media,
		events:          d.Events,
		tokens:          d.Tokens,
		hasher:          d.Hasher,
		feedConcurrency: d.FeedConcurrency,
	}
	if s.media == nil {
		s.media = media.Disabled{}
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.feedConcurrency <= 0 {
		s.feedConcurrency = 8
	}
	return s
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	s.events.Publish(ctx, e)
}

// storeErr translates storage failures into the API error taxonomy.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return lib.NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return lib.Wrap(lib.KindConflict, "The relation already exists.", err)
	case errors.Is(err, store.ErrVersionConflict):
		return lib.Wrap(lib.KindConflict, "The resource was modified concurrently, please retry.", err)
	}
	var appErr *lib.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("store: %w", err)
}

func ignoreMissing(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) loadUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	return u, nil
}

func (s *Service) loadTweet(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	t, err := s.store.GetTweet(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	return t, nil
}

func parseUserID(hex string) (primitive.ObjectID, error)  { return lib.ParseID(hex, "user") }
func parseTweetID(hex string) (primitive.ObjectID, error) { return lib.ParseID(hex, "tweet") }
