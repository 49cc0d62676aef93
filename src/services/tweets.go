package services

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Upload is one image file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateTweet posts a tweet for the user. tags is a whitespace separated list.
func (s *Service) CreateTweet(ctx context.Context, userID, text, tags string) (*models.TweetView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateText("tweetText", text); err != nil {
		return nil, err
	}
	tagList, err := splitTags(tags)
	if err != nil {
		return nil, err
	}
	author, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	tweet := models.NewTweet(uid, text, tagList)
	if err := s.store.CreateTweet(ctx, tweet); err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	_, err = s.store.UpdateUser(ctx, uid, func(u *models.User) error {
		u.AddTweet(tweet.Id)
		return nil
	})
	if err != nil {
		if derr := s.store.DeleteTweet(context.WithoutCancel(ctx), tweet.Id); derr != nil {
			lib.Log.Warn("orphaned tweet left behind", zap.String("tweet", tweet.Id.Hex()), zap.Error(derr))
		}
		return nil, storeErr(err, msgUserNotFound)
	}

	view := tweet.View(author.Summary())
	return &view, nil
}

// EditTweet replaces the tweet text. Owner only.
func (s *Service) EditTweet(ctx context.Context, tweetID, userID, text string) (*models.TweetView, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateText("tweetText", text); err != nil {
		return nil, err
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canManageTweet(uid, tweet)); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateTweet(ctx, tid, func(t *models.Tweet) error {
		t.TweetText = text
		return nil
	})
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	return s.tweetView(ctx, updated)
}

// GetTweet returns a tweet with its author and comments.
func (s *Service) GetTweet(ctx context.Context, tweetID string) (*models.TweetView, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	view, err := s.tweetView(ctx, tweet)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.GetComments(ctx, tweet.TweetComments)
	if err != nil {
		return nil, storeErr(err, msgCommentNotFound)
	}
	view.Comments, err = s.commentViews(ctx, comments)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListUserTweets returns a user's tweets with the pinned one first, then newest first.
func (s *Service) ListUserTweets(ctx context.Context, userID string) ([]models.TweetView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	tweets, err := s.store.TweetsByUser(ctx, uid)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	sort.SliceStable(tweets, func(i, j int) bool {
		if tweets[i].IsPinned != tweets[j].IsPinned {
			return tweets[i].IsPinned
		}
		return tweets[i].CreationDate.After(tweets[j].CreationDate)
	})
	return s.tweetViews(ctx, tweets)
}

// Favorites returns the tweets the user liked, in the order they were liked.
func (s *Service) Favorites(ctx context.Context, userID string) ([]models.TweetView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.GetLikes(ctx, u.Favorites)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	ids := make([]primitive.ObjectID, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.Tweet)
	}
	tweets, err := s.store.GetTweets(ctx, ids)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	return s.tweetViews(ctx, tweets)
}

// UploadImages stores the files and attaches them to the tweet. Owner only.
func (s *Service) UploadImages(ctx context.Context, tweetID, userID string, files []Upload) (*models.TweetImages, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, lib.Validation("No images provided.")
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canManageTweet(uid, tweet)); err != nil {
		return nil, err
	}

	type stored struct{ url, key string }
	var uploaded []stored
	discard := func() {
		for _, u := range uploaded {
			if err := s.media.Delete(context.WithoutCancel(ctx), u.key); err != nil {
				lib.Log.Warn("orphaned image left behind", zap.String("key", u.key), zap.Error(err))
			}
		}
	}
	for _, f := range files {
		url, key, err := s.media.Upload(ctx, media.FolderTweetImages, uid.Hex(), f.Filename, f.ContentType, f.Body)
		if err != nil {
			discard()
			var appErr *lib.AppError
			if errors.As(err, &appErr) {
				return nil, err
			}
			return nil, lib.Wrap(lib.KindInternal, "Image upload failed.", err)
		}
		uploaded = append(uploaded, stored{url, key})
	}

	updated, err := s.store.UpdateTweet(ctx, tid, func(t *models.Tweet) error {
		for _, u := range uploaded {
			t.AddImage(u.url, u.key)
		}
		return nil
	})
	if err != nil {
		discard()
		return nil, storeErr(err, msgTweetNotFound)
	}
	return &models.TweetImages{ID: updated.Id, Images: updated.Images, ImagesIds: updated.ImagesIds}, nil
}

// DeleteImages removes the given images from storage and from the tweet.
// Keys not attached to the tweet are ignored.
func (s *Service) DeleteImages(ctx context.Context, tweetID, userID string, keys []string) (*models.TweetImages, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, lib.Validation("No images provided.")
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canManageTweet(uid, tweet)); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateTweet(ctx, tid, func(t *models.Tweet) error {
		for _, k := range keys {
			t.RemoveImage(k)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	for _, k := range keys {
		if !slices.Contains(tweet.ImagesIds, k) {
			continue
		}
		if err := s.media.Delete(ctx, k); err != nil {
			lib.Log.Warn("image delete failed", zap.String("tweet", tid.Hex()), zap.String("key", k), zap.Error(err))
		}
	}
	return &models.TweetImages{ID: updated.Id, Images: updated.Images, ImagesIds: updated.ImagesIds}, nil
}
