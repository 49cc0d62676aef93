package services

import (
	"context"
	"errors"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func parseCommentID(hex string) (primitive.ObjectID, error) { return lib.ParseID(hex, "comment") }

func (s *Service) loadComment(ctx context.Context, id primitive.ObjectID) (*models.TweetComment, error) {
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, storeErr(err, msgCommentNotFound)
	}
	return c, nil
}

// AddComment attaches a new comment to the tweet and returns it with its author.
func (s *Service) AddComment(ctx context.Context, userID, tweetID, text string) (*models.CommentView, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	if err := validateText("commentText", text); err != nil {
		return nil, err
	}
	author, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadTweet(ctx, tid); err != nil {
		return nil, err
	}

	comment := &models.TweetComment{
		Id:           primitive.NewObjectID(),
		User:         uid,
		Tweet:        tid,
		CommentText:  text,
		CreationDate: time.Now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	_, err = s.store.UpdateTweet(ctx, tid, func(t *models.Tweet) error {
		t.AddComment(comment.Id)
		return nil
	})
	if err != nil {
		if derr := s.store.DeleteComment(context.WithoutCancel(ctx), comment.Id); derr != nil {
			lib.Log.Warn("orphaned comment left behind", zap.String("comment", comment.Id.Hex()), zap.Error(derr))
		}
		return nil, storeErr(err, msgTweetNotFound)
	}

	metrics.IncRelationToggle("comment", "created")
	s.publish(ctx, events.New(events.TweetCommented, uid.Hex()).WithTweet(tid.Hex()).
		WithPayload(map[string]string{"commentId": comment.Id.Hex()}))

	view := comment.View(author.Summary())
	return &view, nil
}

// EditComment replaces the comment text. Only the commenter may edit.
func (s *Service) EditComment(ctx context.Context, commentID, userID, text string) (*models.CommentView, error) {
	cid, err := parseCommentID(commentID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateText("commentText", text); err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, cid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canEditComment(uid, comment)); err != nil {
		return nil, err
	}

	updated, err := s.store.SetCommentText(ctx, cid, text)
	if err != nil {
		return nil, storeErr(err, msgCommentNotFound)
	}
	views, err := s.commentViews(ctx, []*models.TweetComment{updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteComment removes the comment and its entry on the parent tweet.
// The commenter and the tweet owner may both delete.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID string) (*models.CommentView, error) {
	cid, err := parseCommentID(commentID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, cid)
	if err != nil {
		return nil, err
	}
	parent, err := s.store.GetTweet(ctx, comment.Tweet)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err, msgTweetNotFound)
	}
	if err := authorize(canDeleteComment(uid, comment, parent)); err != nil {
		return nil, err
	}

	var mutations []store.Mutation
	if parent != nil {
		mutations = append(mutations, store.TweetMutation("tweet.tweetComments", parent.Id, func(t *models.Tweet) error {
			t.RemoveComment(cid)
			return nil
		}).WithUndo(store.TweetMutation("tweet.tweetComments.undo", parent.Id, func(t *models.Tweet) error {
			t.AddComment(cid)
			return nil
		})))
	}
	mutations = append(mutations, store.Step("tweetcomment.delete", func(ctx context.Context, st store.Store) error {
		return ignoreMissing(st.DeleteComment(ctx, cid))
	}))
	if err := store.Apply(ctx, s.store, mutations...); err != nil {
		return nil, storeErr(err, msgCommentNotFound)
	}
	metrics.IncRelationToggle("comment", "removed")

	views, err := s.commentViews(ctx, []*models.TweetComment{comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListComments returns the comments of a tweet, oldest first.
func (s *Service) ListComments(ctx context.Context, tweetID string) ([]models.CommentView, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadTweet(ctx, tid); err != nil {
		return nil, err
	}
	comments, err := s.store.CommentsByTweet(ctx, tid)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	return s.commentViews(ctx, comments)
}
