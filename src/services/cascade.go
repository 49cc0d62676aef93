package services

import (
	"context"
	"fmt"

	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/metrics"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Cascade step kinds.
const (
	stepUnfavorite     = "unfavorite"
	stepUnretweet      = "unretweet"
	stepDeleteComments = "delete_comments"
	stepDeleteLikes    = "delete_likes"
	stepDeleteRetweets = "delete_retweets"
	stepOwnerTweets    = "owner_tweets"
	stepOwnerPin       = "owner_pin"
	stepDeleteImage    = "delete_image"
	stepDeleteTweet    = "delete_tweet"
	stepDetachLike     = "detach_like"
	stepDetachRetweet  = "detach_retweet"
	stepDetachComment  = "detach_comment"
	stepUnfollow       = "unfollow"
	stepDropFollower   = "drop_follower"
	stepDeleteUser     = "delete_user"
	stepDeleteAvatar   = "delete_avatar"
)

// StepResult is the outcome of one cleanup unit.
type StepResult struct {
	Step   string `json:"step"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CascadeReport collects every step of a cascade delete.
type CascadeReport struct {
	Kind   string       `json:"kind"`
	RootID string       `json:"rootId"`
	Steps  []StepResult `json:"steps"`
	Failed int          `json:"failed"`
}

func (r *CascadeReport) OK() bool { return r.Failed == 0 }

type planStep struct {
	kind   string
	target string
	run    func(ctx context.Context) error
}

// deletePlan is an ordered list of independent cleanup steps. A failing
// step is recorded and the plan moves on.
type deletePlan struct {
	kind   string
	rootID string
	steps  []planStep
}

func (p *deletePlan) add(kind string, target primitive.ObjectID, run func(ctx context.Context) error) {
	t := ""
	if !target.IsZero() {
		t = target.Hex()
	}
	p.steps = append(p.steps, planStep{kind: kind, target: t, run: run})
}

func (p *deletePlan) addKey(kind, target string, run func(ctx context.Context) error) {
	p.steps = append(p.steps, planStep{kind: kind, target: target, run: run})
}

func (p *deletePlan) execute(ctx context.Context, report *CascadeReport) {
	for _, st := range p.steps {
		err := st.run(ctx)
		metrics.ObserveCascadeStep(p.kind, st.kind, err)
		res := StepResult{Step: st.kind, Target: st.target}
		if err != nil {
			res.Error = err.Error()
			report.Failed++
			lib.Log.Warn("cascade step failed",
				zap.String("cascade", p.kind),
				zap.String("root", p.rootID),
				zap.String("step", st.kind),
				zap.String("target", st.target),
				zap.Error(err),
			)
		}
		report.Steps = append(report.Steps, res)
	}
}

func (s *Service) report(ctx context.Context, actor string, r *CascadeReport) {
	lib.Log.Info("cascade finished",
		zap.String("cascade", r.Kind),
		zap.String("root", r.RootID),
		zap.Int("steps", len(r.Steps)),
		zap.Int("failed", r.Failed),
	)
	s.publish(ctx, events.New(events.CascadeReported, actor).WithPayload(r))
}

// DeleteTweetCascade deletes a tweet owned by the user together with every
// comment, like and retweet of it and every reference users hold to them.
// Failing to load or authorize the tweet aborts before any write; cleanup
// failures after that are reported, not returned.
func (s *Service) DeleteTweetCascade(ctx context.Context, tweetID, userID string) (*CascadeReport, error) {
	tid, err := parseTweetID(tweetID)
	if err != nil {
		return nil, err
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	tweet, err := s.loadTweet(ctx, tid)
	if err != nil {
		return nil, err
	}
	if err := authorize(canManageTweet(uid, tweet)); err != nil {
		return nil, err
	}

	report := &CascadeReport{Kind: "tweet", RootID: tid.Hex()}
	if err := s.deleteTweet(ctx, tweet, report); err != nil {
		return report, err
	}
	s.report(ctx, uid.Hex(), report)
	s.publish(ctx, events.New(events.TweetDeleted, uid.Hex()).WithTweet(tid.Hex()))
	return report, nil
}

// deleteTweet runs the tweet delete plan. Only the final removal of the
// tweet document itself fails the call.
func (s *Service) deleteTweet(ctx context.Context, tweet *models.Tweet, report *CascadeReport) error {
	likes, retweets, comments := s.collectRelations(ctx, tweet, report)

	plan := &deletePlan{kind: "tweet", rootID: tweet.Id.Hex()}
	for _, l := range likes {
		like := l
		plan.add(stepUnfavorite, like.User, func(ctx context.Context) error {
			_, err := s.store.UpdateUser(ctx, like.User, func(u *models.User) error {
				u.RemoveFavorite(like.Id)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	for _, r := range retweets {
		rt := r
		plan.add(stepUnretweet, rt.User, func(ctx context.Context) error {
			_, err := s.store.UpdateUser(ctx, rt.User, func(u *models.User) error {
				u.RemoveRetweet(rt.Id)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	plan.add(stepDeleteComments, tweet.Id, func(ctx context.Context) error {
		_, err := s.store.DeleteComments(ctx, comments)
		return err
	})
	plan.add(stepDeleteLikes, tweet.Id, func(ctx context.Context) error {
		_, err := s.store.DeleteLikes(ctx, idsOf(likes, func(l *models.TweetLike) primitive.ObjectID { return l.Id }))
		return err
	})
	plan.add(stepDeleteRetweets, tweet.Id, func(ctx context.Context) error {
		_, err := s.store.DeleteRetweets(ctx, idsOf(retweets, func(r *models.Retweet) primitive.ObjectID { return r.Id }))
		return err
	})
	plan.add(stepOwnerTweets, tweet.User, func(ctx context.Context) error {
		_, err := s.store.UpdateUser(ctx, tweet.User, func(u *models.User) error {
			u.RemoveTweet(tweet.Id)
			return nil
		})
		return ignoreMissing(err)
	})
	plan.add(stepOwnerPin, tweet.User, func(ctx context.Context) error {
		_, err := s.store.UpdateUser(ctx, tweet.User, func(u *models.User) error {
			if u.HasPinned(tweet.Id) {
				u.Unpin()
			}
			return nil
		})
		return ignoreMissing(err)
	})
	for _, key := range tweet.ImagesIds {
		k := key
		plan.addKey(stepDeleteImage, k, func(ctx context.Context) error {
			return s.media.Delete(ctx, k)
		})
	}
	plan.execute(ctx, report)

	err := ignoreMissing(s.store.DeleteTweet(ctx, tweet.Id))
	metrics.ObserveCascadeStep("tweet", stepDeleteTweet, err)
	res := StepResult{Step: stepDeleteTweet, Target: tweet.Id.Hex()}
	if err != nil {
		res.Error = err.Error()
		report.Failed++
	}
	report.Steps = append(report.Steps, res)
	if err != nil {
		return fmt.Errorf("delete tweet %s: %w", tweet.Id.Hex(), err)
	}
	return nil
}

// collectRelations gathers relation documents from both the tweet's id
// arrays and reverse lookups, so strays left by earlier partial writes are
// cleaned too.
func (s *Service) collectRelations(ctx context.Context, tweet *models.Tweet, report *CascadeReport) ([]*models.TweetLike, []*models.Retweet, []primitive.ObjectID) {
	note := func(step string, err error) {
		if err == nil {
			return
		}
		report.Failed++
		report.Steps = append(report.Steps, StepResult{Step: step, Target: tweet.Id.Hex(), Error: err.Error()})
		lib.Log.Warn("cascade lookup failed", zap.String("tweet", tweet.Id.Hex()), zap.String("step", step), zap.Error(err))
	}

	likes, err := s.store.GetLikes(ctx, tweet.TweetLikes)
	note("load_likes", err)
	byTweet, err := s.store.LikesByTweet(ctx, tweet.Id)
	note("load_likes", err)
	likes = mergeByID(likes, byTweet, func(l *models.TweetLike) primitive.ObjectID { return l.Id })

	retweets, err := s.store.GetRetweets(ctx, tweet.Retweets)
	note("load_retweets", err)
	rtByTweet, err := s.store.RetweetsByTweet(ctx, tweet.Id)
	note("load_retweets", err)
	retweets = mergeByID(retweets, rtByTweet, func(r *models.Retweet) primitive.ObjectID { return r.Id })

	comments := append([]primitive.ObjectID{}, tweet.TweetComments...)
	byTweetComments, err := s.store.CommentsByTweet(ctx, tweet.Id)
	note("load_comments", err)
	for _, c := range byTweetComments {
		comments = append(comments, c.Id)
	}
	return likes, retweets, dedupe(comments)
}

func mergeByID[T any](a, b []*T, key func(*T) primitive.ObjectID) []*T {
	seen := make(map[primitive.ObjectID]struct{}, len(a)+len(b))
	out := make([]*T, 0, len(a)+len(b))
	for _, list := range [][]*T{a, b} {
		for _, d := range list {
			if _, ok := seen[key(d)]; ok {
				continue
			}
			seen[key(d)] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

func idsOf[T any](docs []*T, key func(*T) primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		out = append(out, key(d))
	}
	return out
}

// DeleteUserCascade deletes the user, every tweet they own (through the
// tweet cascade), their likes, retweets and comments on other tweets and
// every follow edge pointing at them.
func (s *Service) DeleteUserCascade(ctx context.Context, userID string) (*CascadeReport, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	report := &CascadeReport{Kind: "user", RootID: uid.Hex()}

	owned, err := s.store.GetTweets(ctx, u.Tweets)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	byUser, err := s.store.TweetsByUser(ctx, uid)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	for _, t := range mergeByID(owned, byUser, func(t *models.Tweet) primitive.ObjectID { return t.Id }) {
		if err := s.deleteTweet(ctx, t, report); err != nil {
			lib.Log.Warn("owned tweet not deleted", zap.String("user", uid.Hex()), zap.String("tweet", t.Id.Hex()), zap.Error(err))
		}
	}

	plan := &deletePlan{kind: "user", rootID: uid.Hex()}
	likes, err := s.store.LikesByUser(ctx, uid)
	if err != nil {
		return report, storeErr(err, msgUserNotFound)
	}
	for _, l := range likes {
		like := l
		plan.add(stepDetachLike, like.Tweet, func(ctx context.Context) error {
			_, err := s.store.UpdateTweet(ctx, like.Tweet, func(t *models.Tweet) error {
				t.RemoveLike(like.Id)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	plan.add(stepDeleteLikes, uid, func(ctx context.Context) error {
		_, err := s.store.DeleteLikes(ctx, idsOf(likes, func(l *models.TweetLike) primitive.ObjectID { return l.Id }))
		return err
	})

	retweets, err := s.store.RetweetsByUser(ctx, uid)
	if err != nil {
		return report, storeErr(err, msgUserNotFound)
	}
	for _, r := range retweets {
		rt := r
		plan.add(stepDetachRetweet, rt.Tweet, func(ctx context.Context) error {
			_, err := s.store.UpdateTweet(ctx, rt.Tweet, func(t *models.Tweet) error {
				t.RemoveRetweet(rt.Id)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	plan.add(stepDeleteRetweets, uid, func(ctx context.Context) error {
		_, err := s.store.DeleteRetweets(ctx, idsOf(retweets, func(r *models.Retweet) primitive.ObjectID { return r.Id }))
		return err
	})

	comments, err := s.store.CommentsByUser(ctx, uid)
	if err != nil {
		return report, storeErr(err, msgUserNotFound)
	}
	for _, c := range comments {
		comment := c
		plan.add(stepDetachComment, comment.Tweet, func(ctx context.Context) error {
			_, err := s.store.UpdateTweet(ctx, comment.Tweet, func(t *models.Tweet) error {
				t.RemoveComment(comment.Id)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	plan.add(stepDeleteComments, uid, func(ctx context.Context) error {
		_, err := s.store.DeleteComments(ctx, idsOf(comments, func(c *models.TweetComment) primitive.ObjectID { return c.Id }))
		return err
	})

	for _, id := range u.Followers {
		follower := id
		plan.add(stepUnfollow, follower, func(ctx context.Context) error {
			_, err := s.store.UpdateUser(ctx, follower, func(f *models.User) error {
				f.RemoveFollowing(uid)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	for _, id := range u.Followings {
		followee := id
		plan.add(stepDropFollower, followee, func(ctx context.Context) error {
			_, err := s.store.UpdateUser(ctx, followee, func(f *models.User) error {
				f.RemoveFollower(uid)
				return nil
			})
			return ignoreMissing(err)
		})
	}
	if u.ProfilePhotoId != "" {
		key := u.ProfilePhotoId
		plan.addKey(stepDeleteAvatar, key, func(ctx context.Context) error {
			return s.media.Delete(ctx, key)
		})
	}
	plan.execute(ctx, report)

	err = s.store.DeleteUser(ctx, uid)
	metrics.ObserveCascadeStep("user", stepDeleteUser, err)
	res := StepResult{Step: stepDeleteUser, Target: uid.Hex()}
	if err != nil {
		res.Error = err.Error()
		report.Failed++
		report.Steps = append(report.Steps, res)
		return report, storeErr(err, msgUserNotFound)
	}
	report.Steps = append(report.Steps, res)

	s.report(ctx, uid.Hex(), report)
	s.publish(ctx, events.New(events.UserDeleted, uid.Hex()))
	return report, nil
}
