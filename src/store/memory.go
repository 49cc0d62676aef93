package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store with the same uniqueness and versioning
// rules as Mongo. It backs tests and local runs without a database.
type Memory struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]*models.User
	tweets   map[primitive.ObjectID]*models.Tweet
	likes    map[primitive.ObjectID]models.TweetLike
	comments map[primitive.ObjectID]models.TweetComment
	retweets map[primitive.ObjectID]models.Retweet
	retries  int
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[primitive.ObjectID]*models.User),
		tweets:   make(map[primitive.ObjectID]*models.Tweet),
		likes:    make(map[primitive.ObjectID]models.TweetLike),
		comments: make(map[primitive.ObjectID]models.TweetComment),
		retweets: make(map[primitive.ObjectID]models.Retweet),
		retries:  DefaultRetries,
	}
}

// SetRetries changes the optimistic-concurrency retry budget per write.
func (m *Memory) SetRetries(n int) {
	m.mu.Lock()
	m.retries = n
	m.mu.Unlock()
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID{}, ids...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Tweets = cloneIDs(u.Tweets)
	c.Retweets = cloneIDs(u.Retweets)
	c.Favorites = cloneIDs(u.Favorites)
	c.Followers = cloneIDs(u.Followers)
	c.Followings = cloneIDs(u.Followings)
	if u.PinnedTweet != nil {
		id := *u.PinnedTweet
		c.PinnedTweet = &id
	}
	if u.DOB != nil {
		dob := *u.DOB
		c.DOB = &dob
	}
	return &c
}

func cloneTweet(t *models.Tweet) *models.Tweet {
	c := *t
	c.TweetLikes = cloneIDs(t.TweetLikes)
	c.TweetComments = cloneIDs(t.TweetComments)
	c.Retweets = cloneIDs(t.Retweets)
	c.Images = cloneStrings(t.Images)
	c.ImagesIds = cloneStrings(t.ImagesIds)
	c.Tags = cloneStrings(t.Tags)
	return &c
}

func sortByCreation[T any](docs []*T, created func(*T) time.Time, id func(*T) primitive.ObjectID, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		ci, cj := created(docs[i]), created(docs[j])
		if ci.Equal(cj) {
			if desc {
				return id(docs[i]).Hex() > id(docs[j]).Hex()
			}
			return id(docs[i]).Hex() < id(docs[j]).Hex()
		}
		if desc {
			return ci.After(cj)
		}
		return ci.Before(cj)
	})
}

// users

func (m *Memory) userNameTaken(name string, except primitive.ObjectID) bool {
	for id, u := range m.users {
		if id != except && u.UserName == name {
			return true
		}
	}
	return false
}

func (m *Memory) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	if _, ok := m.users[u.Id]; ok {
		return ErrDuplicate
	}
	if m.userNameTaken(u.UserName, u.Id) || m.emailTaken(u.Email, u.Id) {
		return ErrDuplicate
	}
	m.users[u.Id] = cloneUser(u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *Memory) GetUsers(_ context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByUserName(_ context.Context, userName string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.UserName == userName {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// UpdateUser reads and writes under separate critical sections so that
// concurrent writers race on the version exactly as they would in Mongo.
func (m *Memory) UpdateUser(ctx context.Context, id primitive.ObjectID, fn func(*models.User) error) (*models.User, error) {
	var updated *models.User
	err := withRetry(ctx, m.retries, usersCollection, id, func() error {
		u, err := m.GetUser(ctx, id)
		if err != nil {
			return err
		}
		prev := u.Version
		if err := fn(u); err != nil {
			return err
		}
		u.Version = prev + 1
		u.UpdatedAt = time.Now()

		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.users[id]
		if !ok {
			return ErrNotFound
		}
		if cur.Version != prev {
			return errStale
		}
		if m.userNameTaken(u.UserName, id) || m.emailTaken(u.Email, id) {
			return ErrDuplicate
		}
		m.users[id] = cloneUser(u)
		updated = u
		return nil
	})
	return updated, err
}

func (m *Memory) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) EachUser(ctx context.Context, fn func(*models.User) error) error {
	m.mu.RLock()
	snapshot := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		snapshot = append(snapshot, cloneUser(u))
	}
	m.mu.RUnlock()

	for _, u := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

// tweets

func (m *Memory) CreateTweet(_ context.Context, t *models.Tweet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Id.IsZero() {
		t.Id = primitive.NewObjectID()
	}
	if _, ok := m.tweets[t.Id]; ok {
		return ErrDuplicate
	}
	m.tweets[t.Id] = cloneTweet(t)
	return nil
}

func (m *Memory) GetTweet(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTweet(t), nil
}

func (m *Memory) GetTweets(_ context.Context, ids []primitive.ObjectID) ([]*models.Tweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Tweet, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if t, ok := m.tweets[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneTweet(t))
		}
	}
	return out, nil
}

func (m *Memory) TweetsByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Tweet, error) {
	m.mu.RLock()
	out := []*models.Tweet{}
	for _, t := range m.tweets {
		if t.User == userID {
			out = append(out, cloneTweet(t))
		}
	}
	m.mu.RUnlock()
	sortByCreation(out, func(t *models.Tweet) time.Time { return t.CreationDate },
		func(t *models.Tweet) primitive.ObjectID { return t.Id }, true)
	return out, nil
}

func (m *Memory) UpdateTweet(ctx context.Context, id primitive.ObjectID, fn func(*models.Tweet) error) (*models.Tweet, error) {
	var updated *models.Tweet
	err := withRetry(ctx, m.retries, tweetsCollection, id, func() error {
		t, err := m.GetTweet(ctx, id)
		if err != nil {
			return err
		}
		prev := t.Version
		if err := fn(t); err != nil {
			return err
		}
		t.Version = prev + 1

		m.mu.Lock()
		defer m.mu.Unlock()
		cur, ok := m.tweets[id]
		if !ok {
			return ErrNotFound
		}
		if cur.Version != prev {
			return errStale
		}
		m.tweets[id] = cloneTweet(t)
		updated = t
		return nil
	})
	return updated, err
}

func (m *Memory) DeleteTweet(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(m.tweets, id)
	return nil
}

func (m *Memory) EachTweet(ctx context.Context, fn func(*models.Tweet) error) error {
	m.mu.RLock()
	snapshot := make([]*models.Tweet, 0, len(m.tweets))
	for _, t := range m.tweets {
		snapshot = append(snapshot, cloneTweet(t))
	}
	m.mu.RUnlock()

	for _, t := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

// likes

func (m *Memory) CreateLike(_ context.Context, l *models.TweetLike) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.likes {
		if existing.User == l.User && existing.Tweet == l.Tweet {
			return ErrDuplicate
		}
	}
	if l.Id.IsZero() {
		l.Id = primitive.NewObjectID()
	}
	m.likes[l.Id] = *l
	return nil
}

func (m *Memory) FindLike(_ context.Context, userID, tweetID primitive.ObjectID) (*models.TweetLike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.likes {
		if l.User == userID && l.Tweet == tweetID {
			like := l
			return &like, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetLikes(_ context.Context, ids []primitive.ObjectID) ([]*models.TweetLike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.TweetLike, 0, len(ids))
	for _, id := range ids {
		if l, ok := m.likes[id]; ok {
			like := l
			out = append(out, &like)
		}
	}
	return out, nil
}

func (m *Memory) likesWhere(match func(models.TweetLike) bool, desc bool) []*models.TweetLike {
	m.mu.RLock()
	out := []*models.TweetLike{}
	for _, l := range m.likes {
		if match(l) {
			like := l
			out = append(out, &like)
		}
	}
	m.mu.RUnlock()
	sortByCreation(out, func(l *models.TweetLike) time.Time { return l.CreationDate },
		func(l *models.TweetLike) primitive.ObjectID { return l.Id }, desc)
	return out
}

func (m *Memory) LikesByTweet(_ context.Context, tweetID primitive.ObjectID) ([]*models.TweetLike, error) {
	return m.likesWhere(func(l models.TweetLike) bool { return l.Tweet == tweetID }, false), nil
}

func (m *Memory) LikesByUser(_ context.Context, userID primitive.ObjectID) ([]*models.TweetLike, error) {
	return m.likesWhere(func(l models.TweetLike) bool { return l.User == userID }, true), nil
}

func (m *Memory) DeleteLike(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.likes[id]; !ok {
		return ErrNotFound
	}
	delete(m.likes, id)
	return nil
}

func (m *Memory) DeleteLikes(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.likes[id]; ok {
			delete(m.likes, id)
			n++
		}
	}
	return n, nil
}

// comments

func (m *Memory) CreateComment(_ context.Context, c *models.TweetComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Id.IsZero() {
		c.Id = primitive.NewObjectID()
	}
	if _, ok := m.comments[c.Id]; ok {
		return ErrDuplicate
	}
	m.comments[c.Id] = *c
	return nil
}

func (m *Memory) GetComment(_ context.Context, id primitive.ObjectID) (*models.TweetComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) GetComments(_ context.Context, ids []primitive.ObjectID) ([]*models.TweetComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.TweetComment, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.comments[id]; ok {
			comment := c
			out = append(out, &comment)
		}
	}
	return out, nil
}

func (m *Memory) commentsWhere(match func(models.TweetComment) bool) []*models.TweetComment {
	m.mu.RLock()
	out := []*models.TweetComment{}
	for _, c := range m.comments {
		if match(c) {
			comment := c
			out = append(out, &comment)
		}
	}
	m.mu.RUnlock()
	sortByCreation(out, func(c *models.TweetComment) time.Time { return c.CreationDate },
		func(c *models.TweetComment) primitive.ObjectID { return c.Id }, false)
	return out
}

func (m *Memory) CommentsByTweet(_ context.Context, tweetID primitive.ObjectID) ([]*models.TweetComment, error) {
	return m.commentsWhere(func(c models.TweetComment) bool { return c.Tweet == tweetID }), nil
}

func (m *Memory) CommentsByUser(_ context.Context, userID primitive.ObjectID) ([]*models.TweetComment, error) {
	return m.commentsWhere(func(c models.TweetComment) bool { return c.User == userID }), nil
}

func (m *Memory) SetCommentText(_ context.Context, id primitive.ObjectID, text string) (*models.TweetComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.CommentText = text
	m.comments[id] = c
	return &c, nil
}

func (m *Memory) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *Memory) DeleteComments(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.comments[id]; ok {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// retweets

func (m *Memory) CreateRetweet(_ context.Context, r *models.Retweet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.retweets {
		if existing.User == r.User && existing.Tweet == r.Tweet {
			return ErrDuplicate
		}
	}
	if r.Id.IsZero() {
		r.Id = primitive.NewObjectID()
	}
	m.retweets[r.Id] = *r
	return nil
}

func (m *Memory) GetRetweet(_ context.Context, id primitive.ObjectID) (*models.Retweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.retweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) FindRetweet(_ context.Context, userID, tweetID primitive.ObjectID) (*models.Retweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.retweets {
		if r.User == userID && r.Tweet == tweetID {
			rt := r
			return &rt, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetRetweets(_ context.Context, ids []primitive.ObjectID) ([]*models.Retweet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Retweet, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.retweets[id]; ok {
			rt := r
			out = append(out, &rt)
		}
	}
	return out, nil
}

func (m *Memory) retweetsWhere(match func(models.Retweet) bool, desc bool) []*models.Retweet {
	m.mu.RLock()
	out := []*models.Retweet{}
	for _, r := range m.retweets {
		if match(r) {
			rt := r
			out = append(out, &rt)
		}
	}
	m.mu.RUnlock()
	sortByCreation(out, func(r *models.Retweet) time.Time { return r.CreationDate },
		func(r *models.Retweet) primitive.ObjectID { return r.Id }, desc)
	return out
}

func (m *Memory) RetweetsByTweet(_ context.Context, tweetID primitive.ObjectID) ([]*models.Retweet, error) {
	return m.retweetsWhere(func(r models.Retweet) bool { return r.Tweet == tweetID }, false), nil
}

func (m *Memory) RetweetsByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Retweet, error) {
	return m.retweetsWhere(func(r models.Retweet) bool { return r.User == userID }, true), nil
}

func (m *Memory) SetRetweetText(_ context.Context, id primitive.ObjectID, text string) (*models.Retweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.retweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.RetweetText = text
	m.retweets[id] = r
	return &r, nil
}

func (m *Memory) DeleteRetweet(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.retweets[id]; !ok {
		return ErrNotFound
	}
	delete(m.retweets, id)
	return nil
}

func (m *Memory) DeleteRetweets(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.retweets[id]; ok {
			delete(m.retweets, id)
			n++
		}
	}
	return n, nil
}

var _ Store = (*Memory)(nil)
