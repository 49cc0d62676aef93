package store

import (
	"context"
	"errors"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection    = "users"
	tweetsCollection   = "tweets"
	likesCollection    = "tweetlikes"
	commentsCollection = "tweetcomments"
	retweetsCollection = "retweets"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	users    *mongo.Collection
	tweets   *mongo.Collection
	likes    *mongo.Collection
	comments *mongo.Collection
	retweets *mongo.Collection
	retries  int
}

func NewMongo(db *mongo.Database, retries int) *Mongo {
	return &Mongo{
		users:    db.Collection(usersCollection),
		tweets:   db.Collection(tweetsCollection),
		likes:    db.Collection(likesCollection),
		comments: db.Collection(commentsCollection),
		retweets: db.Collection(retweetsCollection),
		retries:  retries,
	}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{m.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userName", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{m.tweets, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "creationDate", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		}},
		{m.likes, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "tweet", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tweet", Value: 1}}},
		}},
		{m.comments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "tweet", Value: 1}, {Key: "creationDate", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		}},
		{m.retweets, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "tweet", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tweet", Value: 1}}},
		}},
	}
	for _, s := range specs {
		names, err := s.coll.Indexes().CreateMany(ctx, s.models)
		if err != nil {
			return err
		}
		lib.Log.Debug("indexes ensured", zap.String("collection", s.coll.Name()), zap.Strings("indexes", names))
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func each[T any](ctx context.Context, coll *mongo.Collection, fn func(*T) error) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteMany(ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func byIDs(ids []primitive.ObjectID) bson.M { return bson.M{"_id": bson.M{"$in": ids}} }

// orderByIDs re-sorts docs into the order of ids, skipping missing ones.
func orderByIDs[T any](ids []primitive.ObjectID, docs []*T, key func(*T) primitive.ObjectID) []*T {
	index := make(map[primitive.ObjectID]*T, len(docs))
	for _, d := range docs {
		index[key(d)] = d
	}
	out := make([]*T, 0, len(docs))
	for _, id := range ids {
		if d, ok := index[id]; ok {
			out = append(out, d)
			delete(index, id)
		}
	}
	return out
}

// users

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	if u.Id.IsZero() {
		u.Id = primitive.NewObjectID()
	}
	_, err := m.users.InsertOne(ctx, u)
	return mapErr(err)
}

func (m *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, m.users, bson.M{"_id": id})
}

func (m *Mongo) GetUsers(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	docs, err := findMany[models.User](ctx, m.users, byIDs(ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, docs, func(u *models.User) primitive.ObjectID { return u.Id }), nil
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, m.users, bson.M{"email": email})
}

func (m *Mongo) FindUserByUserName(ctx context.Context, userName string) (*models.User, error) {
	return findOne[models.User](ctx, m.users, bson.M{"userName": userName})
}

func (m *Mongo) UpdateUser(ctx context.Context, id primitive.ObjectID, fn func(*models.User) error) (*models.User, error) {
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

		res, err := m.users.ReplaceOne(ctx, bson.M{"_id": id, "version": prev}, u)
		if err != nil {
			return mapErr(err)
		}
		if res.MatchedCount == 0 {
			return errStale
		}
		updated = u
		return nil
	})
	return updated, err
}

func (m *Mongo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, m.users, id)
}

func (m *Mongo) EachUser(ctx context.Context, fn func(*models.User) error) error {
	return each(ctx, m.users, fn)
}

// tweets

func (m *Mongo) CreateTweet(ctx context.Context, t *models.Tweet) error {
	if t.Id.IsZero() {
		t.Id = primitive.NewObjectID()
	}
	_, err := m.tweets.InsertOne(ctx, t)
	return mapErr(err)
}

func (m *Mongo) GetTweet(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	return findOne[models.Tweet](ctx, m.tweets, bson.M{"_id": id})
}

func (m *Mongo) GetTweets(ctx context.Context, ids []primitive.ObjectID) ([]*models.Tweet, error) {
	if len(ids) == 0 {
		return []*models.Tweet{}, nil
	}
	docs, err := findMany[models.Tweet](ctx, m.tweets, byIDs(ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, docs, func(t *models.Tweet) primitive.ObjectID { return t.Id }), nil
}

func (m *Mongo) TweetsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Tweet, error) {
	opts := options.Find().SetSort(bson.M{"creationDate": -1})
	return findMany[models.Tweet](ctx, m.tweets, bson.M{"user": userID}, opts)
}

func (m *Mongo) UpdateTweet(ctx context.Context, id primitive.ObjectID, fn func(*models.Tweet) error) (*models.Tweet, error) {
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

		res, err := m.tweets.ReplaceOne(ctx, bson.M{"_id": id, "version": prev}, t)
		if err != nil {
			return mapErr(err)
		}
		if res.MatchedCount == 0 {
			return errStale
		}
		updated = t
		return nil
	})
	return updated, err
}

func (m *Mongo) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, m.tweets, id)
}

func (m *Mongo) EachTweet(ctx context.Context, fn func(*models.Tweet) error) error {
	return each(ctx, m.tweets, fn)
}

// likes

func (m *Mongo) CreateLike(ctx context.Context, l *models.TweetLike) error {
	if l.Id.IsZero() {
		l.Id = primitive.NewObjectID()
	}
	_, err := m.likes.InsertOne(ctx, l)
	return mapErr(err)
}

func (m *Mongo) FindLike(ctx context.Context, userID, tweetID primitive.ObjectID) (*models.TweetLike, error) {
	return findOne[models.TweetLike](ctx, m.likes, bson.M{"user": userID, "tweet": tweetID})
}

func (m *Mongo) GetLikes(ctx context.Context, ids []primitive.ObjectID) ([]*models.TweetLike, error) {
	if len(ids) == 0 {
		return []*models.TweetLike{}, nil
	}
	docs, err := findMany[models.TweetLike](ctx, m.likes, byIDs(ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, docs, func(l *models.TweetLike) primitive.ObjectID { return l.Id }), nil
}

func (m *Mongo) LikesByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.TweetLike, error) {
	return findMany[models.TweetLike](ctx, m.likes, bson.M{"tweet": tweetID})
}

func (m *Mongo) LikesByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.TweetLike, error) {
	opts := options.Find().SetSort(bson.M{"creationDate": -1})
	return findMany[models.TweetLike](ctx, m.likes, bson.M{"user": userID}, opts)
}

func (m *Mongo) DeleteLike(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, m.likes, id)
}

func (m *Mongo) DeleteLikes(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return deleteMany(ctx, m.likes, ids)
}

// comments

func (m *Mongo) CreateComment(ctx context.Context, c *models.TweetComment) error {
	if c.Id.IsZero() {
		c.Id = primitive.NewObjectID()
	}
	_, err := m.comments.InsertOne(ctx, c)
	return mapErr(err)
}

func (m *Mongo) GetComment(ctx context.Context, id primitive.ObjectID) (*models.TweetComment, error) {
	return findOne[models.TweetComment](ctx, m.comments, bson.M{"_id": id})
}

func (m *Mongo) GetComments(ctx context.Context, ids []primitive.ObjectID) ([]*models.TweetComment, error) {
	if len(ids) == 0 {
		return []*models.TweetComment{}, nil
	}
	docs, err := findMany[models.TweetComment](ctx, m.comments, byIDs(ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, docs, func(c *models.TweetComment) primitive.ObjectID { return c.Id }), nil
}

func (m *Mongo) CommentsByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.TweetComment, error) {
	opts := options.Find().SetSort(bson.M{"creationDate": 1})
	return findMany[models.TweetComment](ctx, m.comments, bson.M{"tweet": tweetID}, opts)
}

func (m *Mongo) CommentsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.TweetComment, error) {
	return findMany[models.TweetComment](ctx, m.comments, bson.M{"user": userID})
}

func (m *Mongo) SetCommentText(ctx context.Context, id primitive.ObjectID, text string) (*models.TweetComment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.TweetComment
	err := m.comments.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"commentText": text}}, opts).Decode(&c)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (m *Mongo) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, m.comments, id)
}

func (m *Mongo) DeleteComments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return deleteMany(ctx, m.comments, ids)
}

// retweets

func (m *Mongo) CreateRetweet(ctx context.Context, r *models.Retweet) error {
	if r.Id.IsZero() {
		r.Id = primitive.NewObjectID()
	}
	_, err := m.retweets.InsertOne(ctx, r)
	return mapErr(err)
}

func (m *Mongo) GetRetweet(ctx context.Context, id primitive.ObjectID) (*models.Retweet, error) {
	return findOne[models.Retweet](ctx, m.retweets, bson.M{"_id": id})
}

func (m *Mongo) FindRetweet(ctx context.Context, userID, tweetID primitive.ObjectID) (*models.Retweet, error) {
	return findOne[models.Retweet](ctx, m.retweets, bson.M{"user": userID, "tweet": tweetID})
}

func (m *Mongo) GetRetweets(ctx context.Context, ids []primitive.ObjectID) ([]*models.Retweet, error) {
	if len(ids) == 0 {
		return []*models.Retweet{}, nil
	}
	docs, err := findMany[models.Retweet](ctx, m.retweets, byIDs(ids))
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, docs, func(r *models.Retweet) primitive.ObjectID { return r.Id }), nil
}

func (m *Mongo) RetweetsByTweet(ctx context.Context, tweetID primitive.ObjectID) ([]*models.Retweet, error) {
	return findMany[models.Retweet](ctx, m.retweets, bson.M{"tweet": tweetID})
}

func (m *Mongo) RetweetsByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Retweet, error) {
	opts := options.Find().SetSort(bson.M{"creationDate": -1})
	return findMany[models.Retweet](ctx, m.retweets, bson.M{"user": userID}, opts)
}

func (m *Mongo) SetRetweetText(ctx context.Context, id primitive.ObjectID, text string) (*models.Retweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Retweet
	update := bson.M{"$set": bson.M{"retweetText": text}}
	if text == "" {
		update = bson.M{"$unset": bson.M{"retweetText": ""}}
	}
	err := m.retweets.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r)
	if err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (m *Mongo) DeleteRetweet(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, m.retweets, id)
}

func (m *Mongo) DeleteRetweets(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return deleteMany(ctx, m.retweets, ids)
}

var _ Store = (*Mongo)(nil)
