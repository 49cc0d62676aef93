package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id                 primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserName           string               `json:"userName" bson:"userName"`
	Email              string               `json:"email" bson:"email"`
	Password           string               `json:"-" bson:"password"`
	DOB                *time.Time           `json:"DOB,omitempty" bson:"DOB,omitempty"`
	FirstName          string               `json:"firstName" bson:"firstName"`
	LastName           string               `json:"lastName" bson:"lastName"`
	ProfilePhoto       string               `json:"profilePhoto,omitempty" bson:"profilePhoto,omitempty"`
	ProfilePhotoId     string               `json:"profilePhotoId,omitempty" bson:"profilePhotoId,omitempty"`
	Tweets             []primitive.ObjectID `json:"tweets" bson:"tweets"`
	Retweets           []primitive.ObjectID `json:"retweets" bson:"retweets"`
	Favorites          []primitive.ObjectID `json:"favorites" bson:"favorites"`
	Followers          []primitive.ObjectID `json:"followers" bson:"followers"`
	Followings         []primitive.ObjectID `json:"followings" bson:"followings"`
	NumberOfFollowers  int                  `json:"numberOfFollowers" bson:"numberOfFollowers"`
	NumberOfFollowings int                  `json:"numberOfFollowings" bson:"numberOfFollowings"`
	NumberOfTweets     int                  `json:"numberOfTweets" bson:"numberOfTweets"`
	NumberOfRetweets   int                  `json:"numberOfRetweets" bson:"numberOfRetweets"`
	PinnedTweet        *primitive.ObjectID  `json:"pinnedTweet" bson:"pinnedTweet"`
	Version            int64                `json:"-" bson:"version"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// NewUser returns a user with every relation array initialised so that
// documents never store null arrays.
func NewUser(userName, email, passwordHash, firstName, lastName string) *User {
	now := time.Now()
	return &User{
		Id:         primitive.NewObjectID(),
		UserName:   userName,
		Email:      email,
		Password:   passwordHash,
		FirstName:  firstName,
		LastName:   lastName,
		Tweets:     []primitive.ObjectID{},
		Retweets:   []primitive.ObjectID{},
		Favorites:  []primitive.ObjectID{},
		Followers:  []primitive.ObjectID{},
		Followings: []primitive.ObjectID{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (u *User) AddTweet(id primitive.ObjectID) bool { return addRef(&u.Tweets, &u.NumberOfTweets, id) }
func (u *User) RemoveTweet(id primitive.ObjectID) bool {
	return removeRef(&u.Tweets, &u.NumberOfTweets, id)
}

func (u *User) AddRetweet(id primitive.ObjectID) bool {
	return addRef(&u.Retweets, &u.NumberOfRetweets, id)
}
func (u *User) RemoveRetweet(id primitive.ObjectID) bool {
	return removeRef(&u.Retweets, &u.NumberOfRetweets, id)
}

// Favorites hold TweetLike ids and have no mirrored counter.
func (u *User) AddFavorite(likeID primitive.ObjectID) bool { return addRef(&u.Favorites, nil, likeID) }
func (u *User) RemoveFavorite(likeID primitive.ObjectID) bool {
	return removeRef(&u.Favorites, nil, likeID)
}

func (u *User) AddFollower(id primitive.ObjectID) bool {
	return addRef(&u.Followers, &u.NumberOfFollowers, id)
}
func (u *User) RemoveFollower(id primitive.ObjectID) bool {
	return removeRef(&u.Followers, &u.NumberOfFollowers, id)
}

func (u *User) AddFollowing(id primitive.ObjectID) bool {
	return addRef(&u.Followings, &u.NumberOfFollowings, id)
}
func (u *User) RemoveFollowing(id primitive.ObjectID) bool {
	return removeRef(&u.Followings, &u.NumberOfFollowings, id)
}

func (u *User) IsFollowing(id primitive.ObjectID) bool { return ContainsID(u.Followings, id) }
func (u *User) HasFollower(id primitive.ObjectID) bool { return ContainsID(u.Followers, id) }

// SetAvatar replaces the profile photo and returns the storage key of the
// photo it replaced, if any.
func (u *User) SetAvatar(url, key string) string {
	previous := u.ProfilePhotoId
	u.ProfilePhoto = url
	u.ProfilePhotoId = key
	return previous
}

func (u *User) Pin(tweetID primitive.ObjectID) { u.PinnedTweet = &tweetID }
func (u *User) Unpin()                         { u.PinnedTweet = nil }

// HasPinned reports whether tweetID is the user's pinned tweet.
func (u *User) HasPinned(tweetID primitive.ObjectID) bool {
	return u.PinnedTweet != nil && *u.PinnedTweet == tweetID
}

// CountersConsistent checks every denormalised counter against its array.
func (u *User) CountersConsistent() bool {
	return u.NumberOfFollowers == len(u.Followers) &&
		u.NumberOfFollowings == len(u.Followings) &&
		u.NumberOfTweets == len(u.Tweets) &&
		u.NumberOfRetweets == len(u.Retweets)
}

// UserSummary is the display projection attached to tweets, comments and feed items.
type UserSummary struct {
	ID           primitive.ObjectID `json:"_id"`
	UserName     string             `json:"userName"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	ProfilePhoto string             `json:"profilePhoto,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.Id,
		UserName:     u.UserName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// UserCard is the compact projection returned by follow operations,
// user lists and user search.
type UserCard struct {
	ID                 primitive.ObjectID `json:"_id"`
	UserName           string             `json:"userName"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	ProfilePhoto       string             `json:"profilePhoto,omitempty"`
	NumberOfFollowers  int                `json:"numberOfFollowers"`
	NumberOfFollowings int                `json:"numberOfFollowings"`
	NumberOfTweets     int                `json:"numberOfTweets"`
	NumberOfRetweets   int                `json:"numberOfRetweets"`
}

func (u *User) Card() UserCard {
	return UserCard{
		ID:                 u.Id,
		UserName:           u.UserName,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		ProfilePhoto:       u.ProfilePhoto,
		NumberOfFollowers:  u.NumberOfFollowers,
		NumberOfFollowings: u.NumberOfFollowings,
		NumberOfTweets:     u.NumberOfTweets,
		NumberOfRetweets:   u.NumberOfRetweets,
	}
}

// UserProfile is the public profile. Email, password and relation arrays
// stay hidden; owned tweets and the pinned tweet are populated.
type UserProfile struct {
	UserCard
	DOB         *time.Time  `json:"DOB,omitempty"`
	Tweets      []TweetView `json:"tweets"`
	PinnedTweet *TweetView  `json:"pinnedTweet"`
}

// UserListing is a card with its pinned tweet populated.
type UserListing struct {
	UserCard
	PinnedTweet *TweetView `json:"pinnedTweet"`
}

// Account is what the owner sees about their own record.
type Account struct {
	ID        primitive.ObjectID `json:"_id"`
	UserName  string             `json:"userName"`
	Email     string             `json:"email"`
	DOB       *time.Time         `json:"DOB,omitempty"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
}

func (u *User) Account() Account {
	return Account{
		ID:        u.Id,
		UserName:  u.UserName,
		Email:     u.Email,
		DOB:       u.DOB,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// FollowList is the followers/followings response for one user.
type FollowList struct {
	ID    primitive.ObjectID `json:"_id"`
	Count int                `json:"count"`
	Users []UserCard         `json:"users"`
}

// Avatar is the response of an avatar upload.
type Avatar struct {
	ID           primitive.ObjectID `json:"_id"`
	ProfilePhoto string             `json:"profilePhoto"`
}
