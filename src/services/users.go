package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgEmailTaken    = "Email is already taken."
	msgUserNameTaken = "Username is already taken."
	msgBadLogin      = "Invalid email or password"
)

type RegisterInput struct {
	UserName  string     `json:"userName"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	DOB       *time.Time `json:"DOB,omitempty"`
}

func (in RegisterInput) validate() error {
	checks := []error{
		validateLength("userName", in.UserName, 3, 50),
		validateEmail(in.Email),
		validateLength("password", in.Password, 6, 255),
		validateLength("firstName", in.FirstName, 3, 50),
		validateLength("lastName", in.LastName, 3, 50),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateInput holds the fields a user may change on their own account.
// Nil fields are left untouched.
type UpdateInput struct {
	UserName     *string    `json:"userName"`
	Email        *string    `json:"email"`
	Password     *string    `json:"password"`
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	ProfilePhoto *string    `json:"profilePhoto"`
	DOB          *time.Time `json:"DOB"`
}

func (in UpdateInput) validate() error {
	if in.UserName != nil {
		if err := validateLength("userName", *in.UserName, 3, 50); err != nil {
			return err
		}
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return err
		}
	}
	if in.Password != nil {
		if err := validateLength("password", *in.Password, 6, 255); err != nil {
			return err
		}
	}
	if in.FirstName != nil {
		if err := validateLength("firstName", *in.FirstName, 3, 50); err != nil {
			return err
		}
	}
	if in.LastName != nil {
		if err := validateLength("lastName", *in.LastName, 3, 50); err != nil {
			return err
		}
	}
	return nil
}

// taken reports whether another user already owns the email or user name.
func (s *Service) taken(ctx context.Context, self primitive.ObjectID, email, userName *string) error {
	if email != nil {
		u, err := s.store.FindUserByEmail(ctx, *email)
		if err == nil && u.Id != self {
			return lib.Conflict(msgEmailTaken)
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return storeErr(err, msgUserNotFound)
		}
	}
	if userName != nil {
		u, err := s.store.FindUserByUserName(ctx, *userName)
		if err == nil && u.Id != self {
			return lib.Conflict(msgUserNameTaken)
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return storeErr(err, msgUserNotFound)
		}
	}
	return nil
}

func duplicateUser(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return lib.Wrap(lib.KindConflict, "Email or username is already taken.", err)
	}
	return storeErr(err, msgUserNotFound)
}

// Register creates an account and returns it with a fresh access token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Account, string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, "", err
	}
	if err := s.taken(ctx, primitive.NilObjectID, &in.Email, &in.UserName); err != nil {
		return nil, "", err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	u := models.NewUser(in.UserName, in.Email, hash, in.FirstName, in.LastName)
	u.DOB = in.DOB
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, "", duplicateUser(err)
	}
	token, err := s.tokens.GenerateJWT(u.Id)
	if err != nil {
		return nil, "", err
	}
	account := u.Account()
	return &account, token, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if err := validateEmail(strings.TrimSpace(email)); err != nil {
		return "", lib.Validation(msgBadLogin)
	}
	u, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", lib.Validation(msgBadLogin)
	}
	if err != nil {
		return "", storeErr(err, msgUserNotFound)
	}
	if !s.hasher.Check(u.Password, password) {
		return "", lib.Validation(msgBadLogin)
	}
	return s.tokens.GenerateJWT(u.Id)
}

// GetUser returns the public profile with owned tweets and the pinned tweet.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	tweets, err := s.store.GetTweets(ctx, u.Tweets)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	sort.SliceStable(tweets, func(i, j int) bool { return tweets[i].CreationDate.After(tweets[j].CreationDate) })
	views, err := s.tweetViews(ctx, tweets)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{UserCard: u.Card(), DOB: u.DOB, Tweets: views}
	if u.PinnedTweet != nil {
		for i := range views {
			if views[i].ID == *u.PinnedTweet {
				profile.PinnedTweet = &views[i]
				break
			}
		}
	}
	return profile, nil
}

// Me returns the caller's own account details.
func (s *Service) Me(ctx context.Context, userID string) (*models.Account, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	u, err := s.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	account := u.Account()
	return &account, nil
}

// ListUsers returns every user, most followed first, with pinned tweets populated.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserListing, error) {
	var users []*models.User
	err := s.store.EachUser(ctx, func(u *models.User) error {
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, storeErr(err, msgUserNotFound)
	}
	sortUsersByFollowers(users)

	var pinnedIDs []primitive.ObjectID
	for _, u := range users {
		if u.PinnedTweet != nil {
			pinnedIDs = append(pinnedIDs, *u.PinnedTweet)
		}
	}
	pinned, err := s.store.GetTweets(ctx, pinnedIDs)
	if err != nil {
		return nil, storeErr(err, msgTweetNotFound)
	}
	byID := make(map[primitive.ObjectID]*models.Tweet, len(pinned))
	for _, t := range pinned {
		byID[t.Id] = t
	}

	out := make([]models.UserListing, 0, len(users))
	for _, u := range users {
		listing := models.UserListing{UserCard: u.Card()}
		if u.PinnedTweet != nil {
			if t, ok := byID[*u.PinnedTweet]; ok {
				view := t.View(u.Summary())
				listing.PinnedTweet = &view
			}
		}
		out = append(out, listing)
	}
	return out, nil
}

func sortUsersByFollowers(users []*models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].NumberOfFollowers != users[j].NumberOfFollowers {
			return users[i].NumberOfFollowers > users[j].NumberOfFollowers
		}
		return users[i].UserName < users[j].UserName
	})
}

// UpdateMe applies a partial update to the caller's account.
func (s *Service) UpdateMe(ctx context.Context, userID string, in UpdateInput) (*models.Account, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		trimmed := strings.TrimSpace(*in.Email)
		in.Email = &trimmed
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, uid); err != nil {
		return nil, err
	}
	if err := s.taken(ctx, uid, in.Email, in.UserName); err != nil {
		return nil, err
	}
	var hash string
	if in.Password != nil {
		if hash, err = s.hasher.Hash(*in.Password); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateUser(ctx, uid, func(u *models.User) error {
		if in.UserName != nil {
			u.UserName = *in.UserName
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.Password != nil {
			u.Password = hash
		}
		if in.FirstName != nil {
			u.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			u.LastName = *in.LastName
		}
		if in.ProfilePhoto != nil {
			u.ProfilePhoto = *in.ProfilePhoto
		}
		if in.DOB != nil {
			u.DOB = in.DOB
		}
		return nil
	})
	if err != nil {
		return nil, duplicateUser(err)
	}
	account := updated.Account()
	return &account, nil
}
