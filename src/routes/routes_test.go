package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/Backend-Twitter-Clone/src/controllers"
	"github.com/theleywin/Backend-Twitter-Clone/src/events"
	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/media"
	"github.com/theleywin/Backend-Twitter-Clone/src/middleware"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
	"github.com/theleywin/Backend-Twitter-Clone/src/services"
	"github.com/theleywin/Backend-Twitter-Clone/src/store"
)

type testServer struct {
	app    *fiber.App
	events *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := lib.NewTokenManager("routes-secret", time.Hour)
	recorder := &events.Recorder{}
	svc := services.New(services.Deps{
		Store:  store.NewMemory(),
		Media:  media.NewMemory(),
		Events: recorder,
		Tokens: tokens,
		Hasher: lib.NewPasswordHasher(4),
	})

	app := fiber.New(fiber.Config{ErrorHandler: lib.ErrorHandler})
	app.Use(middleware.RequestLogger())
	Register(app, controllers.NewHandler(svc), NewGuards(tokens, lib.LimitsConfig{
		WritesPerSecond: 1000,
		WriteBurst:      1000,
		SearchPerMinute: 1000,
	}), true)

	return &testServer{app: app, events: recorder}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (s *testServer) expect(t *testing.T, method, path, token string, body any, status int, out any) {
	t.Helper()
	resp, data := s.do(t, method, path, token, body)
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("%s %s: decode %s: %v", method, path, data, err)
		}
	}
}

type registered struct {
	User  models.Account `json:"user"`
	Token string         `json:"token"`
}

func (s *testServer) register(t *testing.T, name string) registered {
	t.Helper()
	var out registered
	s.expect(t, fiber.MethodPost, "/api/users/new", "", fiber.Map{
		"userName":  name,
		"email":     name + "@example.com",
		"password":  "secret123",
		"firstName": "First",
		"lastName":  "Last",
	}, fiber.StatusCreated, &out)
	if out.Token == "" {
		t.Fatal("expected a token in the registration response")
	}
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.expect(t, fiber.MethodGet, "/health", "", nil, fiber.StatusOK, nil)

	s.expect(t, fiber.MethodGet, "/api/users/all", "", nil, fiber.StatusOK, nil)
	_, data := s.do(t, fiber.MethodGet, "/metrics", "", nil)
	if !strings.Contains(string(data), "twitter_http_requests_total") {
		t.Fatal("expected request counter in /metrics output")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, fiber.MethodPost, "/api/users/new", "", fiber.Map{
		"userName":  "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"firstName": "Alice",
		"lastName":  "Smith",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Header.Get("x-auth-token") == "" {
		t.Fatal("expected x-auth-token header")
	}

	var login struct {
		Token string `json:"token"`
	}
	s.expect(t, fiber.MethodPost, "/api/auth", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret123",
	}, fiber.StatusOK, &login)

	var me models.Account
	s.expect(t, fiber.MethodGet, "/api/users/me", login.Token, nil, fiber.StatusOK, &me)
	if me.UserName != "alice" {
		t.Fatalf("expected alice, got %q", me.UserName)
	}

	s.expect(t, fiber.MethodPost, "/api/auth", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, fiber.StatusUnprocessableEntity, nil)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.expect(t, fiber.MethodGet, "/api/tweets/feed", "", nil, fiber.StatusUnauthorized, nil)
	s.expect(t, fiber.MethodPost, "/api/tweets/create", "", fiber.Map{"tweetText": "hi"}, fiber.StatusUnauthorized, nil)
}

func TestTweetLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	var tweet models.TweetView
	s.expect(t, fiber.MethodPost, "/api/tweets/create", alice.Token,
		fiber.Map{"tweetText": "hello world", "tags": "go fiber"}, fiber.StatusCreated, &tweet)
	tweetPath := tweet.ID.Hex()

	s.expect(t, fiber.MethodPatch, "/api/tweets/update/"+tweetPath, bob.Token,
		fiber.Map{"tweetText": "hijacked"}, fiber.StatusForbidden, nil)

	var follow models.FollowResult
	s.expect(t, fiber.MethodPost, "/api/users/follow/"+alice.User.ID.Hex(), bob.Token, nil, fiber.StatusOK, &follow)
	if !follow.Following {
		t.Fatal("expected bob to follow alice")
	}

	var liked models.TweetView
	s.expect(t, fiber.MethodPost, "/api/tweetlikes/like/"+tweetPath, bob.Token, nil, fiber.StatusOK, &liked)
	if liked.NumberOfLikes != 1 {
		t.Fatalf("expected 1 like, got %d", liked.NumberOfLikes)
	}

	s.expect(t, fiber.MethodPost, "/api/tweetcomments/create/"+tweetPath, bob.Token,
		fiber.Map{"commentText": "nice"}, fiber.StatusCreated, nil)

	var shared models.RetweetToggle
	s.expect(t, fiber.MethodPost, "/api/retweets/share/"+tweetPath, bob.Token, nil, fiber.StatusOK, &shared)
	if !shared.Retweeted || shared.Tweet.NumberOfRetweets != 1 {
		t.Fatalf("unexpected retweet result: %+v", shared)
	}

	var feed []models.FeedItem
	s.expect(t, fiber.MethodGet, "/api/tweets/feed", bob.Token, nil, fiber.StatusOK, &feed)
	if len(feed) != 1 || feed[0].Kind != models.FeedKindTweet {
		t.Fatalf("expected alice's tweet in bob's feed, got %+v", feed)
	}

	var pin models.PinState
	s.expect(t, fiber.MethodPost, "/api/tweets/pintweet/"+tweetPath, alice.Token, nil, fiber.StatusOK, &pin)

	var deleted struct {
		Report struct {
			Failed int `json:"failed"`
		} `json:"report"`
	}
	s.expect(t, fiber.MethodDelete, "/api/tweets/delete/"+tweetPath, alice.Token, nil, fiber.StatusOK, &deleted)
	if deleted.Report.Failed != 0 {
		t.Fatalf("expected a clean cascade, got %d failed steps", deleted.Report.Failed)
	}

	s.expect(t, fiber.MethodGet, "/api/tweets/"+tweetPath, "", nil, fiber.StatusNotFound, nil)

	var retweets []models.RetweetView
	s.expect(t, fiber.MethodGet, "/api/retweets/all/"+bob.User.ID.Hex(), "", nil, fiber.StatusOK, &retweets)
	if len(retweets) != 0 {
		t.Fatalf("expected cascade to remove bob's retweet, got %d", len(retweets))
	}

	if !containsSubject(s.events.Subjects(), events.TweetDeleted) {
		t.Fatalf("expected %s event, got %v", events.TweetDeleted, s.events.Subjects())
	}
}

func TestInvalidIDs(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")

	s.expect(t, fiber.MethodGet, "/api/tweets/not-an-id", "", nil, fiber.StatusBadRequest, nil)
	s.expect(t, fiber.MethodPost, "/api/tweetlikes/like/xyz", alice.Token, nil, fiber.StatusBadRequest, nil)
	s.expect(t, fiber.MethodPost, "/api/users/follow/"+alice.User.ID.Hex(), alice.Token, nil, fiber.StatusBadRequest, nil)
}

func TestSearchRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	s.expect(t, fiber.MethodPost, "/api/tweets/create", alice.Token,
		fiber.Map{"tweetText": "Gophers unite", "tags": "golang"}, fiber.StatusCreated, nil)

	var byTag []models.TweetView
	s.expect(t, fiber.MethodPost, "/api/search/tags", "", fiber.Map{"tags": "golang"}, fiber.StatusOK, &byTag)
	if len(byTag) != 1 {
		t.Fatalf("expected 1 tagged tweet, got %d", len(byTag))
	}

	var byText []models.TweetView
	s.expect(t, fiber.MethodPost, "/api/search/tweets", "", fiber.Map{"search": "gophers"}, fiber.StatusOK, &byText)
	if len(byText) != 1 {
		t.Fatalf("expected 1 matching tweet, got %d", len(byText))
	}

	s.expect(t, fiber.MethodPost, "/api/search/users", "", fiber.Map{"search": "  "}, fiber.StatusUnprocessableEntity, nil)
}

func TestUploadAvatar(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodPut, "/api/users/uploadavatar", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+alice.Token)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	var avatar models.Avatar
	if err := json.NewDecoder(resp.Body).Decode(&avatar); err != nil {
		t.Fatalf("decode avatar: %v", err)
	}
	if avatar.ID != alice.User.ID || !strings.Contains(avatar.ProfilePhoto, "avatars/"+alice.User.ID.Hex()) {
		t.Fatalf("unexpected avatar response %+v", avatar)
	}

	s.expect(t, fiber.MethodPut, "/api/users/uploadavatar", alice.Token, nil, fiber.StatusUnprocessableEntity, nil)
}

func containsSubject(subjects []string, want string) bool {
	for _, s := range subjects {
		if s == want {
			return true
		}
	}
	return false
}
