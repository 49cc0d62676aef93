package lib

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	id := primitive.NewObjectID()

	token, err := tokens.GenerateJWT(id)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	got, err := tokens.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id.Hex(), got.Hex())
	}
}

func TestVerifyJWTRejects(t *testing.T) {
	id := primitive.NewObjectID()
	expired, _ := NewTokenManager("secret", -time.Minute).GenerateJWT(id)
	foreign, _ := NewTokenManager("other", time.Hour).GenerateJWT(id)

	tokens := NewTokenManager("secret", time.Hour)
	for name, token := range map[string]string{
		"expired": expired,
		"foreign": foreign,
		"garbage": "not.a.token",
	} {
		if _, err := tokens.VerifyJWT(token); err == nil {
			t.Errorf("%s: expected verification to fail", name)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the password")
	}
	if !h.Check(hash, "secret123") {
		t.Fatal("expected the password to match")
	}
	if h.Check(hash, "secret124") {
		t.Fatal("expected a wrong password to fail")
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseID(id.Hex(), "tweet")
	if err != nil || got != id {
		t.Fatalf("ParseID(%s) = %v, %v", id.Hex(), got, err)
	}

	_, err = ParseID("123", "tweet")
	if KindOf(err) != KindInvalidID {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if err.Error() != "Invalid tweet ID." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
