package lib

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestErrorHandlerStatuses(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{Validation("bad"), fiber.StatusUnprocessableEntity, "bad"},
		{InvalidID("Invalid user ID."), fiber.StatusBadRequest, "Invalid user ID."},
		{InvalidOperation("nope"), fiber.StatusBadRequest, "nope"},
		{NotFound("missing"), fiber.StatusNotFound, "missing"},
		{Unauthorized("denied"), fiber.StatusForbidden, "denied"},
		{Conflict("taken"), fiber.StatusConflict, "taken"},
		{fmt.Errorf("wrapped: %w", NotFound("deep")), fiber.StatusNotFound, "deep"},
		{Wrap(KindInternal, "Image upload failed.", errors.New("s3 down")), fiber.StatusInternalServerError, "Image upload failed."},
		{fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot, "tea"},
		{errors.New("boom"), fiber.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		err := tt.err
		app.Get("/", func(c *fiber.Ctx) error { return err })

		resp, terr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		if terr != nil {
			t.Fatalf("app.Test: %v", terr)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.status, resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		var out map[string]string
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if out["message"] != tt.message {
			t.Errorf("%v: expected message %q, got %q", tt.err, tt.message, out["message"])
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("plain errors are internal")
	}
	wrapped := Wrap(KindConflict, "again", errors.New("cause"))
	if KindOf(wrapped) != KindConflict {
		t.Fatal("expected conflict kind")
	}
	if !errors.Is(wrapped, wrapped.(*AppError).Err) {
		t.Fatal("expected the cause to be reachable through Unwrap")
	}
}
