package lib

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindInvalidID
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInvalidOperation
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidID:
		return "invalid_id"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindInvalidOperation:
		return "invalid_operation"
	default:
		return "internal"
	}
}

// Status is the HTTP status every handler uses for this kind of failure.
func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return fiber.StatusUnprocessableEntity
	case KindInvalidID, KindInvalidOperation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// AppError is a failure detected before any mutation, reported to the caller as is.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func Validation(msg string) error       { return &AppError{Kind: KindValidation, Message: msg} }
func InvalidID(msg string) error        { return &AppError{Kind: KindInvalidID, Message: msg} }
func NotFound(msg string) error         { return &AppError{Kind: KindNotFound, Message: msg} }
func Unauthorized(msg string) error     { return &AppError{Kind: KindUnauthorized, Message: msg} }
func Conflict(msg string) error         { return &AppError{Kind: KindConflict, Message: msg} }
func InvalidOperation(msg string) error { return &AppError{Kind: KindInvalidOperation, Message: msg} }

// Wrap attaches a client-facing message and kind to an underlying cause.
func Wrap(kind ErrorKind, msg string, err error) error {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorHandler renders every error as {"message": ...} with a status
// derived from its kind. Unexpected failures are logged and hidden.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(MessageResponse(fiberErr.Message))
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Kind.Status()).JSON(MessageResponse(appErr.Message))
	}

	Log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(MessageResponse("Internal server error"))
}
